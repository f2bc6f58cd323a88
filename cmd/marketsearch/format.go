package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/kailas-cloud/marketsearch"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// renderView draws a result list as a table with a title and footer.
func renderView(v marketsearch.View) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(viewTitle(v)))
	b.WriteString("\n")

	if v.Message != "" {
		b.WriteString(metaStyle.Render(v.Message))
		b.WriteString("\n")
	}
	if v.Empty() {
		b.WriteString(metaStyle.Render("No services found"))
		b.WriteString("\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("#", "Service", "Provider", "Price", "Distance", "Match").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i := range v.Results {
		r := &v.Results[i]
		t.Row(
			strconv.Itoa(i+1),
			r.Title(),
			r.ProviderName(),
			marketsearch.FormatPrice(r.Price()),
			distanceLabel(r),
			fmt.Sprintf("%.0f%%", r.Similarity()*100),
		)
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	footer := fmt.Sprintf("%d of %d shown, %d total", len(v.Results), v.Matched, v.Total)
	if v.Dropped > 0 {
		footer += fmt.Sprintf(", %d skipped (invalid price)", v.Dropped)
	}
	if v.HasMore {
		footer += ", more available"
	}
	b.WriteString(metaStyle.Render(footer))
	b.WriteString("\n")
	return b.String()
}

func viewTitle(v marketsearch.View) string {
	title := fmt.Sprintf("%s search", v.Mode)
	if v.IsBrowse() {
		title = "All services"
	}
	if v.Query != "" {
		title += fmt.Sprintf(" for %q", v.Query)
	}
	if v.Location != nil {
		if addr := v.Location.DisplayAddress(); addr != "" {
			title += " near " + addr
		}
	}
	return title + fmt.Sprintf(" (sorted by %s)", v.Sort)
}

func distanceLabel(r *marketsearch.Result) string {
	d, ok := r.DistanceKm()
	if !ok {
		return marketsearch.FormatDistance(nil)
	}
	return marketsearch.FormatDistance(&d)
}

// renderCategories draws the category tree with aggregated service counts.
func renderCategories(sums []*marketsearch.CategorySummary) string {
	if len(sums) == 0 {
		return metaStyle.Render("No categories") + "\n"
	}
	root := tree.Root(titleStyle.Render("Categories"))
	for _, s := range sums {
		root.Child(categoryNode(s))
	}
	return root.String() + "\n"
}

func categoryNode(s *marketsearch.CategorySummary) any {
	label := fmt.Sprintf("%s %s", s.Name, metaStyle.Render(fmt.Sprintf("(%d)", s.Total)))
	if len(s.Children) == 0 {
		return label
	}
	node := tree.Root(label)
	for _, c := range s.Children {
		node.Child(categoryNode(c))
	}
	return node
}

// renderFlatCategories prints "<indent>name [id] (total)" per category.
func renderFlatCategories(roots []*marketsearch.Category) string {
	var b strings.Builder
	for _, e := range marketsearch.FlattenCategories(roots) {
		fmt.Fprintf(&b, "%s%s %s\n",
			strings.Repeat("  ", e.Depth),
			e.Category.Name,
			metaStyle.Render(fmt.Sprintf("[%s] (%d)", e.Category.ID, marketsearch.TotalServices(e.Category))),
		)
	}
	return b.String()
}

// renderLocation prints a resolved location on one line plus its coordinates.
func renderLocation(info *marketsearch.LocationInfo) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(info.DisplayAddress()))
	b.WriteString("\n")
	if info.HasCoordinates() {
		meta := fmt.Sprintf("%.6f, %.6f", *info.Latitude, *info.Longitude)
		if info.Source != "" {
			meta += fmt.Sprintf(" (%s)", info.Source)
		}
		b.WriteString(metaStyle.Render(meta))
		b.WriteString("\n")
	}
	return b.String()
}
