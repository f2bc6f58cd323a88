package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/marketsearch"
	"github.com/kailas-cloud/marketsearch/internal/config"
)

// queryFlags are shared by search and watch.
func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{Name: "lat", Usage: "Latitude to search around"},
		&cli.FloatFlag{Name: "lng", Usage: "Longitude to search around"},
		&cli.FloatFlag{Name: "radius", Usage: "Search radius in km (default: search.default_radius_km)"},
		&cli.StringFlag{Name: "address", Usage: "Address to search around; geocoded when no coordinates are given"},
		&cli.BoolFlag{Name: "near-me", Usage: "Detect the current location (device, then IP)"},
		&cli.StringFlag{Name: "category", Usage: "Category ID"},
		&cli.StringFlag{Name: "provider", Usage: "Provider ID"},
		&cli.FloatFlag{Name: "min-price", Usage: "Minimum price"},
		&cli.FloatFlag{Name: "max-price", Usage: "Maximum price"},
		&cli.IntFlag{Name: "limit", Usage: "Maximum number of results the backend returns"},
		&cli.FloatFlag{Name: "threshold", Usage: "Minimum similarity, 0..1 (default: search.threshold)"},
		&cli.BoolFlag{Name: "include-without-location", Usage: "Keep services without a fixed location in radius searches"},
		&cli.StringFlag{Name: "sort", Usage: "relevance, distance, price or rating", Value: "relevance"},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search services; without text or location lists all services",
		ArgsUsage: "[text...]",
		Flags: append(queryFlags(),
			&cli.IntFlag{Name: "visible", Usage: "Number of results to show (0 = first page)"},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			return withClient(ctx, c, func(client *marketsearch.Client, cfg config.Config) error {
				b, err := buildSearch(ctx, c, client, cfg)
				if err != nil {
					return err
				}
				view, err := b.Visible(c.Int("visible")).Do(ctx)
				if err != nil {
					return err //nolint:wrapcheck // already prefixed by the client
				}
				_, err = io.WriteString(c.Root().Writer, renderView(view))
				return err //nolint:wrapcheck // terminal write
			})
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Interactive search: every line typed is a new query, debounced",
		Flags: append(queryFlags(),
			&cli.DurationFlag{Name: "delay", Usage: "Input debounce delay (default: search.debounce_ms)"},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			return withClient(ctx, c, func(client *marketsearch.Client, cfg config.Config) error {
				b, err := buildSearch(ctx, c, client, cfg)
				if err != nil {
					return err
				}
				return watch(ctx, client, b.Query(), b.Options().Sort, c.Duration("delay"),
					c.Root().Reader, c.Root().Writer)
			})
		},
	}
}

// watch drives a session from line input until EOF or ":q".
func watch(
	ctx context.Context,
	client *marketsearch.Client,
	base marketsearch.Query,
	sort marketsearch.SortBy,
	delay time.Duration,
	in io.Reader,
	out io.Writer,
) error {
	s := client.NewSession(ctx, marketsearch.SessionOptions{
		Delay:    delay,
		OnChange: func(st marketsearch.SessionState) { _, _ = io.WriteString(out, renderState(st)) },
	})
	defer s.Close()

	_, _ = fmt.Fprintln(out, metaStyle.Render("Type to search. :more shows more, :sort <criterion> reorders, :q quits."))
	if sort != marketsearch.SortRelevance {
		s.SetSort(sort)
	}
	s.Submit(base)

	var (
		pending bool
		last    string
	)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == ":q":
			return nil
		case line == ":more":
			s.ShowMore()
		case strings.HasPrefix(line, ":sort"):
			crit, err := marketsearch.ParseSortBy(strings.TrimSpace(strings.TrimPrefix(line, ":sort")))
			if err != nil {
				_, _ = fmt.Fprintln(out, errorStyle.Render(err.Error()))
				continue
			}
			s.SetSort(crit)
		default:
			s.Input(line)
			pending, last = true, line
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	// Input ended: flush the last keystrokes instead of dropping them.
	if pending {
		q := base
		q.Text = last
		s.Submit(q)
	}
	s.Wait()
	return nil
}

func renderState(st marketsearch.SessionState) string {
	switch {
	case st.Loading:
		return metaStyle.Render("Searching...") + "\n"
	case st.Err != nil:
		return errorStyle.Render(userMessage(st.Err)) + "\n"
	default:
		return renderView(st.View)
	}
}

// userMessage turns client errors into the text shown to the user.
func userMessage(err error) string {
	var be *marketsearch.BackendError
	switch {
	case errors.As(err, &be) && be.Message != "":
		return be.Message
	case errors.Is(err, marketsearch.ErrNetwork):
		return "Network error: check your connection and try again"
	case errors.Is(err, marketsearch.ErrInvalidQuery):
		return "Invalid search: " + err.Error()
	default:
		return "Search failed: " + err.Error()
	}
}

// buildSearch turns flags and arguments into a search.
func buildSearch(
	ctx context.Context,
	c *cli.Command,
	client *marketsearch.Client,
	cfg config.Config,
) (*marketsearch.SearchBuilder, error) {
	b := client.NewSearch().
		Text(strings.Join(c.Args().Slice(), " ")).
		Threshold(cfg.Search.Threshold)

	if c.IsSet("threshold") {
		b.Threshold(c.Float("threshold"))
	}

	switch {
	case c.IsSet("lat") || c.IsSet("lng"):
		if !c.IsSet("lat") || !c.IsSet("lng") {
			return nil, fmt.Errorf("--lat and --lng must be set together")
		}
		b.Near(c.Float("lat"), c.Float("lng"))
	case c.Bool("near-me"):
		info, err := client.Locate(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w (pass --address or --lat/--lng)", err)
		}
		b.At(info)
	}
	if addr := c.String("address"); addr != "" {
		b.Address(addr)
	}

	radius := cfg.Search.DefaultRadiusKm
	if c.IsSet("radius") {
		radius = c.Float("radius")
	}
	if radius > 0 {
		b.Km(radius)
	}

	if c.IsSet("min-price") {
		b.MinPrice(c.Float("min-price"))
	}
	if c.IsSet("max-price") {
		b.MaxPrice(c.Float("max-price"))
	}
	if id := c.String("category"); id != "" {
		b.Category(id)
	}
	if id := c.String("provider"); id != "" {
		b.Provider(id)
	}
	if c.IsSet("limit") {
		b.Limit(c.Int("limit"))
	}
	if c.Bool("include-without-location") {
		b.IncludeWithoutLocation()
	}

	sort, err := marketsearch.ParseSortBy(c.String("sort"))
	if err != nil {
		return nil, err //nolint:wrapcheck // message is user-facing
	}
	return b.SortBy(sort), nil
}
