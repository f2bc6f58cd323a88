package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/marketsearch"
	"github.com/kailas-cloud/marketsearch/internal/config"
)

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check the marketplace backend and, when enabled, Redis",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withClient(ctx, c, func(client *marketsearch.Client, _ config.Config) error {
				h := client.Health(ctx)
				if _, err := io.WriteString(c.Root().Writer, renderHealth(h)); err != nil {
					return err //nolint:wrapcheck // terminal write
				}
				if h.Status == "error" {
					return fmt.Errorf("backend unreachable")
				}
				return nil
			})
		},
	}
}

func renderHealth(h marketsearch.HealthStatus) string {
	var b strings.Builder
	style := titleStyle
	if h.Status != "ok" {
		style = errorStyle
	}
	b.WriteString(style.Render("Status: " + h.Status))
	b.WriteString("\n")

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		b.WriteString(metaStyle.Render(fmt.Sprintf("  %s: %s", name, h.Checks[name])))
		b.WriteString("\n")
	}
	return b.String()
}
