package main

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/marketsearch"
	"github.com/kailas-cloud/marketsearch/internal/config"
)

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "Show the category tree with service counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "flat", Usage: "Print one indented line per category with its ID"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withClient(ctx, c, func(client *marketsearch.Client, _ config.Config) error {
				if c.Bool("flat") {
					roots, err := client.Categories(ctx)
					if err != nil {
						return err //nolint:wrapcheck // already prefixed by the client
					}
					_, err = io.WriteString(c.Root().Writer, renderFlatCategories(roots))
					return err //nolint:wrapcheck // terminal write
				}
				sums, err := client.CategorySummaries(ctx)
				if err != nil {
					return err //nolint:wrapcheck // already prefixed by the client
				}
				_, err = io.WriteString(c.Root().Writer, renderCategories(sums))
				return err //nolint:wrapcheck // terminal write
			})
		},
	}
}
