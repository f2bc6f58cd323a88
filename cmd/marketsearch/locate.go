package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/marketsearch"
	"github.com/kailas-cloud/marketsearch/internal/config"
)

func locateCommand() *cli.Command {
	return &cli.Command{
		Name:  "locate",
		Usage: "Detect the current location, geocode an address or reverse geocode a point",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Usage: "Address to geocode"},
			&cli.FloatFlag{Name: "lat", Usage: "Latitude to reverse geocode"},
			&cli.FloatFlag{Name: "lng", Usage: "Longitude to reverse geocode"},
			&cli.BoolFlag{Name: "ip", Usage: "Use only the backend's IP lookup"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withClient(ctx, c, func(client *marketsearch.Client, _ config.Config) error {
				info, err := locate(ctx, c, client)
				if err != nil {
					return err
				}
				_, err = io.WriteString(c.Root().Writer, renderLocation(info))
				return err //nolint:wrapcheck // terminal write
			})
		},
	}
}

func locate(ctx context.Context, c *cli.Command, client *marketsearch.Client) (*marketsearch.LocationInfo, error) {
	switch {
	case c.String("address") != "":
		return client.Geocode(ctx, c.String("address")) //nolint:wrapcheck // already prefixed by the client

	case c.IsSet("lat") || c.IsSet("lng"):
		if !c.IsSet("lat") || !c.IsSet("lng") {
			return nil, fmt.Errorf("--lat and --lng must be set together")
		}
		lat, lng := c.Float("lat"), c.Float("lng")
		addr, err := client.ReverseGeocode(ctx, lat, lng)
		// A failed lookup still yields a coordinate label worth showing.
		if err != nil && !errors.Is(err, marketsearch.ErrGeocodingFailed) {
			return nil, err //nolint:wrapcheck // already prefixed by the client
		}
		return &marketsearch.LocationInfo{Latitude: &lat, Longitude: &lng, Address: addr}, nil

	case c.Bool("ip"):
		return client.LocationFromIP(ctx) //nolint:wrapcheck // already prefixed by the client

	default:
		return client.Locate(ctx) //nolint:wrapcheck // already prefixed by the client
	}
}
