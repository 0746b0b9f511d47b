// Command sunctl runs the sun engine from the command line: compute a dial
// from explicit times, read an offset, or fetch a location's forecast.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/skydial/skydial/internal/config"
	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/sun"
	"github.com/skydial/skydial/internal/weather"
	"github.com/skydial/skydial/internal/weather/tomorrowio"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "sunctl",
		Short:         "SkyDial sun engine tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")

	root.AddCommand(stateCmd())
	root.AddCommand(offsetCmd())
	root.AddCommand(nightCmd())
	root.AddCommand(forecastCmd(&configFile))
	return root
}

func stateCmd() *cobra.Command {
	var (
		in     sun.Input
		offset string
		now    string
		path   string
	)

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Compute the sun dial for a sunrise and sunset",
		Example: `  sunctl state --sunrise 2024-06-03T05:25:00-04:00 --sunset 2024-06-03T20:23:00-04:00 \
    --now 2024-06-04T02:00:00Z`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			geometry, err := pathFor(path)
			if err != nil {
				return err
			}

			in.OffsetMinutes, err = offsetFor(offset, in.SunriseISO)
			if err != nil {
				return err
			}

			at := time.Now()
			if now != "" {
				if at, err = time.Parse(time.RFC3339, now); err != nil {
					return fmt.Errorf("--now: %w", err)
				}
			}

			return printJSON(cmd.OutOrStdout(), dashboard.NewSunDial(sun.Compute(at, in, geometry), geometry))
		},
	}

	cmd.Flags().StringVar(&in.SunriseISO, "sunrise", "", "sunrise as ISO 8601 (required)")
	cmd.Flags().StringVar(&in.SunsetISO, "sunset", "", "sunset as ISO 8601 (required)")
	cmd.Flags().StringVar(&offset, "offset", "", "UTC offset in minutes; defaults to the sunrise offset")
	cmd.Flags().StringVar(&now, "now", "", "evaluation time as RFC 3339; defaults to the system clock")
	cmd.Flags().StringVar(&path, "path", "arc", "day path geometry: arc or line")
	_ = cmd.MarkFlagRequired("sunrise")
	_ = cmd.MarkFlagRequired("sunset")
	return cmd
}

func offsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offset <timestamp>",
		Short: "Print the UTC offset in minutes carried by an ISO 8601 timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := sun.ExtractTimezoneOffset(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), minutes)
			return nil
		},
	}
}

func nightCmd() *cobra.Command {
	var sunrise, sunset string

	cmd := &cobra.Command{
		Use:   "night <timestamp>",
		Short: "Print whether a timestamp falls at night, judged in its own offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), sun.IsNightForTimestamp(args[0], sunrise, sunset))
			return nil
		},
	}

	cmd.Flags().StringVar(&sunrise, "sunrise", "", "sunrise as ISO 8601 (required)")
	cmd.Flags().StringVar(&sunset, "sunset", "", "sunset as ISO 8601 (required)")
	_ = cmd.MarkFlagRequired("sunrise")
	_ = cmd.MarkFlagRequired("sunset")
	return cmd
}

func forecastCmd(configFile *string) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fetch a location's forecast and print today's sun dial",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client := tomorrowio.NewClient(tomorrowio.ClientConfig{
				APIKey:  cfg.Tomorrow.APIKey,
				BaseURL: cfg.Tomorrow.BaseURL,
				Logger:  zerolog.New(cmd.ErrOrStderr()).Level(zerolog.WarnLevel),
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			return printForecastSun(ctx, cmd.OutOrStdout(), client, lat, lon)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 40.71427, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", -74.00597, "longitude")
	return cmd
}

func printForecastSun(ctx context.Context, w io.Writer, provider weather.Provider, lat, lon float64) error {
	f, err := provider.GetForecast(ctx, lat, lon)
	if err != nil {
		return err
	}
	return printJSON(w, dashboard.NewBuilder(nil).Sun(f))
}

func pathFor(name string) (sun.PathGeometry, error) {
	switch name {
	case "", "arc":
		return sun.DayArc, nil
	case "line":
		return sun.NightLine, nil
	default:
		return nil, fmt.Errorf("unknown path %q: want arc or line", name)
	}
}

func offsetFor(flag, sunrise string) (int, error) {
	if flag != "" {
		minutes, err := strconv.Atoi(flag)
		if err != nil {
			return 0, fmt.Errorf("--offset: %w", err)
		}
		return minutes, nil
	}
	minutes, err := sun.ExtractTimezoneOffset(sunrise)
	if err != nil {
		// Zero is treated as a missing offset downstream.
		return 0, nil
	}
	return minutes, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
