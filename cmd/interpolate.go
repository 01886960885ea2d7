package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/HSLdevcom/digitransit-geocoder/internal/interp"
)

var interpolateCmd = &cobra.Command{
	Use:   "interpolate <street> <number>",
	Short: "Estimate a house number location from stored road segments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		number, err := strconv.Atoi(args[1])
		if err != nil {
			return eris.Wrapf(err, "interpolate: parse house number %q", args[1])
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		segs, err := s.Segments(ctx)
		if err != nil {
			return eris.Wrap(err, "interpolate: load segments")
		}

		g := interp.NewGeocoder(segmentsFromDocs(segs))
		p, err := g.Interpolate(args[0], number)
		if err != nil {
			return eris.Wrapf(err, "interpolate: %s %d", args[0], number)
		}

		fmt.Printf(`{"coordinates":[%g,%g]}`+"\n", p[0], p[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interpolateCmd)
}
