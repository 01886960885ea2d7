package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HSLdevcom/digitransit-geocoder/internal/registry"
	"github.com/HSLdevcom/digitransit-geocoder/internal/store"
)

var registryloadCmd = &cobra.Command{
	Use:   "registryload <addresses.csv>",
	Short: "Load a municipal address registry extract",
	Long: `Reads a latin-1, semicolon-separated registry CSV with GK25FIN plane
coordinates, converts each row to WGS84 and upserts it into the store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "registryload"))

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Migrate(ctx); err != nil {
			return eris.Wrap(err, "registryload: migrate")
		}

		docs, err := registry.LoadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "registryload")
		}
		log.Info("registry parsed", zap.String("file", args[0]), zap.Int("addresses", len(docs)))

		written := store.EmitAddresses(ctx, s, docs, cfg.OSM.BulkSize)

		log.Info("registry addresses written", zap.Int64("written", written))
		fmt.Printf("Wrote %d of %d registry addresses\n", written, len(docs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registryloadCmd)
}
