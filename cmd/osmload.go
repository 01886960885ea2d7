package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HSLdevcom/digitransit-geocoder/internal/muni"
	"github.com/HSLdevcom/digitransit-geocoder/internal/osm"
	"github.com/HSLdevcom/digitransit-geocoder/internal/store"
)

var osmloadBoundaries string

var osmloadCmd = &cobra.Command{
	Use:   "osmload <extract.osm.pbf>",
	Short: "Extract addresses and POIs from an OpenStreetMap extract",
	Long: `Streams an OSM PBF extract, emits points of interest, links ways and nodes
to their street relations, assembles merged address records and writes them
to the store. Pass --boundaries to resolve each address to a municipality.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(
			zap.String("command", "osmload"),
			zap.String("run_id", uuid.New().String()),
		)

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Migrate(ctx); err != nil {
			return eris.Wrap(err, "osmload: migrate")
		}

		var locator *muni.Locator
		if osmloadBoundaries != "" {
			munis, err := muni.LoadShapefile(osmloadBoundaries, cfg.Municipalities.NameField)
			if err != nil {
				return eris.Wrap(err, "osmload: load boundaries")
			}
			locator = muni.NewLocator(munis)
			log.Info("loaded municipality boundaries", zap.Int("municipalities", locator.Len()))
		}

		resolver := osm.NewResolver(s, cfg.OSM.BulkSize)
		if err := osm.LoadExtract(ctx, args[0], cfg.OSM.DecodeWorkers, resolver); err != nil {
			return eris.Wrap(err, "osmload")
		}

		stats := resolver.Stats()
		log.Info("extract processed",
			zap.Int("coords", stats.Coords),
			zap.Int("nodes", stats.Nodes),
			zap.Int("ways", stats.Ways),
			zap.Int("relations", stats.Relations),
		)

		osm.LinkStreets(resolver)

		merged := osm.NewMergeStore(locator)
		osm.NewAssembler(resolver, merged).Run()

		records := merged.Records()
		docs := make([]store.OSMAddressDoc, 0, len(records))
		for _, rec := range records {
			docs = append(docs, store.OSMAddressDoc{
				Municipality: rec.Municipality,
				Street:       rec.Street,
				Number:       rec.Number,
				Unit:         rec.Unit,
				Lon:          rec.Location[0],
				Lat:          rec.Location[1],
				MainEntrance: rec.MainEntrance,
			})
		}
		written := store.EmitOSMAddresses(ctx, s, docs, cfg.OSM.BulkSize)

		log.Info("addresses written",
			zap.Int("merged", len(docs)),
			zap.Int64("written", written),
		)
		fmt.Printf("Wrote %d of %d merged addresses\n", written, len(docs))
		return nil
	},
}

func init() {
	osmloadCmd.Flags().StringVar(&osmloadBoundaries, "boundaries", "", "municipality boundary shapefile")
	rootCmd.AddCommand(osmloadCmd)
}
