package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HSLdevcom/digitransit-geocoder/internal/interp"
	"github.com/HSLdevcom/digitransit-geocoder/internal/store"
)

var roadloadConcurrency int

var roadloadCmd = &cobra.Command{
	Use:   "roadload <edges.shp> [more.shp ...]",
	Short: "Load road segments with address ranges from shapefiles",
	Long: `Reads road centerline shapefiles carrying per-side address ranges and
replaces the stored segments for each file. Files load in parallel; a file
that fails is logged and skipped so the rest still load.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "roadload"))

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Migrate(ctx); err != nil {
			return eris.Wrap(err, "roadload: migrate")
		}

		fields := interp.FieldMap{
			Street:    cfg.Roads.StreetField,
			AltStreet: cfg.Roads.AltField,
			LeftFrom:  cfg.Roads.LeftFrom,
			LeftTo:    cfg.Roads.LeftTo,
			RightFrom: cfg.Roads.RightFrom,
			RightTo:   cfg.Roads.RightTo,
		}

		concurrency := roadloadConcurrency
		if concurrency == 0 {
			concurrency = cfg.Roads.Concurrency
		}
		if concurrency <= 0 {
			concurrency = 3
		}

		var loaded, failed atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for _, path := range args {
			g.Go(func() error {
				segs, err := interp.LoadShapefile(path, fields)
				if err != nil {
					log.Error("shapefile skipped", zap.String("file", path), zap.Error(err))
					failed.Add(1)
					return nil
				}

				docs := make([]store.SegmentDoc, 0, len(segs))
				for _, seg := range segs {
					docs = append(docs, store.SegmentDoc{
						SourceFile: filepath.Base(path),
						Street:     seg.Street,
						AltStreet:  seg.AltStreet,
						MinLeft:    seg.Left.Min,
						MaxLeft:    seg.Left.Max,
						MinRight:   seg.Right.Min,
						MaxRight:   seg.Right.Max,
						Line:       seg.Line,
					})
				}

				if err := s.ReplaceSegments(gctx, filepath.Base(path), docs); err != nil {
					log.Error("shapefile skipped", zap.String("file", path), zap.Error(err))
					failed.Add(1)
					return nil
				}

				log.Info("segments loaded",
					zap.String("file", path),
					zap.Int("segments", len(docs)),
				)
				loaded.Add(1)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "roadload")
		}

		fmt.Printf("Loaded %d files, %d failed\n", loaded.Load(), failed.Load())
		return nil
	},
}

func init() {
	roadloadCmd.Flags().IntVar(&roadloadConcurrency, "concurrency", 0, "parallel file loads (default: from config or 3)")
	rootCmd.AddCommand(roadloadCmd)
}
