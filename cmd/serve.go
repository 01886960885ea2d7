package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HSLdevcom/digitransit-geocoder/internal/interp"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the address interpolation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		docs, err := s.Segments(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: load segments")
		}
		geocoder := interp.NewGeocoder(segmentsFromDocs(docs))
		zap.L().Info("segments loaded", zap.Int("segments", geocoder.Len()))

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		mux.HandleFunc("GET /interpolate/{street}/{number}", func(w http.ResponseWriter, r *http.Request) {
			allowOrigin(w, r)

			number, err := strconv.Atoi(r.PathValue("number"))
			if err != nil {
				http.Error(w, `{"error":"invalid house number"}`, http.StatusBadRequest)
				return
			}

			p, err := geocoder.Interpolate(r.PathValue("street"), number)
			if err != nil {
				if errors.Is(err, interp.ErrNoMatch) {
					http.Error(w, `{"error":"address not found"}`, http.StatusNotFound)
					return
				}
				zap.L().Error("interpolation failed",
					zap.String("street", r.PathValue("street")),
					zap.Int("number", number),
					zap.Error(err),
				)
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{
				"coordinates": []float64{p[0], p[1]},
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// allowOrigin mirrors the request origin so browser clients on any host can
// call the API.
func allowOrigin(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
