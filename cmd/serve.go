package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nicklittle905/football-team-season-tracker/internal/query"
	"github.com/nicklittle905/football-team-season-tracker/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve derived views as a read-only JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openReadOnlyStore(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: open store")
		}
		defer st.Close() //nolint:errcheck

		f := query.NewFacade(st, cfg.API.CompetitionCode, cfg.API.Season)

		r := chi.NewRouter()
		r.Use(requestLogger)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]string{"status": "ok"})
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/table", func(w http.ResponseWriter, req *http.Request) {
				writeJSON(w, orEmpty(f.LeagueTable(req.Context())))
			})
			r.Get("/teams", func(w http.ResponseWriter, req *http.Request) {
				writeJSON(w, orEmpty(f.Teams(req.Context())))
			})
			r.Get("/teams/{id}/matches", func(w http.ResponseWriter, req *http.Request) {
				id, ok := pathID(w, req)
				if !ok {
					return
				}
				writeJSON(w, orEmpty(f.TeamMatches(req.Context(), id)))
			})
			r.Get("/teams/{id}/form", func(w http.ResponseWriter, req *http.Request) {
				id, ok := pathID(w, req)
				if !ok {
					return
				}
				n, _ := strconv.Atoi(req.URL.Query().Get("last"))
				writeJSON(w, orEmpty(f.FormStrip(req.Context(), id, n)))
			})
			r.Get("/teams/{id}/positions", func(w http.ResponseWriter, req *http.Request) {
				id, ok := pathID(w, req)
				if !ok {
					return
				}
				writeJSON(w, orEmpty(f.PositionSeries(req.Context(), id)))
			})
			r.Get("/matches/{id}", func(w http.ResponseWriter, req *http.Request) {
				id, ok := pathID(w, req)
				if !ok {
					return
				}
				m := f.MatchDetail(req.Context(), id)
				if m == nil {
					http.Error(w, `{"error":"match not found"}`, http.StatusNotFound)
					return
				}
				writeJSON(w, m)
			})
			r.Get("/predict", func(w http.ResponseWriter, req *http.Request) {
				home, err1 := strconv.ParseInt(req.URL.Query().Get("home"), 10, 64)
				away, err2 := strconv.ParseInt(req.URL.Query().Get("away"), 10, 64)
				if err1 != nil || err2 != nil {
					http.Error(w, `{"error":"home and away team ids are required"}`, http.StatusBadRequest)
					return
				}
				writeJSON(w, f.Predict(req.Context(), home, away))
			})
			r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
				writeJSON(w, orEmpty(f.Runs(req.Context(), store.RunFilter{})))
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// requestLogger tags each request with an id and logs method, path, and
// duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

// orEmpty keeps "no data yet" responses as [] instead of null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func pathID(w http.ResponseWriter, req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
