package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/solandes-viajes/cost-console/internal/export"
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/reconcile"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Actor"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/groups", func(w http.ResponseWriter, req *http.Request) {
			evals, err := env.Engine.EvaluateAll(req.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			summaries := make([]model.GroupCostSummary, 0, len(evals))
			for _, ev := range evals {
				summaries = append(summaries, ev.Summary)
			}
			writeJSON(w, http.StatusOK, summaries)
		})

		r.Get("/groups/{groupID}", func(w http.ResponseWriter, req *http.Request) {
			ev, err := env.Engine.Evaluate(req.Context(), chi.URLParam(req, "groupID"))
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, ev)
		})

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.WriteRPS), cfg.Server.WriteBurst)
		r.Patch("/groups/{groupID}/lines/{lineID}", func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, eris.New("write rate limit exceeded"))
				return
			}

			var body struct {
				model.OverridePatch
				UnlockSecret string `json:"unlock_secret,omitempty"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, eris.Wrap(err, "invalid request body"))
				return
			}
			if body.UpdatedBy == "" {
				body.UpdatedBy = req.Header.Get("X-Actor")
			}

			rec, err := env.Engine.ApplyOverride(req.Context(),
				chi.URLParam(req, "groupID"), chi.URLParam(req, "lineID"),
				body.OverridePatch, body.UnlockSecret,
			)
			if err != nil {
				status := http.StatusInternalServerError
				if eris.Is(err, reconcile.ErrReviewLocked) {
					status = http.StatusForbidden
				}
				writeError(w, status, err)
				return
			}
			writeJSON(w, http.StatusOK, rec)
		})

		r.Get("/export", func(w http.ResponseWriter, req *http.Request) {
			evals, err := env.Engine.EvaluateAll(req.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="group-costs.xlsx"`)
			if err := export.Write(w, evals); err != nil {
				zap.L().Error("export download failed", zap.Error(err))
			}
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
