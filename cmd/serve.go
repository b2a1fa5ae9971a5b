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

	"github.com/eleco-media/amaike/internal/assistant"
	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		hub := assistant.NewHub(env.factory)
		submitter := env.factory()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				SessionID string `json:"sessionId"`
				Message   string `json:"message"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.Message == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
				return
			}

			a, sessionID := hub.Get(body.SessionID)
			reply, err := a.HandleMessage(req.Context(), body.Message)
			if err != nil {
				if eris.Is(err, assistant.ErrSuperseded) {
					writeJSON(w, http.StatusConflict, map[string]string{"error": "superseded by a newer message"})
					return
				}
				zap.L().Error("chat request failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				return
			}

			writeJSON(w, http.StatusOK, map[string]any{
				"sessionId": sessionID,
				"reply":     reply,
			})
		})

		r.Post("/api/tips/{id}/submit", func(w http.ResponseWriter, req *http.Request) {
			tipID := chi.URLParam(req, "id")

			tip, err := env.store.GetTip(req.Context(), tipID)
			if err != nil {
				if eris.Is(err, store.ErrTipNotFound) {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "tip not found"})
					return
				}
				zap.L().Error("load tip failed", zap.String("tip_id", tipID), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				return
			}

			result, err := submitter.SubmitTip(req.Context(), tip)
			if err != nil {
				writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/api/tips", func(w http.ResponseWriter, req *http.Request) {
			filter := store.TipFilter{}
			if s := req.URL.Query().Get("status"); s != "" {
				filter.Status = model.TipStatus(s)
			}
			tipsList, err := env.store.ListTips(req.Context(), filter)
			if err != nil {
				zap.L().Error("list tips failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"tips": tipsList})
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
			srv.Shutdown(ctx)
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
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
