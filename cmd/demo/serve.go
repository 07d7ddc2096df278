package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/comalice/tickfsm"
	"github.com/comalice/tickfsm/internal/production"
	"github.com/comalice/tickfsm/realtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the machine behind an HTTP API",
	Long: `Starts the tick loop and exposes:

  GET  /states         current state vector
  POST /events/{type}  queue an event for the next tick
  GET  /dot            structure with the current states highlighted
  GET  /metrics        Prometheus metrics (enable the metrics inspector)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.runtime.Start(context.Background()); err != nil {
			return err
		}
		defer a.runtime.Stop()

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           newRouter(a),
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("serving", "addr", srv.Addr, "machine", a.machine.ID())
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			a.logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Warn("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}

type statesResponse struct {
	Machine string            `json:"machine"`
	States  []tickfsm.StateID `json:"states"`
	Tick    uint64            `json:"tick"`
	Error   string            `json:"error,omitempty"`
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Get("/states", func(w http.ResponseWriter, r *http.Request) {
		resp := statesResponse{
			Machine: a.machine.ID(),
			States:  a.runtime.CurrentStates(),
			Tick:    a.runtime.TickNumber(),
		}
		status := http.StatusOK
		if err := a.runtime.Err(); err != nil {
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	})

	r.Post("/events/{type}", func(w http.ResponseWriter, r *http.Request) {
		var data any
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
				http.Error(w, "invalid event data", http.StatusBadRequest)
				return
			}
		}
		err := a.runtime.SendEvent(tickfsm.NewEvent(chi.URLParam(r, "type"), data))
		switch {
		case errors.Is(err, realtime.ErrBatchFull):
			http.Error(w, err.Error(), http.StatusTooManyRequests)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusAccepted)
		}
	})

	r.Get("/dot", func(w http.ResponseWriter, r *http.Request) {
		v := &production.DefaultVisualizer{}
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(v.ExportDOT(a.machine.Config(), a.runtime.CurrentStates())))
	})

	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
