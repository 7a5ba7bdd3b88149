package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	nlogger "github.com/neutron-org/neutron-logger"
	"go.uber.org/zap"

	"github.com/ethinscribe/inscriber/internal/inscribe"
)

const ServerContext = "webserver"

type inscriptionsResponse struct {
	Inscriptions []*inscribe.InscriptionRecord `json:"inscriptions"`
}

// Router exposes the stored inscriptions and a liveness endpoint.
func Router(logRegistry *nlogger.Registry, store inscribe.Storage) *mux.Router {
	logger := logRegistry.Get(ServerContext)
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/inscriptions", inscriptions(store, logger))
	router.HandleFunc("/healthz", healthz)
	return router
}

// Run serves the webserver until ctx is cancelled.
func Run(ctx context.Context, logRegistry *nlogger.Registry, store inscribe.Storage, port int) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: Router(logRegistry, store),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		//nolint:errcheck
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve webserver: %w", err)
	}

	return nil
}

func inscriptions(store inscribe.Storage, logger *zap.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := store.GetAllInscriptions()
		if err != nil {
			logger.Error("failed to get inscriptions from storage", zap.Error(err))
			http.Error(w, "failed to read storage", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(inscriptionsResponse{Inscriptions: records}); err != nil {
			logger.Error("failed to encode inscriptions response", zap.Error(err))
		}
	}
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
