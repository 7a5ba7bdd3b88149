package webserver

import (
	"net/http"

	nlogger "github.com/neutron-org/neutron-logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ethinscribe/inscriber/internal/inscribe"
	"github.com/ethinscribe/inscriber/internal/metrics"
)

const MonitoringLoggerContext = "monitoring"

// PromWrapper refreshes the stored-inscriptions gauge on every scrape before
// handing the request to the prometheus handler.
type PromWrapper struct {
	promHandler http.Handler
	storage     inscribe.Storage
	logger      *zap.Logger
}

func NewPromWrapper(logRegistry *nlogger.Registry, storage inscribe.Storage) PromWrapper {
	return PromWrapper{
		promHandler: promhttp.Handler(),
		storage:     storage,
		logger:      logRegistry.Get(MonitoringLoggerContext),
	}
}

func (p PromWrapper) fillStoredInscriptionsMetric() {
	records, err := p.storage.GetAllInscriptions()
	if err != nil {
		p.logger.Error("failed to get inscriptions from storage", zap.Error(err))
		return
	}
	metrics.SetStoredInscriptions(len(records))
}

func (p PromWrapper) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	p.fillStoredInscriptionsMetric()
	p.promHandler.ServeHTTP(res, req)
}
