package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/houseofbtc/houseledger/internal/core/application"
	interfaces "github.com/houseofbtc/houseledger/internal/interfaces"
	"github.com/houseofbtc/houseledger/pkg/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

var (
	// ErrMissingAddress ...
	ErrMissingAddress = errors.New("missing listening address")
	// ErrNullLedgerService ...
	ErrNullLedgerService = errors.New("ledger service must not be null")
)

// ServiceOpts is the struct given to NewService.
type ServiceOpts struct {
	Address   string
	LedgerSvc application.LedgerService
	// Registry defaults to a new registry exporting go and process metrics
	// along with the ledger ones.
	Registry *prometheus.Registry
}

func (o ServiceOpts) validate() error {
	if o.Address == "" {
		return ErrMissingAddress
	}
	if o.LedgerSvc == nil {
		return ErrNullLedgerService
	}
	return nil
}

type service struct {
	address string
	server  *http.Server
}

// NewService returns the REST interface of the ledger.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %w", err)
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics, err := stats.NewLedgerMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	return &service{
		address: opts.Address,
		server: &http.Server{
			Handler:           NewRouter(opts.LedgerSvc, metrics, registry),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server stopped unexpectedly")
		}
	}()

	log.Infof("http server listening on %s", lis.Addr())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http server")
		return
	}
	log.Info("http server stopped")
}
