package esplora

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/houseofbtc/houseledger/pkg/circuitbreaker"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

const (
	// DefaultRequestTimeout is used when no request timeout is given.
	DefaultRequestTimeout = 15 * time.Second

	maxConcurrentRequests = 8
)

var (
	// ErrNullNetwork ...
	ErrNullNetwork = errors.New("network params must not be null")
	// ErrMissingURL ...
	ErrMissingURL = errors.New("explorer url must not be empty")
)

type esplora struct {
	apiURL  string
	network *chaincfg.Params
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// NewService returns a new esplora service as an explorer.Service interface.
// A non-positive rateLimit disables request throttling.
func NewService(
	ctx context.Context,
	apiURL string,
	network *chaincfg.Params,
	reqTimeout time.Duration,
	rateLimit int,
) (explorer.Service, error) {
	if apiURL == "" {
		return nil, ErrMissingURL
	}
	if network == nil {
		return nil, ErrNullNetwork
	}
	if reqTimeout <= 0 {
		reqTimeout = DefaultRequestTimeout
	}

	limiter := ratelimit.NewUnlimited()
	if rateLimit > 0 {
		limiter = ratelimit.New(rateLimit)
	}

	service := &esplora{
		apiURL:  apiURL,
		network: network,
		client:  &http.Client{Timeout: reqTimeout},
		cb:      circuitbreaker.NewCircuitBreaker("esplora", isSuccessful),
		limiter: limiter,
	}

	if err := service.healthCheck(ctx); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

// Connector opens esplora services sharing the same settings.
type Connector struct {
	Network        *chaincfg.Params
	RequestTimeout time.Duration
	RateLimit      int
}

// Connect returns a new esplora service for the given endpoint.
func (c Connector) Connect(
	ctx context.Context, endpoint string,
) (explorer.Service, error) {
	return NewService(ctx, endpoint, c.Network, c.RequestTimeout, c.RateLimit)
}

func (e *esplora) healthCheck(ctx context.Context) error {
	_, err := e.doRequest(ctx, http.MethodGet, "/blocks/tip/height", "", nil)
	return err
}
