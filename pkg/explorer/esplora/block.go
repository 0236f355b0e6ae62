package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/houseofbtc/houseledger/pkg/explorer"
)

func (e *esplora) GetBlockHeight(ctx context.Context) (uint32, error) {
	resp, err := e.doRequest(ctx, http.MethodGet, "/blocks/tip/height", "", nil)
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseUint(strings.TrimSpace(resp), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(height), nil
}

func (e *esplora) GetFeeEstimates(ctx context.Context) (explorer.FeeEstimates, error) {
	resp, err := e.doRequest(ctx, http.MethodGet, "/fee-estimates", "", nil)
	if err != nil {
		return nil, err
	}

	var estimates map[string]float64
	if err := json.Unmarshal([]byte(resp), &estimates); err != nil {
		return nil, fmt.Errorf("error on parsing fee estimates: %s", err)
	}

	feeEstimates := make(explorer.FeeEstimates, len(estimates))
	for target, rate := range estimates {
		blocks, err := strconv.Atoi(target)
		if err != nil {
			return nil, fmt.Errorf("invalid confirmation target %s", target)
		}
		feeEstimates[blocks] = rate
	}
	return feeEstimates, nil
}
