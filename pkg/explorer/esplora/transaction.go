package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/houseofbtc/houseledger/pkg/explorer"
)

func (e *esplora) GetTransactionHex(
	ctx context.Context, txid string,
) (string, error) {
	path := fmt.Sprintf("/tx/%s/hex", txid)
	resp, err := e.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

func (e *esplora) GetTransactionStatus(
	ctx context.Context, txid string,
) (explorer.TransactionStatus, error) {
	path := fmt.Sprintf("/tx/%s/status", txid)
	resp, err := e.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var status explorer.TxStatus
	if err := json.Unmarshal([]byte(resp), &status); err != nil {
		return nil, fmt.Errorf("error on parsing tx status: %s", err)
	}
	return status, nil
}

func (e *esplora) IsTransactionConfirmed(
	ctx context.Context, txid string,
) (bool, error) {
	status, err := e.GetTransactionStatus(ctx, txid)
	if err != nil {
		return false, err
	}
	return status.Confirmed(), nil
}

func (e *esplora) BroadcastTransaction(
	ctx context.Context, txHex string,
) (string, error) {
	headers := map[string]string{
		"Content-Type": "text/plain",
	}
	resp, err := e.doRequest(ctx, http.MethodPost, "/tx", txHex, headers)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}
