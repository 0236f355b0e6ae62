package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"golang.org/x/sync/errgroup"
)

type utxoResponse struct {
	TxID   string            `json:"txid"`
	Vout   uint32            `json:"vout"`
	Value  uint64            `json:"value"`
	Status explorer.TxStatus `json:"status"`
}

func (e *esplora) GetUnspents(
	ctx context.Context, addr string,
) ([]explorer.Utxo, error) {
	return e.getUnspents(ctx, addr)
}

func (e *esplora) GetUnspentsForAddresses(
	ctx context.Context, addresses []string,
) ([]explorer.Utxo, error) {
	unspentsByAddress := make([][]explorer.Utxo, len(addresses))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentRequests)
	for i := range addresses {
		i := i
		eg.Go(func() error {
			unspents, err := e.getUnspents(ctx, addresses[i])
			if err != nil {
				return err
			}
			unspentsByAddress[i] = unspents
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	unspents := make([]explorer.Utxo, 0)
	for _, u := range unspentsByAddress {
		unspents = append(unspents, u...)
	}
	return unspents, nil
}

func (e *esplora) getUnspents(
	ctx context.Context, addr string,
) ([]explorer.Utxo, error) {
	script, err := e.addressScript(addr)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/address/%s/utxo", addr)
	resp, err := e.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %w", err)
	}

	var outs []utxoResponse
	if err := json.Unmarshal([]byte(resp), &outs); err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %s", err)
	}

	unspents := make([]explorer.Utxo, 0, len(outs))
	for _, out := range outs {
		unspents = append(unspents, explorer.NewWitnessUtxo(
			out.TxID, out.Vout, out.Value, addr, script, out.Status,
		))
	}
	return unspents, nil
}

func (e *esplora) addressScript(addr string) ([]byte, error) {
	address, err := btcutil.DecodeAddress(addr, e.network)
	if err != nil {
		return nil, fmt.Errorf("invalid address %s: %w", addr, err)
	}
	if !address.IsForNet(e.network) {
		return nil, fmt.Errorf(
			"address %s does not belong to network %s", addr, e.network.Name,
		)
	}
	return txscript.PayToAddrScript(address)
}
