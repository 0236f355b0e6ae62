package hdwallet

import (
	"context"
	"time"

	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"github.com/houseofbtc/houseledger/pkg/wallet"
	"github.com/lightningnetwork/lnd/fn/v2"
	log "github.com/sirupsen/logrus"
)

func (e *engine) Sync(ctx context.Context, chain explorer.Service) error {
	utxos := make([]explorer.Utxo, 0)
	for _, branch := range []uint32{wallet.ExternalBranch, wallet.InternalBranch} {
		branchUtxos, err := e.scanBranch(ctx, chain, branch)
		if err != nil {
			return err
		}
		utxos = append(utxos, branchUtxos...)
	}
	e.utxos = utxos

	return e.refreshTransactions(ctx, chain)
}

// scanBranch fetches the utxos of every address of the branch up to the
// last used one plus the gap limit. Finding coins beyond the next unused
// index moves it forward and extends the scan.
func (e *engine) scanBranch(
	ctx context.Context, chain explorer.Service, branch uint32,
) ([]explorer.Utxo, error) {
	utxos := make([]explorer.Utxo, 0)
	from := uint32(0)

	for {
		to := e.nextIndex[branch] + e.gapLimit
		addresses := make([]string, 0, to-from)
		indexByAddress := make(map[string]uint32, to-from)
		for i := from; i < to; i++ {
			addr, err := e.deriveAddress(branch, i)
			if err != nil {
				return nil, err
			}
			encoded := addr.address.EncodeAddress()
			addresses = append(addresses, encoded)
			indexByAddress[encoded] = i
		}

		found, err := chain.GetUnspentsForAddresses(ctx, addresses)
		if err != nil {
			return nil, err
		}

		for _, u := range found {
			index, ok := indexByAddress[u.Address()]
			if !ok {
				continue
			}
			if len(u.Script()) <= 0 {
				u.SetScript(e.derived[branch][index].script)
			}
			if index >= e.nextIndex[branch] {
				e.nextIndex[branch] = index + 1
			}
			utxos = append(utxos, u)
		}

		if e.nextIndex[branch]+e.gapLimit <= to {
			return utxos, nil
		}
		from = to
	}
}

func (e *engine) refreshTransactions(
	ctx context.Context, chain explorer.Service,
) error {
	for txid, tx := range e.txs {
		if tx.Confirmation.IsSome() {
			continue
		}

		status, err := chain.GetTransactionStatus(ctx, txid)
		if err != nil {
			return err
		}
		if !status.Confirmed() {
			continue
		}

		tx.Confirmation = fn.Some(domain.BlockTime{
			Height:    status.BlockHeight(),
			Timestamp: time.Unix(status.BlockTime(), 0),
		})
		e.txs[txid] = tx

		log.WithFields(log.Fields{
			"txid":   txid,
			"height": status.BlockHeight(),
		}).Debug("wallet transaction confirmed")
	}
	return nil
}
