package application

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/internal/core/ports"
	"github.com/houseofbtc/houseledger/pkg/explorer"
	"github.com/houseofbtc/houseledger/pkg/wallet"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrMissingChainEndpoint ...
	ErrMissingChainEndpoint = errors.New("no chain endpoint configured")
	// ErrChainNotAttached ...
	ErrChainNotAttached = errors.New("chain connection is not attached")
	// ErrNullEngineFactory ...
	ErrNullEngineFactory = errors.New("wallet engine factory must not be null")
	// ErrNullChainConnector ...
	ErrNullChainConnector = errors.New("chain connector must not be null")
	// ErrNullNetwork ...
	ErrNullNetwork = errors.New("network must not be null")
	// ErrAddressNetworkMismatch ...
	ErrAddressNetworkMismatch = errors.New(
		"address does not belong to the wallet's network",
	)
)

// MasterAccountOpts is the struct given to NewMasterAccount.
type MasterAccountOpts struct {
	// Mnemonic is optional, a new 24-word one is generated if empty.
	Mnemonic       []string
	Network        *chaincfg.Params
	EngineFactory  ports.WalletEngineFactory
	ChainConnector ports.ChainConnector
	// DefaultEndpoint is used when AttachToChain is called without one.
	DefaultEndpoint string
	Clock           clock.Clock
}

func (o MasterAccountOpts) validate() error {
	if o.Network == nil {
		return ErrNullNetwork
	}
	if o.EngineFactory == nil {
		return ErrNullEngineFactory
	}
	if o.ChainConnector == nil {
		return ErrNullChainConnector
	}
	return nil
}

// MasterAccount custodies the single signing wallet shared by all accounts.
// It keeps the global view of issued addresses, in-flight transactions and
// credit transferred to children. It is not safe for concurrent use.
type MasterAccount struct {
	engine          ports.WalletEngine
	chainConnector  ports.ChainConnector
	defaultEndpoint string
	clock           clock.Clock

	chain                 explorer.Service
	allAddresses          []btcutil.Address
	pendingTransactions   []domain.TransactionRecord
	transferredToChildren uint64
	bitcoinAmount         uint64
}

// NewMasterAccount derives the signing wallet from the given seed words, or
// from newly generated ones. The returned account has no chain connection.
func NewMasterAccount(opts MasterAccountOpts) (*MasterAccount, error) {
	if err := opts.validate(); err != nil {
		return nil, domain.NewAccountError(domain.ErrAccountDefault, err)
	}

	mnemonic := opts.Mnemonic
	if len(mnemonic) <= 0 {
		var err error
		mnemonic, err = wallet.NewMnemonic(wallet.NewMnemonicOpts{
			EntropySize: wallet.DefaultEntropySize,
		})
		if err != nil {
			return nil, domain.NewAccountError(
				domain.ErrAccountDefault,
				domain.NewWalletError(domain.ErrKey, err),
			)
		}
	}

	engine, err := opts.EngineFactory(mnemonic, opts.Network)
	if err != nil {
		return nil, domain.NewAccountError(
			domain.ErrAccountDefault, domain.NewWalletError(domain.ErrKey, err),
		)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	return &MasterAccount{
		engine:              engine,
		chainConnector:      opts.ChainConnector,
		defaultEndpoint:     opts.DefaultEndpoint,
		clock:               clk,
		allAddresses:        make([]btcutil.Address, 0),
		pendingTransactions: make([]domain.TransactionRecord, 0),
	}, nil
}

// AttachToChain connects to the given endpoint, or the default one if empty,
// and performs the initial sync. The connection is kept only if the sync
// succeeds.
func (m *MasterAccount) AttachToChain(ctx context.Context, endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = m.defaultEndpoint
	}
	if strings.TrimSpace(endpoint) == "" {
		return domain.NewWalletError(domain.ErrSyncElectrum, ErrMissingChainEndpoint)
	}

	chain, err := m.chainConnector.Connect(ctx, endpoint)
	if err != nil {
		return domain.NewWalletError(domain.ErrSyncElectrum, err)
	}
	if err := m.engine.Sync(ctx, chain); err != nil {
		return domain.NewWalletError(domain.ErrSyncElectrum, err)
	}

	m.chain = chain
	m.bitcoinAmount = m.engine.Balance()

	log.WithField("endpoint", endpoint).Info("master account attached to chain")
	return nil
}

// IsAttached returns whether a chain connection is available.
func (m *MasterAccount) IsAttached() bool {
	return m.chain != nil
}

// Sync refreshes the wallet's view of the chain.
func (m *MasterAccount) Sync(ctx context.Context) error {
	if m.chain == nil {
		return domain.NewWalletError(domain.ErrSyncElectrum, ErrChainNotAttached)
	}
	if err := m.engine.Sync(ctx, m.chain); err != nil {
		return domain.NewWalletError(domain.ErrSyncElectrum, err)
	}
	return nil
}

// IssueNewAddress derives the next receive address of the wallet.
func (m *MasterAccount) IssueNewAddress() (btcutil.Address, error) {
	addr, err := m.engine.NextAddress()
	if err != nil {
		return nil, domain.NewWalletError(domain.ErrAddress, err)
	}
	m.allAddresses = append(m.allAddresses, addr)
	return addr, nil
}

// Spend pays amount to destination with a replaceable transaction at
// feeRate sat/vB, then records it as pending. The returned record tells
// whether the transaction is already confirmed.
func (m *MasterAccount) Spend(
	ctx context.Context, amount uint64, destination string, feeRate uint64,
) (domain.TransactionRecord, error) {
	if err := m.Sync(ctx); err != nil {
		return domain.TransactionRecord{}, err
	}

	destScript, err := m.parseDestination(destination)
	if err != nil {
		return domain.TransactionRecord{}, err
	}

	tx, summary, err := m.engine.BuildAndSign(destScript, amount, feeRate)
	if err != nil {
		return domain.TransactionRecord{}, domain.NewWalletError(domain.ErrKey, err)
	}

	txHex, err := serializeTx(tx)
	if err != nil {
		return domain.TransactionRecord{}, domain.NewWalletError(domain.ErrKey, err)
	}
	if m.chain == nil {
		return domain.TransactionRecord{}, domain.NewWalletError(
			domain.ErrBroadcastTransaction, ErrChainNotAttached,
		)
	}
	if _, err := m.chain.BroadcastTransaction(ctx, txHex); err != nil {
		return domain.TransactionRecord{}, domain.NewWalletError(
			domain.ErrBroadcastTransaction, err,
		)
	}
	broadcastAt := m.clock.Now()
	m.engine.TrackTransaction(summary)

	log.WithFields(log.Fields{
		"txid":   summary.TxID,
		"amount": amount,
		"fee":    summary.Fee.UnwrapOr(0),
	}).Info("transaction broadcasted")

	// The transaction is out: a failing re-sync must not drop its record.
	if err := m.Sync(ctx); err != nil {
		log.WithError(err).WithField("txid", summary.TxID).Warn(
			"failed to sync wallet after broadcast",
		)
	}

	m.engine.GetTransaction(summary.TxID).WhenSome(func(s ports.TxSummary) {
		summary = s
	})
	record := domain.TransactionRecord{
		TxID:         summary.TxID,
		Sent:         summary.Sent,
		Received:     summary.Received,
		Fee:          summary.Fee,
		Confirmation: summary.Confirmation,
		BroadcastAt:  broadcastAt,
	}
	m.pendingTransactions = append(m.pendingTransactions, record)
	m.bitcoinAmount = m.engine.Balance()

	return record, nil
}

// ChainTotal returns the value of all the UTXOs controlled by the wallet.
func (m *MasterAccount) ChainTotal(ctx context.Context) (uint64, error) {
	if err := m.Sync(ctx); err != nil {
		return 0, err
	}
	m.bitcoinAmount = m.engine.Balance()
	return m.bitcoinAmount, nil
}

// ChainTotalMinusTransferred returns the funds the master can use without
// touching the credit promised to children.
func (m *MasterAccount) ChainTotalMinusTransferred(
	ctx context.Context,
) (uint64, error) {
	total, err := m.ChainTotal(ctx)
	if err != nil {
		return 0, err
	}
	if m.transferredToChildren > total {
		return 0, domain.NewAccountError(domain.ErrInsufficientAccount, nil)
	}
	return total - m.transferredToChildren, nil
}

// RecordTransferToChild increases the credit transferred to children.
func (m *MasterAccount) RecordTransferToChild(amount uint64) error {
	total := m.transferredToChildren + amount
	if total < m.transferredToChildren {
		return domain.NewAccountError(
			domain.ErrAccountDefault, domain.ErrAmountOverflow,
		)
	}
	m.transferredToChildren = total
	return nil
}

// RecordTransferFromChild decreases the credit transferred to children.
func (m *MasterAccount) RecordTransferFromChild(amount uint64) error {
	if amount > m.transferredToChildren {
		return domain.NewAccountError(domain.ErrInsufficientAccount, nil)
	}
	m.transferredToChildren -= amount
	return nil
}

// RefreshPendingTransactions syncs the wallet and drops the pending
// transactions that got confirmed. It returns the ones still pending.
func (m *MasterAccount) RefreshPendingTransactions(
	ctx context.Context,
) ([]domain.TransactionRecord, error) {
	if err := m.Sync(ctx); err != nil {
		return nil, err
	}

	stillPending := make([]domain.TransactionRecord, 0, len(m.pendingTransactions))
	for _, tx := range m.pendingTransactions {
		confirmed := false
		m.engine.GetTransaction(tx.TxID).WhenSome(func(s ports.TxSummary) {
			confirmed = s.Confirmation.IsSome()
		})
		if confirmed {
			log.WithField("txid", tx.TxID).Debug("pending transaction settled")
			continue
		}
		stillPending = append(stillPending, tx)
	}
	m.pendingTransactions = stillPending
	m.bitcoinAmount = m.engine.Balance()

	return m.PendingTransactions(), nil
}

// PendingSpendTotal returns sent + fee over all the pending transactions.
func (m *MasterAccount) PendingSpendTotal() (uint64, error) {
	total, err := domain.SumSpendTotals(m.pendingTransactions)
	if err != nil {
		return 0, domain.NewWalletError(domain.ErrBroadcastTransaction, err)
	}
	return total, nil
}

// IsPending returns whether txid is among the pending transactions.
func (m *MasterAccount) IsPending(txid string) bool {
	for _, tx := range m.pendingTransactions {
		if tx.TxID == txid {
			return true
		}
	}
	return false
}

func (m *MasterAccount) AllAddresses() []btcutil.Address {
	addresses := make([]btcutil.Address, len(m.allAddresses))
	copy(addresses, m.allAddresses)
	return addresses
}

func (m *MasterAccount) PendingTransactions() []domain.TransactionRecord {
	txs := make([]domain.TransactionRecord, len(m.pendingTransactions))
	copy(txs, m.pendingTransactions)
	return txs
}

func (m *MasterAccount) TransferredToChildren() uint64 {
	return m.transferredToChildren
}

// BitcoinAmount returns the chain total cached by the last sync-and-read.
func (m *MasterAccount) BitcoinAmount() uint64 {
	return m.bitcoinAmount
}

// Unspents returns the wallet's UTXO set as of the last sync.
func (m *MasterAccount) Unspents() []explorer.Utxo {
	return m.engine.Unspents()
}

func (m *MasterAccount) Network() *chaincfg.Params {
	return m.engine.Network()
}

// Mnemonic returns the seed words of the signing wallet.
func (m *MasterAccount) Mnemonic() []string {
	return m.engine.Mnemonic()
}

func (m *MasterAccount) parseDestination(destination string) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(destination, m.Network())
	if err != nil {
		return nil, domain.NewWalletError(domain.ErrAddress, err)
	}
	if !addr.IsForNet(m.Network()) {
		return nil, domain.NewWalletError(
			domain.ErrAddress, ErrAddressNetworkMismatch,
		)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, domain.NewWalletError(domain.ErrAddress, err)
	}
	return script, nil
}

func serializeTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
