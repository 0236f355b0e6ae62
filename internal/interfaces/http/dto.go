package httpinterface

import (
	"github.com/houseofbtc/houseledger/internal/core/application"
	"github.com/houseofbtc/houseledger/internal/core/domain"
)

type signUpRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Permissions []string `json:"permissions"`
}

type spendRequest struct {
	AmountRequest
	Destination string `json:"destination"`
}

type transferRequest struct {
	AmountRequest
}

type userResponse struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	AccountID   int      `json:"account_id"`
	Permissions []string `json:"permissions"`
	CreatedAt   int64    `json:"created_at"`
}

type balanceResponse struct {
	AccountID             int    `json:"account_id"`
	UtxoBalance           Amount `json:"utxo_balance"`
	TransferredFromMaster Amount `json:"transferred_from_master"`
	EffectiveBalance      Amount `json:"effective_balance"`
}

type transactionResponse struct {
	TxID        string  `json:"txid"`
	Sent        Amount  `json:"sent"`
	Received    Amount  `json:"received"`
	Fee         *Amount `json:"fee,omitempty"`
	Confirmed   bool    `json:"confirmed"`
	BlockHeight *uint32 `json:"block_height,omitempty"`
	BlockTime   *int64  `json:"block_time,omitempty"`
	BroadcastAt int64   `json:"broadcast_at"`
}

type spendResponse struct {
	Outcome     string              `json:"outcome"`
	Transaction transactionResponse `json:"transaction"`
}

type pendingResponse struct {
	AccountID    int                   `json:"account_id"`
	Transactions []transactionResponse `json:"transactions"`
	Total        Amount                `json:"total"`
}

type masterInfoResponse struct {
	ChainTotal            Amount `json:"chain_total"`
	TransferredToChildren Amount `json:"transferred_to_children"`
	Available             Amount `json:"available"`
	PendingSpendTotal     Amount `json:"pending_spend_total"`
	Addresses             int    `json:"addresses"`
	Accounts              int    `json:"accounts"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		AccountID:   u.AccountID,
		Permissions: u.Permissions,
		CreatedAt:   u.CreatedAt,
	}
}

func toBalanceResponse(b application.Balance) balanceResponse {
	return balanceResponse{
		AccountID:             b.AccountID,
		UtxoBalance:           newAmount(b.UtxoBalance),
		TransferredFromMaster: newAmount(b.TransferredFromMaster),
		EffectiveBalance:      newAmount(b.EffectiveBalance),
	}
}

func toTransactionResponse(tx domain.TransactionRecord) transactionResponse {
	res := transactionResponse{
		TxID:        tx.TxID,
		Sent:        newAmount(tx.Sent),
		Received:    newAmount(tx.Received),
		Confirmed:   tx.IsConfirmed(),
		BroadcastAt: tx.BroadcastAt.Unix(),
	}
	tx.Fee.WhenSome(func(fee uint64) {
		amount := newAmount(fee)
		res.Fee = &amount
	})
	tx.Confirmation.WhenSome(func(bt domain.BlockTime) {
		height, timestamp := bt.Height, bt.Timestamp.Unix()
		res.BlockHeight = &height
		res.BlockTime = &timestamp
	})
	return res
}

func toTransactionsResponse(
	txs []domain.TransactionRecord,
) []transactionResponse {
	res := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		res = append(res, toTransactionResponse(tx))
	}
	return res
}

func toMasterInfoResponse(info application.MasterInfo) masterInfoResponse {
	return masterInfoResponse{
		ChainTotal:            newAmount(info.ChainTotal),
		TransferredToChildren: newAmount(info.TransferredToChildren),
		Available:             newAmount(info.Available),
		PendingSpendTotal:     newAmount(info.PendingSpendTotal),
		Addresses:             info.Addresses,
		Accounts:              info.Accounts,
	}
}
