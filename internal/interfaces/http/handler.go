package httpinterface

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/houseofbtc/houseledger/internal/core/application"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/pkg/stats"
)

type ledgerHandler struct {
	svc     application.LedgerService
	metrics *stats.LedgerMetrics
}

func newLedgerHandler(
	svc application.LedgerService, metrics *stats.LedgerMetrics,
) *ledgerHandler {
	return &ledgerHandler{svc, metrics}
}

// SignUp creates a user and the account they own.
// POST /v1/sign_up
func (h *ledgerHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "sign_up", time.Now(), badRequest{err})
		return
	}
	if len(req.Permissions) > 0 {
		if _, err := domain.ParsePermissionSet(req.Permissions); err != nil {
			h.fail(c, "sign_up", time.Now(), badRequest{err})
			return
		}
	}

	start := time.Now()
	user, err := h.svc.SignUp(c.Request.Context(), domain.User{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.fail(c, "sign_up", start, err)
		return
	}

	h.succeed("sign_up", start)
	c.JSON(http.StatusCreated, toUserResponse(*user))
}

// GetBalance returns the balance of an account.
// GET /v1/accounts/:id/balance
func (h *ledgerHandler) GetBalance(c *gin.Context) {
	start := time.Now()
	accountID, err := parseAccountID(c)
	if err != nil {
		h.fail(c, "balance", start, err)
		return
	}

	balance, err := h.svc.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, "balance", start, err)
		return
	}

	h.succeed("balance", start)
	c.JSON(http.StatusOK, toBalanceResponse(*balance))
}

// IssueAddress issues a new receive address for an account.
// POST /v1/accounts/:id/address
func (h *ledgerHandler) IssueAddress(c *gin.Context) {
	start := time.Now()
	accountID, err := parseAccountID(c)
	if err != nil {
		h.fail(c, "address", start, err)
		return
	}

	addr, err := h.svc.IssueAddress(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, "address", start, err)
		return
	}

	h.succeed("address", start)
	c.JSON(http.StatusOK, gin.H{
		"account_id": accountID,
		"address":    addr,
	})
}

// Spend pays the given amount to the destination on behalf of an account.
// POST /v1/accounts/:id/spend
func (h *ledgerHandler) Spend(c *gin.Context) {
	start := time.Now()
	accountID, err := parseAccountID(c)
	if err != nil {
		h.fail(c, "spend", start, err)
		return
	}
	var req spendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "spend", start, badRequest{err})
		return
	}
	amount, err := req.Sats()
	if err != nil {
		h.fail(c, "spend", start, badRequest{err})
		return
	}

	result, err := h.svc.Spend(
		c.Request.Context(), accountID, amount, req.Destination,
	)
	if err != nil {
		h.fail(c, "spend", start, err)
		return
	}

	h.succeed("spend", start)
	c.JSON(http.StatusOK, spendResponse{
		Outcome:     result.Outcome.String(),
		Transaction: toTransactionResponse(result.Transaction),
	})
}

// TransferFromMaster credits an account with funds of the master account.
// POST /v1/accounts/:id/transfer/from_master
func (h *ledgerHandler) TransferFromMaster(c *gin.Context) {
	h.transfer(c, "transfer_from_master", h.svc.TransferFromMaster)
}

// TransferToMaster gives credit of an account back to the master account.
// POST /v1/accounts/:id/transfer/to_master
func (h *ledgerHandler) TransferToMaster(c *gin.Context) {
	h.transfer(c, "transfer_to_master", h.svc.TransferToMaster)
}

func (h *ledgerHandler) transfer(
	c *gin.Context, op string,
	transferFn func(ctx context.Context, accountID int, amount uint64) error,
) {
	start := time.Now()
	accountID, err := parseAccountID(c)
	if err != nil {
		h.fail(c, op, start, err)
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, op, start, badRequest{err})
		return
	}
	amount, err := req.Sats()
	if err != nil {
		h.fail(c, op, start, badRequest{err})
		return
	}

	if err := transferFn(c.Request.Context(), accountID, amount); err != nil {
		h.fail(c, op, start, err)
		return
	}

	h.succeed(op, start)
	c.JSON(http.StatusOK, gin.H{
		"account_id": accountID,
		"amount":     newAmount(amount),
	})
}

// GetPending lists the unconfirmed spends of an account.
// GET /v1/accounts/:id/pending
func (h *ledgerHandler) GetPending(c *gin.Context) {
	start := time.Now()
	accountID, err := parseAccountID(c)
	if err != nil {
		h.fail(c, "pending", start, err)
		return
	}

	info, err := h.svc.GetPending(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, "pending", start, err)
		return
	}

	h.succeed("pending", start)
	c.JSON(http.StatusOK, pendingResponse{
		AccountID:    info.AccountID,
		Transactions: toTransactionsResponse(info.Transactions),
		Total:        newAmount(info.Total),
	})
}

// RefreshPending drops the pending transactions that got confirmed.
// POST /v1/pending/refresh
func (h *ledgerHandler) RefreshPending(c *gin.Context) {
	start := time.Now()
	settled, err := h.svc.RefreshPending(c.Request.Context())
	if err != nil {
		h.fail(c, "refresh_pending", start, err)
		return
	}

	h.succeed("refresh_pending", start)
	c.JSON(http.StatusOK, gin.H{"settled": settled})
}

// GetMasterInfo returns the global view of the shared wallet.
// GET /v1/master
func (h *ledgerHandler) GetMasterInfo(c *gin.Context) {
	start := time.Now()
	info, err := h.svc.GetMasterInfo(c.Request.Context())
	if err != nil {
		h.fail(c, "master_info", start, err)
		return
	}

	h.succeed("master_info", start)
	h.metrics.SetMasterInfo(
		info.ChainTotal, info.TransferredToChildren, info.PendingSpendTotal,
		info.Addresses,
	)
	h.metrics.SetAccounts(info.Accounts)
	c.JSON(http.StatusOK, toMasterInfoResponse(*info))
}

func (h *ledgerHandler) succeed(op string, start time.Time) {
	h.metrics.ObserveOperation(op, stats.OutcomeOk, time.Since(start))
}

func (h *ledgerHandler) fail(
	c *gin.Context, op string, start time.Time, err error,
) {
	status, outcome := statusOf(err)
	h.metrics.ObserveOperation(op, outcome, time.Since(start))
	abortWithError(c, status, err)
}

func parseAccountID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, badRequest{ErrInvalidAccountID}
	}
	return id, nil
}
