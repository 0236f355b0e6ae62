package httpinterface

import (
	"context"

	"github.com/houseofbtc/houseledger/internal/core/application"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockLedgerService struct {
	mock.Mock
}

func (m *mockLedgerService) Connect(ctx context.Context, endpoint string) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

func (m *mockLedgerService) Restore(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockLedgerService) SignUp(
	ctx context.Context, user domain.User,
) (*domain.User, error) {
	args := m.Called(ctx, user)
	var res *domain.User
	if a := args.Get(0); a != nil {
		res = a.(*domain.User)
	}
	return res, args.Error(1)
}

func (m *mockLedgerService) IssueAddress(
	ctx context.Context, accountID int,
) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *mockLedgerService) Spend(
	ctx context.Context, accountID int, amount uint64, destination string,
) (*application.SpendResult, error) {
	args := m.Called(ctx, accountID, amount, destination)
	var res *application.SpendResult
	if a := args.Get(0); a != nil {
		res = a.(*application.SpendResult)
	}
	return res, args.Error(1)
}

func (m *mockLedgerService) GetBalance(
	ctx context.Context, accountID int,
) (*application.Balance, error) {
	args := m.Called(ctx, accountID)
	var res *application.Balance
	if a := args.Get(0); a != nil {
		res = a.(*application.Balance)
	}
	return res, args.Error(1)
}

func (m *mockLedgerService) TransferFromMaster(
	ctx context.Context, accountID int, amount uint64,
) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *mockLedgerService) TransferToMaster(
	ctx context.Context, accountID int, amount uint64,
) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *mockLedgerService) GetPending(
	ctx context.Context, accountID int,
) (*application.PendingInfo, error) {
	args := m.Called(ctx, accountID)
	var res *application.PendingInfo
	if a := args.Get(0); a != nil {
		res = a.(*application.PendingInfo)
	}
	return res, args.Error(1)
}

func (m *mockLedgerService) RefreshPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockLedgerService) GetMasterInfo(
	ctx context.Context,
) (*application.MasterInfo, error) {
	args := m.Called(ctx)
	var res *application.MasterInfo
	if a := args.Get(0); a != nil {
		res = a.(*application.MasterInfo)
	}
	return res, args.Error(1)
}
