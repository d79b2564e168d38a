package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/denmor86/ya-questpoints/internal/client"
	clientmocks "github.com/denmor86/ya-questpoints/internal/client/mocks"
	"github.com/denmor86/ya-questpoints/internal/config"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/services/mocks"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

type withdrawalsFixture struct {
	svc      *Withdrawals
	books    *memBooks
	gateway  *clientmocks.MockGateway
	notifier *mocks.MockNotifier
}

func newWithdrawalsFixture(t *testing.T) withdrawalsFixture {
	t.Helper()
	config := config.DefaultConfig()
	if err := logger.Initialize(config.Server.LogLevel); err != nil {
		logger.Panic(err)
	}
	ctrl := gomock.NewController(t)
	clk := newClock(time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC))
	m := newMemBooks(clk.Now)
	m.seedIssued(10000)
	f := withdrawalsFixture{
		books:    m,
		gateway:  clientmocks.NewMockGateway(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	f.svc = NewWithdrawals(m.storage(), f.gateway, f.notifier, config.Settlement)
	f.svc.Now = clk.Now
	return f
}

// expectRecipient настраивает шлюз до шага создания перевода
func (f withdrawalsFixture) expectRecipient(transferable string, ready bool) {
	f.gateway.EXPECT().GetBalance(gomock.Any()).Return(&client.Balance{Transferable: decimal.RequireFromString(transferable)}, nil)
	f.gateway.EXPECT().CreateOrGetRecipient(gomock.Any(), gomock.Any()).Return("recp_1", nil)
	f.gateway.EXPECT().CheckRecipientStatus(gomock.Any(), "recp_1").Return(&client.Recipient{ID: "recp_1", Verified: ready, Active: true}, nil)
}

func TestWithdrawalService_Request(t *testing.T) {
	parent := models.EntityRef{Kind: models.EntityJob, ID: "job-1"}

	testCases := []struct {
		Name          string
		Setup         func(f withdrawalsFixture)
		Request       WithdrawalRequest
		Admin         string
		ExpectedError error
	}{
		{
			Name: "Error. Below minimum amount #1",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("u1", 5000)
				f.books.seedAccount("u1", true)
			},
			Request:       WithdrawalRequest{UserID: "u1", Points: 500},
			ExpectedError: errors.New("amount must be positive: minimum withdrawal is 100"),
		},
		{
			Name: "Error. No bank account #2",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("u1", 5000)
			},
			Request:       WithdrawalRequest{UserID: "u1", Points: 1000},
			ExpectedError: models.ErrBankAccountNotVerified,
		},
		{
			Name: "Error. Bank account not verified #3",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("u1", 5000)
				f.books.seedAccount("u1", false)
			},
			Request:       WithdrawalRequest{UserID: "u1", Points: 1000},
			ExpectedError: models.ErrBankAccountNotVerified,
		},
		{
			Name: "Error. Open withdrawals hold the balance #4",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("u1", 1500)
				f.books.seedAccount("u1", true)
				if _, err := f.svc.Request(context.Background(), WithdrawalRequest{UserID: "u1", Points: 1000}); err != nil {
					t.Fatalf("Expected no error, got: '%v'", err)
				}
			},
			Request:       WithdrawalRequest{UserID: "u1", Points: 1000},
			ExpectedError: models.ErrInsufficientWallet,
		},
		{
			Name: "Error. Parent already cancelled #5",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("owner", 5000)
				f.books.seedAccount("u1", true)
				if err := f.books.CancelParent(context.Background(), parent, "job closed"); err != nil {
					t.Fatalf("Expected no error, got: '%v'", err)
				}
			},
			Request:       WithdrawalRequest{UserID: "u1", Points: 1000, FunderID: "owner", Parent: &parent},
			Admin:         "admin",
			ExpectedError: models.ErrGroupCancelled,
		},
		{
			Name: "Success. #6",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("u1", 2000)
				f.books.seedAccount("u1", true)
			},
			Request: WithdrawalRequest{UserID: "u1", Points: 1000},
		},
		{
			Name: "Success. Funded by another user #7",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("owner", 2000)
				f.books.seedAccount("u1", true)
			},
			Request: WithdrawalRequest{UserID: "u1", Points: 1000, FunderID: "owner", Parent: &parent},
			Admin:   "admin",
		},
		{
			Name: "Error. Funder chosen by user #8",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("victim", 5000)
				f.books.seedAccount("thief", true)
			},
			Request:       WithdrawalRequest{UserID: "thief", Points: 2000, FunderID: "victim"},
			ExpectedError: ErrFundingNotAllowed,
		},
		{
			Name: "Error. Parent chosen by user #9",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("u1", 5000)
				f.books.seedAccount("u1", true)
			},
			Request:       WithdrawalRequest{UserID: "u1", Points: 1000, Parent: &parent},
			ExpectedError: ErrFundingNotAllowed,
		},
		{
			Name: "Error. Funded without parent #10",
			Setup: func(f withdrawalsFixture) {
				f.books.seedWallet("owner", 5000)
				f.books.seedAccount("u1", true)
			},
			Request:       WithdrawalRequest{UserID: "u1", Points: 1000, FunderID: "owner"},
			Admin:         "admin",
			ExpectedError: errors.New("funded withdrawal must be opened by an operator: funder and parent are required"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			f := newWithdrawalsFixture(t)
			tc.Setup(f)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			debitor := tc.Request.UserID
			if tc.Request.FunderID != "" {
				debitor = tc.Request.FunderID
			}
			before := f.books.walletPoints(debitor)

			var (
				w   *models.Withdrawal
				err error
			)
			if tc.Admin != "" {
				w, err = f.svc.RequestFunded(ctx, tc.Request, tc.Admin)
			} else {
				w, err = f.svc.Request(ctx, tc.Request)
			}

			if err != nil && tc.ExpectedError == nil {
				t.Errorf("Expected no error, got: '%v'", err)
			} else if err == nil && tc.ExpectedError != nil {
				t.Errorf("Expected error, got none")
			} else if err != nil && err.Error() != tc.ExpectedError.Error() {
				t.Errorf("Expected error '%v', got: '%v'", tc.ExpectedError, err)
			}
			// заявка не меняет баланс
			if after := f.books.walletPoints(debitor); after != before {
				t.Errorf("Expected balance %d, got: %d", before, after)
			}
			if tc.ExpectedError != nil {
				if entries := f.books.entriesOf(debitor, models.EntryWithdraw); len(entries) != 0 {
					t.Errorf("Expected no withdraw entries, got: %+v", entries)
				}
				return
			}
			if w.Status != models.WithdrawalPending || w.Settlement != models.SettlementReserved {
				t.Errorf("Expected pending reserved withdrawal, got: %s/%s", w.Status, w.Settlement)
			}
			if w.Amount.StringFixed(2) != "100.00" || w.Points != 1000 {
				t.Errorf("Expected 1000 points for 100.00, got: %d for %s", w.Points, w.Amount.StringFixed(2))
			}
			if w.Debitor() != debitor {
				t.Errorf("Expected debitor %s, got: %s", debitor, w.Debitor())
			}
			entries := f.books.entriesOf(debitor, models.EntryWithdraw)
			if len(entries) != 1 || entries[0].Status != models.EntryPending || entries[0].Amount != -1000 {
				t.Errorf("Expected one pending withdraw entry, got: %+v", entries)
			}
		})
	}
}

func TestWithdrawalService_ApproveManual(t *testing.T) {
	f := newWithdrawalsFixture(t)
	f.books.seedWallet("u1", 2000)
	f.books.seedAccount("u1", true)
	ctx := context.Background()

	w, err := f.svc.Request(ctx, WithdrawalRequest{UserID: "u1", Points: 1000})
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}

	approved, err := f.svc.Approve(ctx, w.ID, "admin", true)
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if approved.Status != models.WithdrawalApproved || approved.Settlement != models.SettlementCommitted {
		t.Errorf("Expected approved committed withdrawal, got: %s/%s", approved.Status, approved.Settlement)
	}
	if points := f.books.walletPoints("u1"); points != 1000 {
		t.Errorf("Expected balance 1000, got: %d", points)
	}
	if sum := f.books.ledgerSum("u1"); sum != 1000 {
		t.Errorf("Expected ledger sum 1000, got: %d", sum)
	}
	if pool := f.books.poolState(); pool.UsedPoints != 9000 || pool.AvailablePoints != 1000 {
		t.Errorf("Expected withdrawn points back in pool, got: %+v", pool)
	}
	entries := f.books.entriesOf("u1", models.EntryWithdraw)
	if len(entries) != 1 || entries[0].Meta(models.MetaManual) != "true" {
		t.Errorf("Expected manual withdraw entry, got: %+v", entries)
	}

	if _, err := f.svc.Approve(ctx, w.ID, "admin", true); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrInvalidTransition, err)
	}
	if _, err := f.svc.Reject(ctx, w.ID, "admin", "too late"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrInvalidTransition, err)
	}

	paid, err := f.svc.MarkPaid(ctx, w.ID, "operator")
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if paid.Status != models.WithdrawalPaid {
		t.Errorf("Expected status %s, got: %s", models.WithdrawalPaid, paid.Status)
	}
	if _, err := f.svc.MarkPaid(ctx, w.ID, "operator"); !errors.Is(err, models.ErrAlreadyProcessed) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrAlreadyProcessed, err)
	}
	if points := f.books.walletPoints("u1"); points != 1000 {
		t.Errorf("Expected balance 1000, got: %d", points)
	}
}

func TestWithdrawalService_ApproveAsync(t *testing.T) {
	f := newWithdrawalsFixture(t)
	f.books.seedWallet("u1", 2000)
	f.books.seedAccount("u1", true)
	ctx := context.Background()

	w, err := f.svc.Request(ctx, WithdrawalRequest{UserID: "u1", Points: 1000})
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}

	f.expectRecipient("500", true)
	f.gateway.EXPECT().CreatePayout(gomock.Any(), gomock.Any(), "recp_1", w.ID).Return(&client.Transfer{ID: "trsf_1"}, nil)

	approved, err := f.svc.Approve(ctx, w.ID, "admin", false)
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if approved.Status != models.WithdrawalApproved || approved.Settlement != models.SettlementSettled {
		t.Errorf("Expected approved settled withdrawal, got: %s/%s", approved.Status, approved.Settlement)
	}
	if approved.TransferID != "trsf_1" || approved.TransferStatus != "pending" {
		t.Errorf("Expected pending transfer trsf_1, got: %s %s", approved.TransferID, approved.TransferStatus)
	}
	if points := f.books.walletPoints("u1"); points != 2000 {
		t.Errorf("Expected balance unchanged until payout, got: %d", points)
	}
	if account, _ := f.books.GetBankAccount(ctx, "u1"); account.RecipientID != "recp_1" {
		t.Errorf("Expected recipient saved, got: %q", account.RecipientID)
	}

	// перевод в пути продолжает удерживать баллы
	if _, err := f.svc.Request(ctx, WithdrawalRequest{UserID: "u1", Points: 1001}); !errors.Is(err, models.ErrInsufficientWallet) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrInsufficientWallet, err)
	}

	f.gateway.EXPECT().GetTransferStatus(gomock.Any(), "trsf_1").Return(&client.Transfer{ID: "trsf_1", Paid: true}, nil).Times(2)

	paid, err := f.svc.ConfirmTransfer(ctx, "trsf_1")
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if paid.Status != models.WithdrawalPaid || paid.Settlement != models.SettlementCommitted {
		t.Errorf("Expected paid committed withdrawal, got: %s/%s", paid.Status, paid.Settlement)
	}
	if _, err := f.svc.ConfirmTransfer(ctx, "trsf_1"); !errors.Is(err, models.ErrAlreadyProcessed) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrAlreadyProcessed, err)
	}
	if points := f.books.walletPoints("u1"); points != 1000 {
		t.Errorf("Expected balance 1000 after single deduction, got: %d", points)
	}
	entries := f.books.entriesOf("u1", models.EntryWithdraw)
	if len(entries) != 1 || entries[0].Meta(models.MetaTransferID) != "trsf_1" {
		t.Errorf("Expected withdraw entry with transfer id, got: %+v", entries)
	}
}

func TestWithdrawalService_ApproveGateway(t *testing.T) {
	testCases := []struct {
		Name            string
		SetupMocks      func(f withdrawalsFixture, id string)
		ExpectedError   error
		ExpectedStatus  models.WithdrawalStatus
		ExpectedManual  bool
		ExpectedBalance int64
	}{
		{
			Name: "Error. Gateway balance too low #1",
			SetupMocks: func(f withdrawalsFixture, id string) {
				f.gateway.EXPECT().GetBalance(gomock.Any()).Return(&client.Balance{Transferable: decimal.NewFromInt(50)}, nil)
			},
			ExpectedError:   ErrGatewayBalanceLow,
			ExpectedStatus:  models.WithdrawalPending,
			ExpectedBalance: 2000,
		},
		{
			Name: "Error. Recipient not ready #2",
			SetupMocks: func(f withdrawalsFixture, id string) {
				f.expectRecipient("500", false)
				f.notifier.EXPECT().NotifyOperators(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, notice models.OperatorNotice) error {
					if notice.WithdrawalID != id || notice.Amount != "100.00" {
						t.Errorf("Unexpected notice: %+v", notice)
					}
					return nil
				})
			},
			ExpectedError:   models.ErrRecipientNotReady,
			ExpectedStatus:  models.WithdrawalPending,
			ExpectedManual:  true,
			ExpectedBalance: 2000,
		},
		{
			Name: "Error. Payout failed #3",
			SetupMocks: func(f withdrawalsFixture, id string) {
				f.expectRecipient("500", true)
				f.gateway.EXPECT().CreatePayout(gomock.Any(), gomock.Any(), "recp_1", id).Return(nil, models.ErrGatewayUnavailable)
			},
			ExpectedError:   models.ErrGatewayUnavailable,
			ExpectedStatus:  models.WithdrawalPending,
			ExpectedBalance: 2000,
		},
		{
			Name: "Success. Payout sent immediately #4",
			SetupMocks: func(f withdrawalsFixture, id string) {
				f.expectRecipient("500", true)
				f.gateway.EXPECT().CreatePayout(gomock.Any(), gomock.Any(), "recp_1", id).Return(&client.Transfer{ID: "trsf_2", Sent: true}, nil)
			},
			ExpectedStatus:  models.WithdrawalPaid,
			ExpectedBalance: 1000,
		},
		{
			Name: "Error. Payout sent but points not committed #5",
			SetupMocks: func(f withdrawalsFixture, id string) {
				f.expectRecipient("500", true)
				f.gateway.EXPECT().CreatePayout(gomock.Any(), gomock.Any(), "recp_1", id).DoAndReturn(
					func(_ context.Context, _ decimal.Decimal, _ string, _ string) (*client.Transfer, error) {
						f.books.failApply = errors.New("connection reset")
						return &client.Transfer{ID: "trsf_3", Sent: true}, nil
					})
				f.notifier.EXPECT().NotifyOperators(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, notice models.OperatorNotice) error {
					if notice.Kind != models.NoticeUncommitted || notice.WithdrawalID != id || notice.Reason != "connection reset" {
						t.Errorf("Unexpected notice: %+v", notice)
					}
					return nil
				})
			},
			ExpectedStatus:  models.WithdrawalApproved,
			ExpectedBalance: 2000,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			f := newWithdrawalsFixture(t)
			f.books.seedWallet("u1", 2000)
			f.books.seedAccount("u1", true)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			w, err := f.svc.Request(ctx, WithdrawalRequest{UserID: "u1", Points: 1000})
			if err != nil {
				t.Fatalf("Expected no error, got: '%v'", err)
			}
			tc.SetupMocks(f, w.ID)

			_, err = f.svc.Approve(ctx, w.ID, "admin", false)

			if err != nil && tc.ExpectedError == nil {
				t.Errorf("Expected no error, got: '%v'", err)
			} else if err == nil && tc.ExpectedError != nil {
				t.Errorf("Expected error, got none")
			} else if err != nil && err.Error() != tc.ExpectedError.Error() {
				t.Errorf("Expected error '%v', got: '%v'", tc.ExpectedError, err)
			}

			stored, err := f.books.GetWithdrawal(ctx, w.ID)
			if err != nil {
				t.Fatalf("Expected no error, got: '%v'", err)
			}
			if stored.Status != tc.ExpectedStatus {
				t.Errorf("Expected status %s, got: %s", tc.ExpectedStatus, stored.Status)
			}
			if stored.RequiresManualTransfer != tc.ExpectedManual {
				t.Errorf("Expected manual flag %v, got: %v", tc.ExpectedManual, stored.RequiresManualTransfer)
			}
			if points := f.books.walletPoints("u1"); points != tc.ExpectedBalance {
				t.Errorf("Expected balance %d, got: %d", tc.ExpectedBalance, points)
			}
		})
	}
}

func TestWithdrawalService_Reject(t *testing.T) {
	f := newWithdrawalsFixture(t)
	f.books.seedWallet("u1", 2000)
	f.books.seedAccount("u1", true)
	ctx := context.Background()

	w, err := f.svc.Request(ctx, WithdrawalRequest{UserID: "u1", Points: 1000})
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	rejected, err := f.svc.Reject(ctx, w.ID, "admin", "wrong account")
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if rejected.Status != models.WithdrawalRejected || rejected.Settlement != models.SettlementReleased {
		t.Errorf("Expected rejected released withdrawal, got: %s/%s", rejected.Status, rejected.Settlement)
	}
	if rejected.Reason != "wrong account" {
		t.Errorf("Expected reason, got: %q", rejected.Reason)
	}
	if _, err := f.svc.Reject(ctx, w.ID, "admin", "again"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrInvalidTransition, err)
	}
	if _, err := f.svc.Approve(ctx, w.ID, "admin", true); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrInvalidTransition, err)
	}
	entries := f.books.entriesOf("u1", models.EntryWithdraw)
	if len(entries) != 1 || entries[0].Status != models.EntryFailed {
		t.Errorf("Expected failed withdraw entry, got: %+v", entries)
	}
	if points := f.books.walletPoints("u1"); points != 2000 {
		t.Errorf("Expected balance 2000, got: %d", points)
	}

	// удержание снято
	if _, err := f.svc.Request(ctx, WithdrawalRequest{UserID: "u1", Points: 2000}); err != nil {
		t.Errorf("Expected no error, got: '%v'", err)
	}
}

func TestWithdrawalService_CascadeOnFunderShortfall(t *testing.T) {
	f := newWithdrawalsFixture(t)
	f.books.seedWallet("owner", 3000)
	f.books.seedAccount("u1", true)
	f.books.seedAccount("u2", true)
	ctx := context.Background()
	parent := models.EntityRef{Kind: models.EntityJob, ID: "job-7"}

	first, err := f.svc.RequestFunded(ctx, WithdrawalRequest{UserID: "u1", Points: 1000, FunderID: "owner", Parent: &parent}, "admin")
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	second, err := f.svc.RequestFunded(ctx, WithdrawalRequest{UserID: "u2", Points: 1000, FunderID: "owner", Parent: &parent}, "admin")
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}

	// владелец потратил баллы после создания заявок
	f.books.mu.Lock()
	f.books.wallets["owner"].Points = 500
	f.books.mu.Unlock()

	_, err = f.svc.Approve(ctx, first.ID, "admin", true)
	if !errors.Is(err, models.ErrGroupCancelled) || !errors.Is(err, models.ErrInsufficientWallet) {
		t.Fatalf("Expected cascade error, got: '%v'", err)
	}

	for _, id := range []string{first.ID, second.ID} {
		w, err := f.books.GetWithdrawal(ctx, id)
		if err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		if w.Status != models.WithdrawalRejected {
			t.Errorf("Expected withdrawal %s rejected, got: %s", id, w.Status)
		}
		if w.ProcessedBy != cascadeActor || len(w.Reason) == 0 {
			t.Errorf("Expected cascade reason on %s, got: %q by %q", id, w.Reason, w.ProcessedBy)
		}
	}
	if points := f.books.walletPoints("owner"); points != 500 {
		t.Errorf("Expected funder balance untouched, got: %d", points)
	}
	if _, err := f.svc.RequestFunded(ctx, WithdrawalRequest{UserID: "u1", Points: 1000, FunderID: "owner", Parent: &parent}, "admin"); !errors.Is(err, models.ErrGroupCancelled) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrGroupCancelled, err)
	}
}

func TestWithdrawalService_CancelGroup(t *testing.T) {
	f := newWithdrawalsFixture(t)
	f.books.seedWallet("owner", 5000)
	f.books.seedAccount("u1", true)
	f.books.seedAccount("u2", true)
	ctx := context.Background()
	parent := models.EntityRef{Kind: models.EntityOrder, ID: "order-3"}

	var ids []string
	for _, user := range []string{"u1", "u2"} {
		w, err := f.svc.RequestFunded(ctx, WithdrawalRequest{UserID: user, Points: 1000, FunderID: "owner", Parent: &parent}, "admin")
		if err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		ids = append(ids, w.ID)
	}
	// уже подтверждённая заявка не отклоняется
	if _, err := f.svc.Approve(ctx, ids[0], "admin", true); err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}

	rejected, err := f.svc.CancelGroup(ctx, parent, "order cancelled")
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if len(rejected) != 1 || rejected[0] != ids[1] {
		t.Errorf("Expected only %s rejected, got: %v", ids[1], rejected)
	}
	again, err := f.svc.CancelGroup(ctx, parent, "order cancelled")
	if err != nil || len(again) != 0 {
		t.Errorf("Expected repeated cancellation to be a no-op, got: %v '%v'", again, err)
	}
	if points := f.books.walletPoints("owner"); points != 4000 {
		t.Errorf("Expected balance 4000, got: %d", points)
	}
}
