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
	"github.com/denmor86/ya-questpoints/internal/storage"
	"go.uber.org/mock/gomock"
)

func newPurchasesFixture(t *testing.T) (*Purchases, *memBooks, *clientmocks.MockGateway) {
	t.Helper()
	config := config.DefaultConfig()
	if err := logger.Initialize(config.Server.LogLevel); err != nil {
		logger.Panic(err)
	}
	ctrl := gomock.NewController(t)
	gateway := clientmocks.NewMockGateway(ctrl)
	m := newMemBooks(func() time.Time { return time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC) })
	return NewPurchases(m, gateway, config.Settlement, config.Gateway), m, gateway
}

// chargeFor отвечает на создание платежа и запоминает адрес возврата
func chargeFor(id string, returnURI *string) func(context.Context, client.ChargeRequest) (*client.Charge, error) {
	return func(_ context.Context, req client.ChargeRequest) (*client.Charge, error) {
		*returnURI = req.ReturnURI
		return &client.Charge{
			ID:           id,
			Status:       client.ChargePending,
			Amount:       req.Amount,
			ReturnURI:    req.ReturnURI,
			AuthorizeURI: "https://pay.example.com/" + id,
		}, nil
	}
}

func TestPurchaseService_Initiate(t *testing.T) {
	testCases := []struct {
		Name           string
		Points         int64
		SetupMocks     func(gateway *clientmocks.MockGateway)
		ExpectedError  error
		ExpectedStatus models.EntryStatus
		ExpectedAmount string
	}{
		{
			Name:          "Error. Below minimum purchase #1",
			Points:        5,
			SetupMocks:    func(gateway *clientmocks.MockGateway) {},
			ExpectedError: errors.New("amount must be positive: minimum purchase is 10 points"),
		},
		{
			Name:   "Error. Gateway unavailable leaves purchase pending #2",
			Points: 100,
			SetupMocks: func(gateway *clientmocks.MockGateway) {
				gateway.EXPECT().CreateCharge(gomock.Any(), gomock.Any()).Return(nil, models.ErrGatewayUnavailable)
			},
			ExpectedError:  models.ErrGatewayUnavailable,
			ExpectedStatus: models.EntryPending,
		},
		{
			Name:   "Error. Rejected charge fails purchase #3",
			Points: 100,
			SetupMocks: func(gateway *clientmocks.MockGateway) {
				gateway.EXPECT().CreateCharge(gomock.Any(), gomock.Any()).Return(nil, client.ErrBadRequest)
			},
			ExpectedError:  client.ErrBadRequest,
			ExpectedStatus: models.EntryFailed,
		},
		{
			Name:   "Success. #4",
			Points: 125,
			SetupMocks: func(gateway *clientmocks.MockGateway) {
				var uri string
				gateway.EXPECT().CreateCharge(gomock.Any(), gomock.Any()).DoAndReturn(chargeFor("chrg_1", &uri))
			},
			ExpectedStatus: models.EntryPending,
			ExpectedAmount: "12.50",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			purchases, m, gateway := newPurchasesFixture(t)
			tc.SetupMocks(gateway)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			purchase, err := purchases.Initiate(ctx, "u1", tc.Points)

			if err != nil && tc.ExpectedError == nil {
				t.Errorf("Expected no error, got: '%v'", err)
			} else if err == nil && tc.ExpectedError != nil {
				t.Errorf("Expected error, got none")
			} else if err != nil && err.Error() != tc.ExpectedError.Error() {
				t.Errorf("Expected error '%v', got: '%v'", tc.ExpectedError, err)
			}

			entries := m.entriesOf("u1", models.EntryBuy)
			if tc.ExpectedStatus == "" {
				if len(entries) != 0 {
					t.Errorf("Expected no purchase entries, got: %d", len(entries))
				}
				return
			}
			if len(entries) != 1 {
				t.Fatalf("Expected 1 purchase entry, got: %d", len(entries))
			}
			if entries[0].Status != tc.ExpectedStatus {
				t.Errorf("Expected status %s, got: %s", tc.ExpectedStatus, entries[0].Status)
			}
			if m.walletPoints("u1") != 0 {
				t.Errorf("Expected balance unchanged, got: %d", m.walletPoints("u1"))
			}
			if purchase == nil {
				return
			}
			if purchase.Amount.StringFixed(2) != tc.ExpectedAmount {
				t.Errorf("Expected amount %s, got: %s", tc.ExpectedAmount, purchase.Amount.StringFixed(2))
			}
			if purchase.ChargeID != "chrg_1" || entries[0].Meta(models.MetaChargeID) != "chrg_1" {
				t.Errorf("Expected charge chrg_1 on purchase and entry, got: %q and %q", purchase.ChargeID, entries[0].Meta(models.MetaChargeID))
			}
			if purchase.AuthorizeURI == "" {
				t.Errorf("Expected authorize uri")
			}
		})
	}
}

func TestPurchaseService_ChargeEventTwice(t *testing.T) {
	purchases, m, gateway := newPurchasesFixture(t)
	ctx := context.Background()

	var uri string
	gateway.EXPECT().CreateCharge(gomock.Any(), gomock.Any()).DoAndReturn(chargeFor("chrg_1", &uri))
	gateway.EXPECT().GetChargeStatus(gomock.Any(), "chrg_1").DoAndReturn(func(context.Context, string) (*client.Charge, error) {
		return &client.Charge{ID: "chrg_1", Status: client.ChargeSuccessful, ReturnURI: uri}, nil
	}).Times(2)

	if _, err := purchases.Initiate(ctx, "u1", 100); err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	purchase, err := purchases.HandleChargeEvent(ctx, "chrg_1")
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if purchase.Status != models.EntryCompleted {
		t.Errorf("Expected status %s, got: %s", models.EntryCompleted, purchase.Status)
	}
	if _, err := purchases.HandleChargeEvent(ctx, "chrg_1"); !errors.Is(err, models.ErrAlreadyProcessed) {
		t.Errorf("Expected error '%v', got: '%v'", models.ErrAlreadyProcessed, err)
	}

	if points := m.walletPoints("u1"); points != 100 {
		t.Errorf("Expected balance 100, got: %d", points)
	}
	pool := m.poolState()
	if pool.TotalPoints != 100 || pool.UsedPoints != 100 || pool.AvailablePoints != 0 {
		t.Errorf("Expected issued points in pool, got: %+v", pool)
	}
	if sum := m.ledgerSum("u1"); sum != 100 {
		t.Errorf("Expected ledger sum 100, got: %d", sum)
	}
}

func TestPurchaseService_ReturnAddressFallback(t *testing.T) {
	purchases, m, gateway := newPurchasesFixture(t)
	ctx := context.Background()

	var uri string
	gateway.EXPECT().CreateCharge(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, req client.ChargeRequest) (*client.Charge, error) {
		// идентификатор платежа не удастся сохранить
		m.failApply = errors.New("connection reset")
		return chargeFor("chrg_2", &uri)(ctx, req)
	})
	gateway.EXPECT().GetChargeStatus(gomock.Any(), "chrg_2").DoAndReturn(func(context.Context, string) (*client.Charge, error) {
		return &client.Charge{ID: "chrg_2", Status: client.ChargeSuccessful, ReturnURI: uri}, nil
	})

	if _, err := purchases.Initiate(ctx, "u1", 50); err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if entries := m.entriesOf("u1", models.EntryBuy); len(entries) != 1 || entries[0].Meta(models.MetaChargeID) != "" {
		t.Fatalf("Expected purchase without charge id, got: %+v", entries)
	}

	purchase, err := purchases.HandleChargeEvent(ctx, "chrg_2")
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if purchase.Status != models.EntryCompleted || purchase.ChargeID != "chrg_2" {
		t.Errorf("Expected completed purchase with charge chrg_2, got: %+v", purchase)
	}
	if points := m.walletPoints("u1"); points != 50 {
		t.Errorf("Expected balance 50, got: %d", points)
	}
}

func TestPurchaseService_Verify(t *testing.T) {
	testCases := []struct {
		Name           string
		UserID         string
		ChargeStatus   string
		ExpectedError  error
		ExpectedStatus models.EntryStatus
		ExpectedPoints int64
	}{
		{
			Name:          "Error. Purchase of another user #1",
			UserID:        "u2",
			ExpectedError: storage.ErrEntryNotFound,
		},
		{
			Name:           "Success. Charge still pending #2",
			UserID:         "u1",
			ChargeStatus:   client.ChargePending,
			ExpectedStatus: models.EntryPending,
		},
		{
			Name:           "Success. Charge failed #3",
			UserID:         "u1",
			ChargeStatus:   client.ChargeExpired,
			ExpectedStatus: models.EntryFailed,
		},
		{
			Name:           "Success. Charge paid #4",
			UserID:         "u1",
			ChargeStatus:   client.ChargeSuccessful,
			ExpectedStatus: models.EntryCompleted,
			ExpectedPoints: 40,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			purchases, m, gateway := newPurchasesFixture(t)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			var uri string
			gateway.EXPECT().CreateCharge(gomock.Any(), gomock.Any()).DoAndReturn(chargeFor("chrg_3", &uri))
			if tc.ChargeStatus != "" {
				gateway.EXPECT().GetChargeStatus(gomock.Any(), "chrg_3").Return(&client.Charge{ID: "chrg_3", Status: tc.ChargeStatus}, nil)
			}
			initiated, err := purchases.Initiate(ctx, "u1", 40)
			if err != nil {
				t.Fatalf("Expected no error, got: '%v'", err)
			}

			purchase, err := purchases.Verify(ctx, tc.UserID, initiated.EntryID)

			if err != nil && tc.ExpectedError == nil {
				t.Errorf("Expected no error, got: '%v'", err)
			} else if err == nil && tc.ExpectedError != nil {
				t.Errorf("Expected error, got none")
			} else if err != nil && err.Error() != tc.ExpectedError.Error() {
				t.Errorf("Expected error '%v', got: '%v'", tc.ExpectedError, err)
			}
			if tc.ExpectedError != nil {
				return
			}
			if purchase.Status != tc.ExpectedStatus {
				t.Errorf("Expected status %s, got: %s", tc.ExpectedStatus, purchase.Status)
			}
			if points := m.walletPoints("u1"); points != tc.ExpectedPoints {
				t.Errorf("Expected balance %d, got: %d", tc.ExpectedPoints, points)
			}
		})
	}
}

func TestPurchaseService_Return(t *testing.T) {
	purchases, m, gateway := newPurchasesFixture(t)
	ctx := context.Background()

	var uri string
	gateway.EXPECT().CreateCharge(gomock.Any(), gomock.Any()).DoAndReturn(chargeFor("chrg_4", &uri))
	gateway.EXPECT().GetChargeStatus(gomock.Any(), "chrg_4").Return(&client.Charge{ID: "chrg_4", Status: client.ChargeSuccessful}, nil)

	initiated, err := purchases.Initiate(ctx, "u1", 20)
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	id, ok := models.PurchaseEntryIDFromReturn(uri)
	if !ok || id != initiated.EntryID {
		t.Fatalf("Expected return uri to carry entry %s, got: %s", initiated.EntryID, uri)
	}

	purchase, err := purchases.Return(ctx, id)
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if purchase.Status != models.EntryCompleted {
		t.Errorf("Expected status %s, got: %s", models.EntryCompleted, purchase.Status)
	}
	if points := m.walletPoints("u1"); points != 20 {
		t.Errorf("Expected balance 20, got: %d", points)
	}

	m.seedWallet("u3", 10)
	if _, err := purchases.Return(ctx, "seed-u3"); !errors.Is(err, storage.ErrEntryNotFound) {
		t.Errorf("Expected error '%v', got: '%v'", storage.ErrEntryNotFound, err)
	}
}
