package client

//go:generate mockgen -source=gateway.go -destination=mocks/mock_gateway.go -package=mocks

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// статусы платежа на стороне шлюза
const (
	ChargePending    = "pending"
	ChargeSuccessful = "successful"
	ChargeFailed     = "failed"
	ChargeExpired    = "expired"
	ChargeReversed   = "reversed"
)

type ChargeRequest struct {
	Amount      decimal.Decimal
	Method      string
	ReturnURI   string
	Description string
}

type Charge struct {
	ID           string
	Status       string
	Amount       decimal.Decimal
	ReturnURI    string
	AuthorizeURI string
	FailureCode  string
}

// Successful - платёж получен
func (c *Charge) Successful() bool {
	return c.Status == ChargeSuccessful
}

// Failed - платёж не будет получен
func (c *Charge) Failed() bool {
	return c.Status == ChargeFailed || c.Status == ChargeExpired || c.Status == ChargeReversed
}

type Recipient struct {
	ID       string
	Verified bool
	Active   bool
}

// Ready - получатель может принимать переводы
func (r *Recipient) Ready() bool {
	return r.Verified && r.Active
}

type Transfer struct {
	ID          string
	Amount      decimal.Decimal
	Paid        bool
	Sent        bool
	FailureCode string
}

// Done - перевод отправлен или выплачен
func (t *Transfer) Done() bool {
	return t.Paid || t.Sent
}

type Balance struct {
	Total        decimal.Decimal
	Available    decimal.Decimal
	Transferable decimal.Decimal
}

type RecipientRequest struct {
	// существующий получатель, если уже создавался
	RecipientID   string
	HolderName    string
	Email         string
	BankCode      string
	AccountNumber string
}

// Gateway - узкий интерфейс к платёжному шлюзу
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	GetChargeStatus(ctx context.Context, chargeID string) (*Charge, error)
	CreateOrGetRecipient(ctx context.Context, req RecipientRequest) (string, error)
	CheckRecipientStatus(ctx context.Context, recipientID string) (*Recipient, error)
	CreatePayout(ctx context.Context, amount decimal.Decimal, recipientID string, idempotencyKey string) (*Transfer, error)
	GetTransferStatus(ctx context.Context, transferID string) (*Transfer, error)
	GetBalance(ctx context.Context) (*Balance, error)
}

var (
	ErrNotFound   = errors.New("gateway object not found")
	ErrBadRequest = errors.New("gateway rejected request")
)

type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded"
}

func NewRateLimitError(headers http.Header) *RateLimitError {
	return &RateLimitError{
		RetryAfter: ParseRetryAfter(headers),
	}
}
