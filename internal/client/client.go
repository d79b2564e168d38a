package client

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/denmor86/ya-questpoints/internal/config"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client - HTTP адаптер платёжного шлюза.
// Суммы передаются в минимальных единицах валюты.
type Client struct {
	baseURL    string
	secretKey  string
	currency   string
	timeout    time.Duration
	httpClient HTTPClient
	limiter    *RateLimiter

	retryBase time.Duration
	retryMax  uint64
}

func NewClient(cfg config.GatewayConfig, client HTTPClient) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		secretKey:  cfg.SecretKey,
		currency:   cfg.Currency,
		timeout:    cfg.Timeout,
		httpClient: client,
		limiter:    NewRateLimiter(cfg.RPS),
		retryBase:  200 * time.Millisecond,
		retryMax:   2,
	}
}

// WithRetry задаёт повторы идемпотентных запросов чтения
func (c *Client) WithRetry(base time.Duration, max uint64) *Client {
	c.retryBase = base
	c.retryMax = max
	return c
}

type chargeResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	Amount       int64   `json:"amount"`
	ReturnURI    string  `json:"return_uri"`
	AuthorizeURI string  `json:"authorize_uri"`
	FailureCode  *string `json:"failure_code"`
}

type recipientResponse struct {
	ID       string `json:"id"`
	Verified bool   `json:"verified"`
	Active   bool   `json:"active"`
}

type transferResponse struct {
	ID          string  `json:"id"`
	Amount      int64   `json:"amount"`
	Paid        bool    `json:"paid"`
	Sent        bool    `json:"sent"`
	FailureCode *string `json:"failure_code"`
}

type balanceResponse struct {
	Total        int64 `json:"total"`
	Transferable int64 `json:"transferable"`
	Reserve      int64 `json:"reserve"`
}

func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	form := url.Values{}
	form.Set("amount", minor(req.Amount))
	form.Set("currency", c.currency)
	form.Set("return_uri", req.ReturnURI)
	form.Set("source[type]", req.Method)
	if req.Description != "" {
		form.Set("description", req.Description)
	}

	var resp chargeResponse
	if err := c.do(ctx, http.MethodPost, "/charges", form, "", &resp); err != nil {
		return nil, err
	}
	return resp.charge(), nil
}

func (c *Client) GetChargeStatus(ctx context.Context, chargeID string) (*Charge, error) {
	var resp chargeResponse
	if err := c.get(ctx, "/charges/"+url.PathEscape(chargeID), &resp); err != nil {
		return nil, err
	}
	return resp.charge(), nil
}

// CreateOrGetRecipient возвращает существующего получателя или создаёт нового
func (c *Client) CreateOrGetRecipient(ctx context.Context, req RecipientRequest) (string, error) {
	if req.RecipientID != "" {
		var resp recipientResponse
		err := c.get(ctx, "/recipients/"+url.PathEscape(req.RecipientID), &resp)
		if err == nil {
			return resp.ID, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
		logger.Warnw("Recipient not found, creating new", "recipient", req.RecipientID)
	}

	form := url.Values{}
	form.Set("name", req.HolderName)
	form.Set("email", req.Email)
	form.Set("type", "individual")
	form.Set("bank_account[brand]", req.BankCode)
	form.Set("bank_account[number]", req.AccountNumber)
	form.Set("bank_account[name]", req.HolderName)

	var resp recipientResponse
	if err := c.do(ctx, http.MethodPost, "/recipients", form, "", &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) CheckRecipientStatus(ctx context.Context, recipientID string) (*Recipient, error) {
	var resp recipientResponse
	if err := c.get(ctx, "/recipients/"+url.PathEscape(recipientID), &resp); err != nil {
		return nil, err
	}
	return &Recipient{ID: resp.ID, Verified: resp.Verified, Active: resp.Active}, nil
}

// CreatePayout создаёт перевод; повтор с тем же ключом не создаёт второй перевод
func (c *Client) CreatePayout(ctx context.Context, amount decimal.Decimal, recipientID string, idempotencyKey string) (*Transfer, error) {
	form := url.Values{}
	form.Set("amount", minor(amount))
	form.Set("recipient", recipientID)

	var resp transferResponse
	if err := c.do(ctx, http.MethodPost, "/transfers", form, idempotencyKey, &resp); err != nil {
		return nil, err
	}
	return resp.transfer(), nil
}

func (c *Client) GetTransferStatus(ctx context.Context, transferID string) (*Transfer, error) {
	var resp transferResponse
	if err := c.get(ctx, "/transfers/"+url.PathEscape(transferID), &resp); err != nil {
		return nil, err
	}
	return resp.transfer(), nil
}

func (c *Client) GetBalance(ctx context.Context) (*Balance, error) {
	var resp balanceResponse
	if err := c.get(ctx, "/balance", &resp); err != nil {
		return nil, err
	}
	return &Balance{
		Total:        major(resp.Total),
		Available:    major(resp.Total - resp.Reserve),
		Transferable: major(resp.Transferable),
	}, nil
}

// get повторяет запрос чтения при недоступности шлюза
func (c *Client) get(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(c.retryMax, retry.NewExponential(c.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, nil, "", out)
		if errors.Is(err, models.ErrGatewayUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, idempotencyKey string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", models.ErrGatewayUnavailable, err)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// таймаут или обрыв: результат неизвестен
		return fmt.Errorf("%w: %s %s: %v", models.ErrGatewayUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := HandleErrorResponse(resp)
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			logger.Warnw("Too many requests to payment gateway", "path", path, "retry_after", rateLimitErr.RetryAfter)
			c.limiter.BlockFor(rateLimitErr.RetryAfter)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

func HandleErrorResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewRateLimitError(resp.Header)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: status %d", ErrBadRequest, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", models.ErrGatewayUnavailable, resp.StatusCode)
	}
}

func (r chargeResponse) charge() *Charge {
	return &Charge{
		ID:           r.ID,
		Status:       r.Status,
		Amount:       major(r.Amount),
		ReturnURI:    r.ReturnURI,
		AuthorizeURI: r.AuthorizeURI,
		FailureCode:  deref(r.FailureCode),
	}
}

func (r transferResponse) transfer() *Transfer {
	return &Transfer{
		ID:          r.ID,
		Amount:      major(r.Amount),
		Paid:        r.Paid,
		Sent:        r.Sent,
		FailureCode: deref(r.FailureCode),
	}
}

func minor(amount decimal.Decimal) string {
	return amount.Shift(2).Round(0).String()
}

func major(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
