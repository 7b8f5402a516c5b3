package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
	pkgerrors "github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
)

// Transfers is the processor surface the settlement core depends on.
// Implementations wrap whichever processor the platform is contracted with;
// the core never sees a vendor wire format.
type Transfers interface {
	CreateTransfer(ctx context.Context, params TransferParams) (*Transfer, error)
	// ReverseTransfer pulls back funds. A nil amount reverses the full
	// remaining balance.
	ReverseTransfer(ctx context.Context, transferID string, amount *decimal.Decimal) (*Reversal, error)
	GetTransfer(ctx context.Context, transferID string) (*Transfer, error)
	ListTransfers(ctx context.Context, transferGroup string) ([]Transfer, error)
}

var (
	errAPIKeyRequired        = errors.New("processor api key is required")
	errBaseURLRequired       = errors.New("processor base url is required")
	errWebhookSecretRequired = errors.New("processor webhook secret is required")
	errLoggerRequired        = errors.New("processor logger is required")
)

// Client talks to the processor's sub-account transfer API over HTTP with
// centralized auth, per-call timeouts, and error mapping.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	webhookSecret string
	callTimeout   time.Duration
	tolerance     time.Duration
	logger        *logger.Logger
}

// NewClient initializes the transfer client and validates the credentials.
func NewClient(ctx context.Context, cfg config.ProcessorConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}
	callTimeout := cfg.TransferTimeout
	if callTimeout <= 0 {
		callTimeout = 20 * time.Second
	}
	tolerance := cfg.SignatureTolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: callTimeout},
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		callTimeout:   callTimeout,
		tolerance:     tolerance,
		logger:        logg,
	}

	logg.Info(ctx, "processor client initialized")
	return c, nil
}

// SigningSecret returns the webhook secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// SignatureTolerance returns the accepted webhook timestamp skew.
func (c *Client) SignatureTolerance() time.Duration {
	if c == nil {
		return DefaultTolerance
	}
	return c.tolerance
}

// CreateTransfer issues a transfer to a seller sub-account.
func (c *Client) CreateTransfer(ctx context.Context, params TransferParams) (*Transfer, error) {
	if params.Destination == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer destination required")
	}
	if !params.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer amount must be positive")
	}
	var transfer Transfer
	if err := c.do(ctx, http.MethodPost, "/v1/transfers", params, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// ReverseTransfer pulls back funds from a prior transfer. amount == nil
// requests a full reversal.
func (c *Client) ReverseTransfer(ctx context.Context, transferID string, amount *decimal.Decimal) (*Reversal, error) {
	if transferID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	body := map[string]any{}
	if amount != nil {
		if !amount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reversal amount must be positive")
		}
		body["amount"] = *amount
	}
	var reversal Reversal
	path := fmt.Sprintf("/v1/transfers/%s/reversals", url.PathEscape(transferID))
	if err := c.do(ctx, http.MethodPost, path, body, &reversal); err != nil {
		return nil, err
	}
	return &reversal, nil
}

// GetTransfer fetches a single transfer with its reversed-to-date amount.
func (c *Client) GetTransfer(ctx context.Context, transferID string) (*Transfer, error) {
	if transferID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	var transfer Transfer
	path := fmt.Sprintf("/v1/transfers/%s", url.PathEscape(transferID))
	if err := c.do(ctx, http.MethodGet, path, nil, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// ListTransfers returns every transfer tagged with the given group.
func (c *Client) ListTransfers(ctx context.Context, transferGroup string) ([]Transfer, error) {
	if transferGroup == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer group required")
	}
	var payload struct {
		Data []Transfer `json:"data"`
	}
	path := "/v1/transfers?transfer_group=" + url.QueryEscape(transferGroup)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode processor request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build processor request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "processor call failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read processor response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode processor response")
	}
	return nil
}

func apiError(status int, raw []byte) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := fmt.Sprintf("processor returned status %d", status)
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		message = payload.Error.Message
	}
	code := pkgerrors.CodeDependency
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		code = pkgerrors.CodeStateConflict
	}
	return pkgerrors.New(code, message)
}
