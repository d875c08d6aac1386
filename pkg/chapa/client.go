// Package chapa is a thin HTTPS client for the Chapa payment gateway.
package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yonasbekele/serenity-backend/pkg/config"
	pkgerrors "github.com/yonasbekele/serenity-backend/pkg/errors"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
)

// StatusSuccess is the status string Chapa reports for successful API calls
// and settled transactions.
const StatusSuccess = "success"

// TxRefPrefix tags every transaction reference this backend generates.
const TxRefPrefix = "order_"

var errSecretKeyRequired = errors.New("chapa secret key is required")

// Client issues authenticated initialize/verify calls against the gateway.
type Client struct {
	httpClient    *http.Client
	secretKey     string
	initURL       string
	verifyURL     string
	webhookSecret string
	logger        *logger.Logger
}

// NewClient validates the gateway credentials and builds a client with a
// bounded request timeout.
func NewClient(cfg config.ChapaConfig, logg *logger.Logger) (*Client, error) {
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, errors.New("chapa webhook secret is required")
	}
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		secretKey:     secretKey,
		initURL:       strings.TrimRight(cfg.InitURL, "/"),
		verifyURL:     strings.TrimRight(cfg.VerifyURL, "/"),
		webhookSecret: cfg.WebhookSecret,
		logger:        logg,
	}, nil
}

// WebhookSecret returns the shared secret used to sign inbound callbacks.
func (c *Client) WebhookSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// NewTxRef generates a globally unique transaction reference.
func NewTxRef() string {
	return TxRefPrefix + uuid.NewString()
}

// InitializeRequest carries everything the gateway needs to open a checkout
// session.
type InitializeRequest struct {
	Amount      string         `json:"amount"`
	Currency    string         `json:"currency"`
	TxRef       string         `json:"tx_ref"`
	CallbackURL string         `json:"callback_url"`
	ReturnURL   string         `json:"return_url"`
	Meta        map[string]any `json:"meta,omitempty"`
}

type initializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// Initialize opens a transaction with the gateway and returns the hosted
// checkout URL the client should be redirected to.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode initialize request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.initURL, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build initialize request")
	}
	c.authorize(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment gateway")
	}
	defer resp.Body.Close()

	var parsed initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}

	if parsed.Status != StatusSuccess {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("gateway rejected initialization (http %d)", resp.StatusCode)
		}
		return "", pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
	if parsed.Data.CheckoutURL == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gateway returned no checkout url")
	}
	return parsed.Data.CheckoutURL, nil
}

// VerifyResult is the gateway's authoritative view of one transaction.
type VerifyResult struct {
	// APIStatus reports whether the verification call itself succeeded.
	APIStatus string
	// TransactionStatus is the settled state of the transaction.
	TransactionStatus string
	Meta              map[string]any
}

// Settled reports whether the gateway confirmed the transaction as paid.
func (v VerifyResult) Settled() bool {
	return v.APIStatus == StatusSuccess && v.TransactionStatus == StatusSuccess
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string         `json:"status"`
		Meta   map[string]any `json:"meta"`
	} `json:"data"`
}

// Verify fetches the transaction state for txRef from the gateway. The
// webhook-asserted status is never trusted alone; reconciliation always goes
// through this call.
func (c *Client) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	if strings.TrimSpace(txRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL+"/"+txRef, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build verify request")
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment gateway")
	}
	defer resp.Body.Close()

	var parsed verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}

	return &VerifyResult{
		APIStatus:         parsed.Status,
		TransactionStatus: parsed.Data.Status,
		Meta:              parsed.Data.Meta,
	}, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
}
