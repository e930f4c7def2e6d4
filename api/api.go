package api

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

	"storepos/models"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrRejected wraps every {success:false} answer and 4xx other than 401.
	ErrRejected = errors.New("storefront rejected the request")
	// ErrUnauthorized means the cashier's token is no longer accepted.
	ErrUnauthorized = errors.New("storefront session expired, please log in again")
	// ErrUnavailable covers transport failures and 5xx answers.
	ErrUnavailable = errors.New("storefront unavailable")
)

// RejectedError carries the storefront's own message.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrRejected.Error()
	}
	return e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Message returns the storefront's message for a rejection, or err's text.
func Message(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	return err.Error()
}

type tokenKey struct{}

// WithToken attaches the cashier's bearer token to outgoing storefront calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// Client talks to the storefront REST backend. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ListProducts returns the store's catalog with live stock per size.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/products/my_products/", nil)
	if err != nil {
		return nil, err
	}

	// Эндпоинт отдаёт либо массив, либо страницу DRF с полем results
	var list []models.Product
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var page models.PagedProducts
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return page.Results, nil
}

// CustomerInfo looks a customer up by phone. An unknown phone comes back with
// an empty name and zero outstanding credit.
func (c *Client) CustomerInfo(ctx context.Context, phone string) (models.CustomerRecord, error) {
	var resp models.CustomerInfoResponse
	path := "/pos/get-customer-info/?phone=" + url.QueryEscape(phone)
	if err := c.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return models.CustomerRecord{}, err
	}
	if err := check(resp.Envelope); err != nil {
		return models.CustomerRecord{}, err
	}

	rec := models.CustomerRecord{
		Name:              resp.Data.Name,
		Phone:             resp.Data.Phone,
		OutstandingCredit: resp.Data.OutstandingCredit,
	}
	if rec.Phone == "" {
		rec.Phone = phone
	}
	return rec, nil
}

// VerifyReservation checks a reservation code. The returned advance is zero
// when the storefront did not report one.
func (c *Client) VerifyReservation(ctx context.Context, reservationID int64, code string) (decimal.Decimal, error) {
	var resp models.VerifyCodeResponse
	path := fmt.Sprintf("/reservations/verify-code/%d/", reservationID)
	if err := c.call(ctx, http.MethodPost, path, models.VerifyCodeRequest{Code: code}, &resp); err != nil {
		return decimal.Zero, err
	}
	if err := check(resp.Envelope); err != nil {
		return decimal.Zero, err
	}
	return resp.AdvanceAmount, nil
}

// CreateSale submits a POS sale and returns the invoice number.
func (c *Client) CreateSale(ctx context.Context, p models.SalePayload) (string, error) {
	var resp models.CreateSaleResponse
	if err := c.call(ctx, http.MethodPost, "/pos/create-sale/", p, &resp); err != nil {
		return "", err
	}
	if err := check(resp.Envelope); err != nil {
		return "", err
	}
	return resp.Data.InvoiceNo, nil
}

// CreateReservationSale submits a sale opened from a reservation.
func (c *Client) CreateReservationSale(ctx context.Context, p models.SalePayload) (string, error) {
	var resp models.ReservationSaleResponse
	if err := c.call(ctx, http.MethodPost, "/create_reservation_sale/", p, &resp); err != nil {
		return "", err
	}
	if err := check(resp.Envelope); err != nil {
		return "", err
	}
	return resp.Invoice, nil
}

// SettleCredit pays down a customer's outstanding credit.
func (c *Client) SettleCredit(ctx context.Context, req models.SettleCreditRequest) (models.SettleCreditResponse, error) {
	var resp models.SettleCreditResponse
	if err := c.call(ctx, http.MethodPost, "/settle-credit/", req, &resp); err != nil {
		return models.SettleCreditResponse{}, err
	}
	if err := check(resp.Envelope); err != nil {
		return models.SettleCreditResponse{}, err
	}
	return resp, nil
}

// ProcessReturn puts sold units back into stock for an issued invoice.
func (c *Client) ProcessReturn(ctx context.Context, req models.ReturnRequest) (string, error) {
	var resp models.Envelope
	if err := c.call(ctx, http.MethodPost, "/pos/process-return/", req, &resp); err != nil {
		return "", err
	}
	if err := check(resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func check(env models.Envelope) error {
	if !env.Success {
		return &RejectedError{Status: http.StatusOK, Message: env.Message}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	body, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: undecodable response from %s: %v", ErrUnavailable, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &RejectedError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage pulls a readable message out of a DRF error body.
func errorMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		for _, m := range []string{env.Message, env.Detail, env.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(body))
}
