package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storepos/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 2*time.Second)
}

func TestListProducts_PlainList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/my_products/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":1,"name":"Kurta","sizes":[{"size_label":"M","price":"500.00","quantity":3}]}]`))
	})

	products, err := c.ListProducts(WithToken(context.Background(), "tok"))

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Kurta", products[0].Name)
	assert.True(t, products[0].Sizes[0].Price.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 3, products[0].Sizes[0].Quantity)
}

func TestListProducts_Paged(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":1,"results":[{"id":2,"name":"Dupatta","sizes":[]}]}`))
	})

	products, err := c.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(2), products[0].ID)
}

func TestCustomerInfo_StringCredit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "98765", r.URL.Query().Get("phone"))
		w.Write([]byte(`{"success":true,"data":{"name":"Ravi","phone":"98765","outstanding_credit":"400.00"}}`))
	})

	rec, err := c.CustomerInfo(context.Background(), "98765")

	require.NoError(t, err)
	assert.Equal(t, "Ravi", rec.Name)
	assert.True(t, rec.OutstandingCredit.Equal(decimal.NewFromInt(400)))
}

func TestVerifyReservation_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reservations/verify-code/41/", r.URL.Path)
		var req models.VerifyCodeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "0000", req.Code)

		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"Invalid reservation code."}`))
	})

	_, err := c.VerifyReservation(context.Background(), 41, "0000")

	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "Invalid reservation code.", Message(err))
}

func TestVerifyReservation_Advance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"advance_amount":200.0}`))
	})

	adv, err := c.VerifyReservation(context.Background(), 41, "4821")

	require.NoError(t, err)
	assert.True(t, adv.Equal(decimal.NewFromInt(200)))
}

func TestCreateSale(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Nil(t, body["reservation_id"])
		assert.Equal(t, "1150", body["total"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"sale_id":9,"invoice_no":"INV-0009","total":"1150.00"}}`))
	})

	inv, err := c.CreateSale(context.Background(), models.SalePayload{Total: decimal.NewFromInt(1150)})

	require.NoError(t, err)
	assert.Equal(t, "INV-0009", inv)
}

func TestCreateReservationSale_SuccessFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Reservation expired."}`))
	})

	_, err := c.CreateReservationSale(context.Background(), models.SalePayload{})

	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "Reservation expired.", err.Error())
}

func TestUnauthorizedAndUnavailable(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusUnauthorized)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
	})

	_, err := c.SettleCredit(context.Background(), models.SettleCreditRequest{Phone: "1234"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	status.Store(http.StatusBadGateway)
	_, err = c.ProcessReturn(context.Background(), models.ReturnRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)

	status.Store(http.StatusNotFound)
	_, err = c.ListProducts(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "Given token not valid for any token type", Message(err))
}

func TestTransportFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)

	_, err := c.ListProducts(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
}
