package woocommerce_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-sync/internal/infrastructure/woocommerce"
)

const ordersPayload = `[
  {
    "id": 1001,
    "status": "processing",
    "currency": "EUR",
    "total": "35.00",
    "billing": {"email": "ana@example.com", "first_name": "Ana", "last_name": "García"},
    "line_items": [
      {"sku": "A100", "quantity": 2, "price": 10},
      {"sku": "B200", "quantity": 1, "price": "15.00"}
    ]
  },
  {
    "id": 1002,
    "status": "processing",
    "currency": "EUR",
    "total": "",
    "billing": {"email": "luis@example.com", "first_name": "Luis", "last_name": ""},
    "line_items": []
  }
]`

func TestFetchOrders_MapeaElFormatoDeCable(t *testing.T) {
	var gotPath, gotQuery, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ordersPayload))
	}))
	defer srv.Close()

	client := woocommerce.NewClient(srv.URL, "ck_test", "cs_test", 5*time.Second)
	orders, err := client.FetchOrders(context.Background(), "processing", 10)
	require.NoError(t, err)

	assert.Equal(t, "/wp-json/wc/v3/orders", gotPath)
	assert.Equal(t, "status=processing&per_page=10", gotQuery)
	assert.Equal(t, "ck_test", gotUser)
	assert.Equal(t, "cs_test", gotPass)

	require.Len(t, orders, 2)
	first := orders[0]
	assert.Equal(t, "1001", first.ExternalID, "el id numérico del canal se vuelve external_id de texto")
	assert.Equal(t, "ana@example.com", first.CustomerEmail)
	assert.Equal(t, "Ana García", first.CustomerName)
	assert.True(t, first.TotalAmount.Equal(decimal.RequireFromString("35.00")))
	require.Len(t, first.Items, 2)
	assert.Equal(t, "A100", first.Items[0].SKU)
	assert.True(t, first.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, first.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)), "price numérico")
	assert.True(t, first.Items[1].UnitPrice.Equal(decimal.RequireFromString("15.00")), "price como string")

	// Total vacío se tolera como cero, no tumba el lote.
	assert.True(t, orders[1].TotalAmount.IsZero())
	assert.Equal(t, "Luis", orders[1].CustomerName)
}

func TestFetchOrders_RespuestaNo2xxEsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"woocommerce_rest_authentication_error"}`))
	}))
	defer srv.Close()

	client := woocommerce.NewClient(srv.URL, "mala", "clave", 5*time.Second)
	_, err := client.FetchOrders(context.Background(), "processing", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchOrders_CuerpoMalformadoEsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`no es json`))
	}))
	defer srv.Close()

	client := woocommerce.NewClient(srv.URL, "ck", "cs", 5*time.Second)
	_, err := client.FetchOrders(context.Background(), "processing", 10)
	assert.Error(t, err)
}

func TestFetchOrders_ServidorCaido(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // cerrado a propósito

	client := woocommerce.NewClient(srv.URL, "ck", "cs", time.Second)
	_, err := client.FetchOrders(context.Background(), "processing", 10)
	assert.Error(t, err)
}
