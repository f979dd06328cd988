package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
)

// Verificar en tiempo de compilación que Client implementa OrderSource.
var _ appsync.OrderSource = (*Client)(nil)

// Client consume la API REST de WooCommerce (wc/v3) como fuente de pedidos
// candidatos. Autenticación por consumer key/secret (basic auth).
type Client struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
}

// NewClient construye el cliente del canal de ventas.
func NewClient(baseURL, key, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Formato de cable de WooCommerce ───────────────────────────────────────────

type wcBilling struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type wcLineItem struct {
	SKU      string      `json:"sku"`
	Quantity int64       `json:"quantity"`
	Price    json.Number `json:"price"` // WooCommerce lo manda como número o string según versión
}

type wcOrder struct {
	ID        int64        `json:"id"`
	Status    string       `json:"status"`
	Currency  string       `json:"currency"`
	Total     string       `json:"total"`
	Billing   wcBilling    `json:"billing"`
	LineItems []wcLineItem `json:"line_items"`
}

// FetchOrders trae hasta pageSize pedidos con el estado dado y los mapea al
// payload de ingesta. Cualquier fallo acá (auth, red, respuesta no 2xx) aborta
// la corrida completa: el caller lo trata como fatal.
func (c *Client) FetchOrders(ctx context.Context, status string, pageSize int) ([]dto.InboundOrder, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wc/v3/orders?status=%s&per_page=%d",
		c.baseURL, url.QueryEscape(status), pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("armar request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("consultar canal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("canal respondió %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var wcOrders []wcOrder
	if err := json.NewDecoder(resp.Body).Decode(&wcOrders); err != nil {
		return nil, fmt.Errorf("decodificar pedidos: %w", err)
	}

	orders := make([]dto.InboundOrder, 0, len(wcOrders))
	for _, wc := range wcOrders {
		orders = append(orders, mapOrder(wc))
	}
	return orders, nil
}

func mapOrder(wc wcOrder) dto.InboundOrder {
	order := dto.InboundOrder{
		ExternalID:    strconv.FormatInt(wc.ID, 10),
		CustomerEmail: wc.Billing.Email,
		CustomerName:  strings.TrimSpace(wc.Billing.FirstName + " " + wc.Billing.LastName),
		Status:        wc.Status,
		TotalAmount:   parseAmount(wc.Total),
		Currency:      wc.Currency,
	}
	for _, li := range wc.LineItems {
		order.Items = append(order.Items, dto.InboundOrderItem{
			SKU:       li.SKU,
			Quantity:  decimal.NewFromInt(li.Quantity),
			UnitPrice: parseAmount(li.Price.String()),
		})
	}
	return order
}

// parseAmount tolera los montos vacíos o malformados del canal: mejor ingerir
// el pedido con monto cero y dejar rastro en la bitácora que tumbar el lote.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
