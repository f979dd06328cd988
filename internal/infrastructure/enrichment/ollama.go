package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
)

// Verificar en tiempo de compilación que OllamaClient implementa Enricher.
var _ appsync.Enricher = (*OllamaClient)(nil)

const ollamaSystemPrompt = `Eres un analista de riesgo de pedidos de comercio electrónico.
Devuelve ÚNICAMENTE un objeto JSON válido (sin markdown, sin bloques de código) con esta estructura exacta:
{
  "risk_score": <número decimal entre 0.0 y 1.0>,
  "notes": "<observación concisa en español, máximo 200 caracteres>"
}

Reglas:
- risk_score: 0.0–0.3 = riesgo bajo, 0.3–0.7 = revisar, >0.7 = alto riesgo de fraude.
- No incluyas texto fuera del JSON. Solo el objeto JSON.`

// OllamaClient adaptador que implementa el enriquecimiento de pedidos contra
// un Ollama local (API /api/generate). Usa net/http de la librería estándar;
// no requiere SDK.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient construye el adaptador. model suele ser "qwen2.5".
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras internas del protocolo Ollama ─────────────────────────────────

type ollamaRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type scorePayload struct {
	RiskScore float64 `json:"risk_score"`
	Notes     string  `json:"notes"`
}

// jsonBlockRe extrae el primer objeto JSON del texto aunque el modelo lo
// envuelva en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// Score envía el resumen del pedido al modelo local y devuelve la puntuación
// de riesgo. El caller trata cualquier error como degradación: el pedido se
// confirma sin puntuación.
func (c *OllamaClient) Score(ctx context.Context, order dto.InboundOrder) (*appsync.Enrichment, error) {
	prompt := fmt.Sprintf(
		"Pedido #%s: cliente %s, total %s %s, %d líneas, estado %s.",
		order.ExternalID, order.CustomerEmail,
		order.TotalAmount.String(), order.Currency,
		len(order.Items), order.Status,
	)

	payload := ollamaRequest{
		Model:  c.model,
		System: ollamaSystemPrompt,
		Prompt: prompt,
		Format: "json",
		Stream: false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("armar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llamar a ollama: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama respondió %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var or ollamaResponse
	if err := json.Unmarshal(raw, &or); err != nil {
		return nil, fmt.Errorf("decodificar respuesta: %w", err)
	}
	if or.Error != "" {
		return nil, fmt.Errorf("ollama: %s", or.Error)
	}

	block := jsonBlockRe.FindString(or.Response)
	if block == "" {
		return nil, fmt.Errorf("la respuesta no contiene un objeto JSON")
	}
	var score scorePayload
	if err := json.Unmarshal([]byte(block), &score); err != nil {
		return nil, fmt.Errorf("decodificar puntuación: %w", err)
	}
	if score.RiskScore < 0 || score.RiskScore > 1 {
		return nil, fmt.Errorf("risk_score fuera de rango: %f", score.RiskScore)
	}

	return &appsync.Enrichment{
		RiskScore: decimal.NewFromFloat(score.RiskScore),
		Notes:     score.Notes,
	}, nil
}
