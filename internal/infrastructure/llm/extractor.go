package llm

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ApagonScanner/internal/config"
	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/ports"
)

//go:embed template.json
var schemaTemplate string

// systemPromptFmt embeds the target schema plus field-by-field
// instructions. The model is told to answer with exactly one JSON
// object and nothing else.
const systemPromptFmt = `Extrae información de afectaciones eléctricas y devuelve SÓLO UN OBJETO JSON con esta estructura:
%s

Instrucciones específicas:
1. En "zonas_con_problemas": Lista de zonas con problemas eléctricos (array de strings)
2. En "fecha_reporte": Fecha mencionada en el texto
3. En "prediccion":
   - "disponibilidad": Disponibilidad estimada en MW
   - "demanda_maxima": Demanda máxima estimada en MW
   - "afectacion": Afectación pronosticada en MW
   - "deficit": Déficit estimado en MW
   - "respaldo": Información de respaldo si existe
   - "horario_pico": Hora o periodo del pico de demanda mencionado
4. En "info_matutina":
   - "hora": Hora de la información matutina (ej. "7:00 a.m.")
   - "disponibilidad": Disponibilidad del SEN en MW
   - "demanda": Demanda en ese momento en MW
   - "deficit": Déficit en ese momento en MW
   - "proyeccion_mediodia": Información sobre proyección al mediodía (afectación estimada y hora)
5. En "plantas":
   - "averia": Array de objetos con datos de plantas en avería (planta, unidad/es, tipo)
   - "mantenimiento": Array de objetos con datos de plantas en mantenimiento (planta, unidad/es, tipo)
   - "limitacion_termica": Limitaciones térmicas en MW y tipo
6. En "distribuida":
   - "motores_con_problemas": Objeto con total de centrales/motores con problemas, impacto en MW y causa
   - "problemas_lubricantes": Información sobre problemas de lubricantes (MW afectados, unidades)
   - "patanas_con_problemas": Array de objetos con datos sobre patanas con problemas, incluyendo nombre, motores afectados, MW afectados y recuperación estimada
7. En "paneles_solares":
   - "cantidad_parques": Número de parques solares mencionados
   - "produccion_mwh": Producción en MWh de los parques solares
   - "nuevos_parques": Información sobre nuevos parques solares
   - "capacidad_instalada": Capacidad instalada en MW
   - "periodo_produccion": Período de tiempo al que se refiere la producción
8. En "impacto":
   - "horas_totales": Horas totales de afectación
   - "continuidad_afectacion": Si la afectación ha sido continua o intermitente
   - "maximo": Objeto con datos de afectación máxima (MW, hora, fecha y nota adicional)
   - "tendencia": Tendencia mencionada en la afectación

Para campos desconocidos usa null, no inventes datos. No añadas campos adicionales al JSON.`

// Extractor converts a report's raw text into structured data through a
// chat-completions call against an OpenAI-compatible API.
type Extractor struct {
	endpoint     string
	model        string
	apiKey       string
	temperature  float64
	maxTokens    int
	systemPrompt string
	httpClient   *http.Client
	logger       *slog.Logger
}

var _ ports.Extractor = (*Extractor)(nil)

// NewExtractor builds a client from configuration. The system prompt
// with the embedded schema is assembled once here, not per call.
func NewExtractor(cfg config.LLMConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		systemPrompt: fmt.Sprintf(systemPromptFmt, strings.TrimSpace(schemaTemplate)),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends one article's text to the model and returns the parsed,
// schema-normalized payload. Any failure (non-200, empty choices,
// unparseable content even after the repair pass) makes the caller drop
// this article from the run.
func (e *Extractor) Extract(ctx context.Context, text string) (domain.Datos, error) {
	if e.apiKey == "" || e.endpoint == "" || e.model == "" {
		return nil, fmt.Errorf("extractor misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "system", "content": e.systemPrompt},
			{"role": "user", "content": text},
		},
		"temperature":     e.temperature,
		"max_tokens":      e.maxTokens,
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("model API %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("response carries no choices")
	}

	datos, err := e.parsePayload(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return datos.Normalize(), nil
}

// parsePayload strips Markdown fences and parses the content as JSON.
// On failure it makes a single repair attempt swapping single quotes
// for double quotes, the most common model formatting slip. The swap is
// blunt: content that legitimately contains apostrophes inside quoted
// prose will not survive it, and such responses are given up on.
func (e *Extractor) parsePayload(content string) (domain.Datos, error) {
	content = stripFences(content)

	var datos domain.Datos
	if err := json.Unmarshal([]byte(content), &datos); err == nil {
		return datos, nil
	}

	repaired := strings.ReplaceAll(content, "'", `"`)
	if err := json.Unmarshal([]byte(repaired), &datos); err != nil {
		return nil, fmt.Errorf("unparseable model output: %w", err)
	}
	if e.logger != nil {
		e.logger.Debug("model output repaired after quote normalization")
	}
	return datos, nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = content[len("```json"):]
	}
	if strings.HasSuffix(content, "```") {
		content = content[:len(content)-len("```")]
	}
	return strings.TrimSpace(content)
}
