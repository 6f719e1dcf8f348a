// Package soap turns consult recordings into SOAP notes: the audio is
// transcribed, an LLM rewrites the transcript into the four SOAP sections,
// and the result is split into fields.
package soap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vetintake/internal/netx"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	temperature    = 0.3
)

const systemPrompt = `Você é um assistente especializado em medicina veterinária. Sua função é transformar transcrições de consultas veterinárias em registros médicos estruturados no formato SOAP (Subjetivo, Objetivo, Avaliação, Plano).

Diretrizes:
- Use terminologia médica veterinária precisa e formal
- Organize as informações nas seções SOAP apropriadas
- Mantenha tom profissional e objetivo
- Corrija erros gramaticais e de pontuação
- Padronize abreviações médicas (FC, FR, TPC, etc.)
- Se informações faltarem em uma seção, deixe em branco ou indique "não mencionado"
- Seja conciso mas completo

Formato de saída esperado:
SUBJETIVO (Anamnese):
[Queixa principal, histórico, observações do tutor]

OBJETIVO (Exame Clínico):
[Temperatura, FC, FR, mucosas, ausculta, palpação, etc.]

AVALIAÇÃO (Diagnóstico):
[Diagnóstico presuntivo ou definitivo, diagnósticos diferenciais]

PLANO (Tratamento):
[Medicações prescritas, procedimentos, orientações ao tutor]`

// Subject is the optional patient context given to the formatter.
type Subject struct {
	Name    string
	Species string
}

// Formatter rewrites a consult transcript as SOAP text.
type Formatter interface {
	Format(ctx context.Context, transcript string, subject *Subject) (string, error)
}

// LLMFormatter calls an OpenAI-compatible chat completions endpoint.
type LLMFormatter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewLLMFormatter(apiKey, baseURL, model string) *LLMFormatter {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &LLMFormatter{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), model: model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (f *LLMFormatter) Format(ctx context.Context, transcript string, subject *Subject) (string, error) {
	req := chatRequest{
		Model: f.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(transcript, subject)},
		},
		Temperature: temperature,
	}

	var resp chatResponse
	if err := netx.DoJSON(ctx, f.client, http.MethodPost, f.baseURL+"/chat/completions", netx.BearerAuth(f.apiKey), req, &resp); err != nil {
		return "", fmt.Errorf("SOAP formatting failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("SOAP formatting failed: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// userPrompt includes the patient line only when both name and species are known.
func userPrompt(transcript string, subject *Subject) string {
	var b strings.Builder
	b.WriteString("Transcreva a seguinte consulta veterinária no formato SOAP:")
	if subject != nil && subject.Name != "" && subject.Species != "" {
		fmt.Fprintf(&b, "\nPaciente: %s (%s)", subject.Name, subject.Species)
	}
	b.WriteString("\n\nTranscrição:\n")
	b.WriteString(transcript)
	return b.String()
}
