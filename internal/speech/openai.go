package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vetintake/internal/netx"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"

	// DefaultPrompt biases the transcription towards veterinary vocabulary.
	DefaultPrompt = "Transcrição de consulta veterinária com termos médicos em português."
)

func init() {
	Transcribers.Register("openai", func(config map[string]string) (Transcriber, error) {
		key := config["api_key"]
		if key == "" {
			return nil, fmt.Errorf("openai transcriber: API key required")
		}
		return &OpenAI{
			apiKey:   key,
			baseURL:  config["base_url"],
			model:    config["model"],
			prompt:   config["prompt"],
			fileName: config["file_name"],
		}, nil
	})
}

// OpenAI calls an OpenAI-compatible /audio/transcriptions endpoint.
type OpenAI struct {
	apiKey   string
	baseURL  string
	model    string
	prompt   string
	fileName string
	client   *http.Client
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	return &OpenAI{apiKey: apiKey, baseURL: baseURL, model: model}
}

func (o *OpenAI) Transcribe(ctx context.Context, audio io.Reader, language string) (string, error) {
	baseURL := strings.TrimRight(o.baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := o.model
	if model == "" {
		model = defaultModel
	}
	prompt := o.prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	fileName := o.fileName
	if fileName == "" {
		fileName = "audio.webm"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("openai transcriber: create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("openai transcriber: read audio: %w", err)
	}
	_ = w.WriteField("model", model)
	_ = w.WriteField("response_format", "json")
	_ = w.WriteField("prompt", prompt)
	if language != "" {
		_ = w.WriteField("language", language)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("openai transcriber: close form: %w", err)
	}

	headers := netx.BearerAuth(o.apiKey)
	headers["Content-Type"] = w.FormDataContentType()

	rc, err := netx.DoRaw(ctx, o.client, http.MethodPost, baseURL+"/audio/transcriptions", headers, &body)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	defer rc.Close()

	var resp struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(rc).Decode(&resp); err != nil {
		return "", fmt.Errorf("openai transcriber: decode: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
