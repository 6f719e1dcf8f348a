package soap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/vetintake/internal/logging"
	"github.com/dmitrijs2005/vetintake/internal/speech"
)

// Result is the outcome of one consult transcription.
type Result struct {
	Transcription string   `json:"transcription"`
	Formatted     string   `json:"formatted"`
	Sections      Sections `json:"soap"`
}

// Pipeline chains a transcriber and a formatter.
type Pipeline struct {
	transcriber speech.Transcriber
	formatter   Formatter
	language    string
	log         logging.Logger
}

func NewPipeline(t speech.Transcriber, f Formatter, language string, log logging.Logger) *Pipeline {
	return &Pipeline{transcriber: t, formatter: f, language: language, log: log}
}

// Transcribe runs audio through transcription, SOAP formatting and section
// splitting. Engine errors are returned unchanged.
func (p *Pipeline) Transcribe(ctx context.Context, audio io.Reader, subject *Subject) (*Result, error) {
	if audio == nil {
		return nil, errors.New("no audio data provided")
	}

	p.log.Info(ctx, "processing audio transcription")
	text, err := p.transcriber.Transcribe(ctx, audio, p.language)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("transcription is empty")
	}
	p.log.Debug(ctx, "transcription completed", "preview", preview(text, 100))

	formatted, err := p.formatter.Format(ctx, text, subject)
	if err != nil {
		return nil, err
	}
	p.log.Info(ctx, "SOAP formatting completed")

	return &Result{
		Transcription: text,
		Formatted:     formatted,
		Sections:      ParseSections(formatted),
	}, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
