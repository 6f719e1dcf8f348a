package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/vetintake/internal/soap"
)

// dictationTimeout bounds a single dictate command.
const dictationTimeout = 2 * time.Minute

// consultNote is the SOAP note being written for the current consult.
type consultNote struct {
	Anamnese    string
	Exame       string
	Diagnostico string
	Tratamento  string
}

func (n *consultNote) field(name string) (*string, error) {
	switch strings.ToLower(name) {
	case "anamnese", "subjetivo":
		return &n.Anamnese, nil
	case "exame", "objetivo":
		return &n.Exame, nil
	case "diagnostico", "diagnóstico", "avaliacao":
		return &n.Diagnostico, nil
	case "tratamento", "plano":
		return &n.Tratamento, nil
	}
	return nil, fmt.Errorf("unknown note field %q (anamnese, exame, diagnostico, tratamento)", name)
}

// appendLine adds text to a field on its own line.
func appendLine(dst *string, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if *dst == "" {
		*dst = text
		return
	}
	*dst += "\n" + text
}

// Dictate transcribes one utterance from an audio file, normalizes it and
// appends it to a note field: dictate <field> <audio>.
func (a *App) Dictate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: dictate <field> <audio>")
	}
	dst, err := a.note.field(args[0])
	if err != nil {
		return err
	}
	if _, err := os.Stat(args[1]); err != nil {
		return err
	}
	a.audioPath = args[1]
	defer func() { a.audioPath = "" }()

	type outcome struct {
		text string
		msg  string
	}
	done := make(chan outcome, 1)
	err = a.dictation.StartCapture(ctx,
		func(text string) { done <- outcome{text: text} },
		func(msg string) { done <- outcome{msg: msg} },
	)
	if err != nil {
		return err
	}

	select {
	case o := <-done:
		if o.msg != "" {
			return fmt.Errorf("dictation: %s", o.msg)
		}
		appendLine(dst, o.text)
		fmt.Fprintln(a.out, o.text)
		return nil
	case <-ctx.Done():
		a.dictation.Abort()
		return ctx.Err()
	case <-time.After(dictationTimeout):
		a.dictation.Abort()
		return errors.New("dictation timed out")
	}
}

// Transcribe turns a consult recording into a SOAP note:
// transcribe <audio> [name species].
func (a *App) Transcribe(ctx context.Context, args []string) error {
	if a.pipeline == nil {
		return errors.New("consult transcription is not configured")
	}
	if len(args) == 0 {
		return errors.New("usage: transcribe <audio> [name species]")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var subject *soap.Subject
	if len(args) >= 3 {
		subject = &soap.Subject{Name: args[1], Species: args[2]}
	}

	res, err := a.pipeline.Transcribe(ctx, f, subject)
	if err != nil {
		return err
	}
	if res.Sections.IsEmpty() {
		fmt.Fprintln(a.out, res.Formatted)
		return nil
	}
	appendLine(&a.note.Anamnese, res.Sections.Subjective)
	appendLine(&a.note.Exame, res.Sections.Objective)
	appendLine(&a.note.Diagnostico, res.Sections.Assessment)
	appendLine(&a.note.Tratamento, res.Sections.Plan)
	return a.Note(ctx, nil)
}

// Note prints the note; "note clear" empties it.
func (a *App) Note(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "clear" {
		a.note = consultNote{}
		return nil
	}
	for _, f := range []struct{ label, text string }{
		{"ANAMNESE", a.note.Anamnese},
		{"EXAME", a.note.Exame},
		{"DIAGNÓSTICO", a.note.Diagnostico},
		{"TRATAMENTO", a.note.Tratamento},
	} {
		fmt.Fprintf(a.out, "%s:\n%s\n\n", f.label, f.text)
	}
	return nil
}
