package speech

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/vetintake/internal/dictation"
)

// Error codes reported by BatchRecognizer in addition to transcriber errors.
const (
	ErrCodeNoSpeech     = "no-speech"
	ErrCodeAborted      = "aborted"
	ErrCodeAudioCapture = "audio-capture"
)

// AudioSource yields one recorded utterance per call.
type AudioSource interface {
	Next(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the utterance from the file returned by Path on each call.
type FileSource struct {
	Path func() (string, error)
}

func (f FileSource) Next(ctx context.Context) (io.ReadCloser, error) {
	p, err := f.Path()
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// BatchRecognizer satisfies dictation.Recognizer by recording one utterance
// and sending it to a Transcriber in a single request.
type BatchRecognizer struct {
	source      AudioSource
	transcriber Transcriber
}

func NewBatchRecognizer(source AudioSource, t Transcriber) *BatchRecognizer {
	return &BatchRecognizer{source: source, transcriber: t}
}

func (b *BatchRecognizer) Start(ctx context.Context, opts dictation.Options, cb dictation.Callbacks) error {
	go b.run(ctx, opts, cb)
	return nil
}

func (b *BatchRecognizer) run(ctx context.Context, opts dictation.Options, cb dictation.Callbacks) {
	call(cb.OnStart)
	defer call(cb.OnEnd)

	fail := func(code string) {
		if cb.OnError != nil {
			cb.OnError(code)
		}
	}

	audio, err := b.source.Next(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fail(ErrCodeAborted)
			return
		}
		fail(ErrCodeAudioCapture + ": " + err.Error())
		return
	}
	defer audio.Close()

	text, err := b.transcriber.Transcribe(ctx, audio, LanguageFromLocale(opts.Locale))
	switch {
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		fail(ErrCodeAborted)
	case err != nil:
		fail(err.Error())
	case text == "":
		fail(ErrCodeNoSpeech)
	default:
		if cb.OnResult != nil {
			cb.OnResult(text)
		}
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
