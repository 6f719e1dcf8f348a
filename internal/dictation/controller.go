// Package dictation captures single spoken utterances, rewrites them into
// clinical vocabulary and hands the text to the caller.
package dictation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/logging"
	"github.com/dmitrijs2005/vetintake/internal/vocabulary"
)

// UnsupportedMessage is delivered to onError when no recognizer is available.
const UnsupportedMessage = "Reconhecimento de voz não é suportado neste ambiente. Configure um mecanismo de reconhecimento de fala."

// DefaultLocale is the recognition locale used when none is configured.
const DefaultLocale = "pt-BR"

// Session describes the capture in flight.
type Session struct {
	ID        string
	Listening bool
}

type session struct {
	id     xid.ID
	once   sync.Once
	cancel context.CancelFunc
}

type Controller struct {
	rec    Recognizer
	norm   *vocabulary.Normalizer
	locale string
	log    logging.Logger

	listening atomic.Bool
	mu        sync.Mutex
	current   *session
}

// NewController builds a controller. A nil rec makes every capture fail
// with UnsupportedMessage.
func NewController(rec Recognizer, norm *vocabulary.Normalizer, locale string, log logging.Logger) *Controller {
	if locale == "" {
		locale = DefaultLocale
	}
	return &Controller{rec: rec, norm: norm, locale: locale, log: log}
}

func (c *Controller) Listening() bool { return c.listening.Load() }

// Session returns the capture in flight, if any.
func (c *Controller) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Session{}, false
	}
	return Session{ID: c.current.id.String(), Listening: c.listening.Load()}, true
}

// StartCapture begins a single-utterance capture. Exactly one of onResult
// or onError is called per session, unless it is aborted or ends without
// speech. onResult receives the normalized text. A capture started while
// another is listening is rejected with common.ErrCaptureInProgress and
// fires no callback.
func (c *Controller) StartCapture(ctx context.Context, onResult func(text string), onError func(msg string)) error {
	if c.rec == nil {
		if onError != nil {
			onError(UnsupportedMessage)
		}
		return nil
	}
	if !c.listening.CompareAndSwap(false, true) {
		return common.ErrCaptureInProgress
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &session{id: xid.New(), cancel: cancel}
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()

	log := c.log.With(logging.KeySessionID, s.id.String())

	cb := Callbacks{
		OnStart: func() {
			log.Debug(sctx, "dictation started", "locale", c.locale)
		},
		OnResult: func(transcript string) {
			s.once.Do(func() {
				c.end(s)
				text := c.norm.Normalize(transcript)
				log.Debug(sctx, "dictation result", "raw", transcript, "normalized", text)
				if onResult != nil {
					onResult(text)
				}
			})
		},
		OnError: func(code string) {
			s.once.Do(func() {
				c.end(s)
				log.Warn(sctx, "dictation failed", "error", code)
				if onError != nil {
					onError(code)
				}
			})
		},
		OnEnd: func() {
			c.end(s)
		},
	}

	opts := Options{Locale: c.locale, Continuous: false, InterimResults: false, MaxAlternatives: 1}
	if err := c.rec.Start(sctx, opts, cb); err != nil {
		cb.OnError(err.Error())
	}
	return nil
}

// Abort ends the capture in flight without firing an outcome.
func (c *Controller) Abort() {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil {
		return
	}
	s.once.Do(func() {})
	c.end(s)
}

// end tears s down if it is still the current session.
func (c *Controller) end(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != s {
		return
	}
	s.cancel()
	c.current = nil
	c.listening.Store(false)
}
