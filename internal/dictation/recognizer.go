package dictation

import "context"

// Options configures one recognition session.
type Options struct {
	Locale          string
	Continuous      bool
	InterimResults  bool
	MaxAlternatives int
}

// Callbacks receive the events of one session. A session fires OnStart,
// then at most one of OnResult or OnError, then OnEnd. Any field may be nil.
type Callbacks struct {
	OnStart  func()
	OnResult func(transcript string)
	OnError  func(code string)
	OnEnd    func()
}

// Recognizer is a speech recognition capability. Start begins a session and
// returns without waiting for it; events arrive through cb.
type Recognizer interface {
	Start(ctx context.Context, opts Options, cb Callbacks) error
}
