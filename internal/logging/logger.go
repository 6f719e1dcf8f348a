// Package logging is the structured logger of the intake pipeline. Engines,
// services and the CLI take a Logger; the only implementation is backed by
// log/slog and Nop is the silent one used in tests.
package logging

import "context"

// Attribute keys shared across packages, so that a scan or a dictation
// session can be followed through the log.
const (
	KeyClinicID  = "clinic_id"
	KeyPetID     = "pet_id"
	KeyScanID    = "scan_id"
	KeySessionID = "session_id"
	KeyEngine    = "engine"
)

// Logger takes key/value pairs after the message:
//
//	log.Info(ctx, "scan processed", logging.KeyPetID, petID, "candidates", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying args on every record.
	With(args ...any) Logger
}
