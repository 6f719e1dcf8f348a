package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	sentinels := []error{
		ErrorNotFound,
		ErrNothingExtracted,
		ErrInvalidTransition,
		ErrInvalidCandidate,
		ErrEntryNotFound,
		ErrMissingTarget,
		ErrCaptureInProgress,
		ErrUnsupportedImage,
		ErrImageTooLarge,
		ErrUnknownEngine,
		ErrInvalidToken,
		ErrTokenExpired,
	}

	for _, s := range sentinels {
		wrapped := fmt.Errorf("layer: %w", s)
		if !errors.Is(wrapped, s) {
			t.Fatalf("errors.Is lost %v through wrapping", s)
		}
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(ErrInvalidToken, ErrTokenExpired) {
		t.Fatal("token errors must not match each other")
	}
	if errors.Is(ErrorNotFound, ErrEntryNotFound) {
		t.Fatal("repository and review not-found errors must be distinct")
	}
}
