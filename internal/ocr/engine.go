// Package ocr binds optical character recognition engines. An engine turns
// one card image into plain text; an empty result is a valid outcome.
package ocr

import (
	"context"

	"github.com/dmitrijs2005/vetintake/internal/registry"
)

// DefaultLanguage is the recognition language used when none is configured.
const DefaultLanguage = "por"

// Engine recognizes the text in an image.
type Engine interface {
	Recognize(ctx context.Context, image []byte, lang string) (string, error)
}

// Engines holds the OCR engines selectable by name.
var Engines = registry.New[Engine]()
