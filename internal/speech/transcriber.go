// Package speech binds speech-to-text engines and adapts them to the
// dictation recognizer capability.
package speech

import (
	"context"
	"io"

	"golang.org/x/text/language"

	"github.com/dmitrijs2005/vetintake/internal/registry"
)

// Transcriber turns one recorded utterance into text. language is an ISO
// 639-1 code and may be empty.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, language string) (string, error)
}

// Transcribers holds the speech engines selectable by name.
var Transcribers = registry.New[Transcriber]()

// LanguageFromLocale reduces a BCP 47 locale such as "pt-BR" to its base
// language, "pt". Unparseable locales yield "".
func LanguageFromLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
