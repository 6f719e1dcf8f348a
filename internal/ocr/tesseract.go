package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func init() {
	Engines.Register("tesseract", func(config map[string]string) (Engine, error) {
		return NewTesseract(config["binary_path"]), nil
	})
}

// runCommand executes name with args, feeding stdin. It is a seam for tests.
var runCommand = func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Tesseract runs the tesseract binary, passing the image on stdin and
// reading the text from stdout.
type Tesseract struct {
	binaryPath string
}

func NewTesseract(binaryPath string) *Tesseract {
	if binaryPath == "" {
		binaryPath = "tesseract"
	}
	return &Tesseract{binaryPath: binaryPath}
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("tesseract: empty image")
	}
	if lang == "" {
		lang = DefaultLanguage
	}

	stdout, stderr, err := runCommand(ctx, t.binaryPath, []string{"stdin", "stdout", "-l", lang}, image)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(stderr)))
	}

	// tesseract ends every page with a form feed
	return strings.TrimRight(string(stdout), "\f\n "), nil
}
