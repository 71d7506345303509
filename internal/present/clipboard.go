package present

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses the OS clipboard.
type SystemClipboard struct{}

var clipboardWriteAll = clipboard.WriteAll

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard unsupported on this system")
	}
	return clipboardWriteAll(text)
}

// WriterClipboard prints the text instead, for headless sessions.
type WriterClipboard struct {
	W io.Writer
}

func (c WriterClipboard) WriteAll(text string) error {
	_, err := fmt.Fprintln(c.W, text)
	return err
}

// FallbackClipboard tries Primary and writes to Fallback when it fails.
// It reports whether the primary clipboard took the text.
type FallbackClipboard struct {
	Primary  Clipboard
	Fallback Clipboard
}

func (c FallbackClipboard) Copy(text string) (bool, error) {
	if err := c.Primary.WriteAll(text); err == nil {
		return true, nil
	}
	if err := c.Fallback.WriteAll(text); err != nil {
		return false, fmt.Errorf("fallback copy: %w", err)
	}
	return false, nil
}
