// Package resume turns an uploaded resume into plain text used as interview
// context. No structural parsing is done.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxSize bounds uploads and files read from disk.
const MaxSize = 10 << 20

// UnreadableDocumentError reports a resume that yields no text.
type UnreadableDocumentError struct {
	Name string
	Err  error
}

func (e *UnreadableDocumentError) Error() string {
	name := e.Name
	if name == "" {
		name = "document"
	}
	if e.Err == nil {
		return fmt.Sprintf("cannot read %s", name)
	}
	return fmt.Sprintf("cannot read %s: %v", name, e.Err)
}

func (e *UnreadableDocumentError) Unwrap() error {
	return e.Err
}

// ExtractText returns the plain text of a PDF document.
func ExtractText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &UnreadableDocumentError{Err: errors.New("file is empty")}
	}
	if len(data) > MaxSize {
		return "", &UnreadableDocumentError{Err: fmt.Errorf("file is larger than %d bytes", MaxSize)}
	}

	// the pdf package panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &UnreadableDocumentError{Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &UnreadableDocumentError{Err: err}
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", &UnreadableDocumentError{Err: err}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", &UnreadableDocumentError{Err: err}
	}

	text = normalize(buf.String())
	if text == "" {
		return "", &UnreadableDocumentError{Err: errors.New("no text found, the pdf may be a scanned image")}
	}

	return text, nil
}

// ReadFile extracts text from a .pdf file on disk.
func ReadFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	name := filepath.Base(path)

	if err := checkExtension(name); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &UnreadableDocumentError{Name: name, Err: err}
	}

	return Extract(name, data)
}

// Extract is ExtractText for an uploaded document: name must carry the .pdf
// extension and is reported in errors.
func Extract(name string, data []byte) (string, error) {
	if err := checkExtension(name); err != nil {
		return "", err
	}

	text, err := ExtractText(data)
	if err != nil {
		var unreadable *UnreadableDocumentError
		if errors.As(err, &unreadable) {
			unreadable.Name = name
		}
		return "", err
	}

	return text, nil
}

func checkExtension(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return &UnreadableDocumentError{Name: name, Err: errors.New("only .pdf files are supported")}
	}
	return nil
}

// normalize collapses runs of blank lines and trailing spaces left by the
// PDF text layer.
func normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
