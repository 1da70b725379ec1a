// Package textfile reads export files with an ordered list of encoding
// fallbacks. Database exports arrive in whatever encoding the exporting
// tool produced, most commonly UTF-8 with a BOM.
package textfile

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DefaultEncodings is the fallback order tried by Read when the caller
// supplies none: UTF-8 with signature, plain UTF-8, then Latin-1.
var DefaultEncodings = []string{"utf-8-sig", "utf-8", "latin-1"}

// DecodeError reports that no attempted encoding could decode a file.
type DecodeError struct {
	Path      string
	Encodings []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: tried encodings %s", e.Path, strings.Join(e.Encodings, ", "))
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Read loads a file and decodes it via the encoding fallback list.
// File-system errors pass through unwrapped so callers can distinguish a
// missing input from a *DecodeError.
func Read(path string, encodings []string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(path, data, encodings)
}

// Decode converts raw file bytes to a string, trying each encoding in
// order. The path is only used for error reporting.
func Decode(path string, data []byte, encodings []string) (string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	for _, name := range encodings {
		if text, ok := decode(data, name); ok {
			return text, nil
		}
	}
	return "", &DecodeError{Path: path, Encodings: append([]string(nil), encodings...)}
}

func decode(data []byte, name string) (string, bool) {
	switch strings.ToLower(name) {
	case "utf-8-sig":
		if !bytes.HasPrefix(data, utf8BOM) {
			return "", false
		}
		body := data[len(utf8BOM):]
		if !utf8.Valid(body) {
			return "", false
		}
		return string(body), true
	case "utf-8":
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	case "latin-1", "iso-8859-1":
		return decodeCharmap(data, charmap.ISO8859_1)
	case "cp1252", "windows-1252":
		return decodeCharmap(data, charmap.Windows1252)
	default:
		// Unknown encoding names never match; they still show up in the
		// DecodeError so a typo in --encoding is visible.
		return "", false
	}
}

func decodeCharmap(data []byte, cm *charmap.Charmap) (string, bool) {
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}
