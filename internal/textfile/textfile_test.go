package textfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeUTF8WithSignature(t *testing.T) {
	data := append([]byte{0xef, 0xbb, 0xbf}, []byte("SELECT 1")...)
	text, err := Decode("export.sql", data, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text != "SELECT 1" {
		t.Errorf("BOM not stripped, got %q", text)
	}
}

func TestDecodePlainUTF8(t *testing.T) {
	text, err := Decode("export.sql", []byte("SELECT 'café'"), nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text != "SELECT 'café'" {
		t.Errorf("got %q", text)
	}
}

func TestDecodeLatin1Fallback(t *testing.T) {
	// 0xe9 is é in Latin-1 but invalid as a standalone UTF-8 byte.
	data := []byte{'c', 'a', 'f', 0xe9}
	text, err := Decode("export.sql", data, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text != "café" {
		t.Errorf("Latin-1 fallback produced %q, want %q", text, "café")
	}
}

func TestDecodeErrorNamesAttemptedEncodings(t *testing.T) {
	data := []byte{0xff, 0xfe, 0x00}
	_, err := Decode("export.sql", data, []string{"utf-8-sig", "utf-8"})
	if err == nil {
		t.Fatal("expected a decode error for invalid UTF-8 with a restricted encoding list")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	msg := err.Error()
	for _, enc := range []string{"utf-8-sig", "utf-8"} {
		if !strings.Contains(msg, enc) {
			t.Errorf("error message %q does not name attempted encoding %s", msg, enc)
		}
	}
	if !strings.Contains(msg, "export.sql") {
		t.Errorf("error message %q does not name the file", msg)
	}
}

func TestDecodeCP1252ByName(t *testing.T) {
	// 0x93/0x94 are curly quotes in Windows-1252.
	data := []byte{0x93, 'h', 'i', 0x94}
	text, err := Decode("export.sql", data, []string{"cp1252"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text != "“hi”" {
		t.Errorf("cp1252 decode produced %q", text)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.sql"), nil)
	if !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.sql")
	if err := os.WriteFile(path, []byte("=== STORED PROCEDURE START ===\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err := Read(path, nil)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !strings.HasPrefix(text, "=== STORED PROCEDURE START ===") {
		t.Errorf("unexpected content %q", text)
	}
}
