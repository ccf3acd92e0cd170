package ingest

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestWrapForStreaming(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain ascii", []byte("a,b\n1,2\n"), "a,b\n1,2\n"},
		{"bom stripped", []byte("\xEF\xBB\xBFa,b\n"), "a,b\n"},
		{"bom only", []byte("\xEF\xBB\xBF"), ""},
		{"multibyte kept", []byte("Placement,Café\n"), "Placement,Café\n"},
		{"invalid byte replaced", []byte("a\xffb"), "a\ufffdb"},
		{"truncated sequence at eof replaced", []byte("ab\xC3"), "ab\ufffd"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, counter := WrapForStreaming(bytes.NewReader(tt.input))
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
			if counter.BytesRead() != int64(len(tt.input)) {
				t.Errorf("BytesRead() = %d, want %d", counter.BytesRead(), len(tt.input))
			}
		})
	}
}

func TestWrapForStreaming_SplitMultibyte(t *testing.T) {
	// One byte per Read splits "é" across reads; it must survive intact.
	input := "\xEF\xBB\xBFmunicipality\nSão Paulo\n"
	r, _ := WrapForStreaming(iotest.OneByteReader(strings.NewReader(input)))

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if want := "municipality\nSão Paulo\n"; string(got) != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
