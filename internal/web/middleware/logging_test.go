package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogger_PassesThroughStatusAndFlush(t *testing.T) {
	var flushed bool
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("wrapped writer does not implement http.Flusher")
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("line\n"))
		f.Flush()
		flushed = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/photos/import", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if !flushed || !rec.Flushed {
		t.Error("Flush was not forwarded to the underlying writer")
	}
	if rec.Body.String() != "line\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestResponseWriter_CountsBytes(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rw.Write([]byte("abc"))
	rw.Write([]byte("de"))
	rw.WriteHeader(http.StatusTeapot)

	if rw.bytes != 5 {
		t.Errorf("bytes = %d, want 5", rw.bytes)
	}
	if rw.status != http.StatusOK {
		t.Errorf("status = %d, want first written status %d", rw.status, http.StatusOK)
	}
}
