package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init() // must not panic on re-registration
}

func TestInstrumentPreservesResponse(t *testing.T) {
	Init()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/profile", nil)
	Instrument(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestStatusWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, code: 200}
	_, _ = sw.Write([]byte("ok"))
	if sw.code != 200 {
		t.Fatalf("unexpected implicit status: %d", sw.code)
	}
}
