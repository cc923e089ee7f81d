package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/vetimport/internal/config"
	"github.com/JonMunkholm/vetimport/internal/logging"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name    string
		require bool
		key     string
		want    int
	}{
		{"disabled", false, "", http.StatusNoContent},
		{"missing key", true, "", http.StatusUnauthorized},
		{"wrong key", true, "nope", http.StatusForbidden},
		{"first key", true, "alpha", http.StatusNoContent},
		{"second key", true, "bravo", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.SecurityConfig{RequireAPIKey: tt.require, APIKeys: []string{"alpha", "bravo"}}
			h := APIKeyAuth(cfg)(ok)

			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remote     string
		realIP     string
		forwarded  string
		wantRemote string
	}{
		{"no proxies configured", nil, "203.0.113.5:1234", "1.2.3.4", "", "203.0.113.5:1234"},
		{"untrusted peer", []string{"10.0.0.0/8"}, "203.0.113.5:1234", "1.2.3.4", "", "203.0.113.5:1234"},
		{"trusted peer real ip", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "1.2.3.4", "", "1.2.3.4"},
		{"trusted peer forwarded chain", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "", "5.6.7.8, 10.1.2.3", "5.6.7.8"},
		{"single address entry", []string{"127.0.0.1"}, "127.0.0.1:80", "9.9.9.9", "", "9.9.9.9"},
		{"invalid header ignored", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "not-an-ip", "", "10.1.2.3:1234"},
		{"invalid cidr skipped", []string{"bogus"}, "10.1.2.3:1234", "1.2.3.4", "", "10.1.2.3:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.wantRemote {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.wantRemote)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	out := buf.String()
	for _, want := range []string{"path=/api/stats", "status=418", "bytes=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
