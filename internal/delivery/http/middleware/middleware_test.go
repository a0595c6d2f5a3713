package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, 2, time.Minute, time.Minute)
	defer rl.Shutdown()
	h := rl.Middleware()(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client got %d", rec.Code)
	}
}

func TestRateLimiter_ExemptPaths(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, 1, time.Minute, time.Minute, "/health", "/images/")
	defer rl.Shutdown()
	h := rl.Middleware()(okHandler)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/products", http.StatusOK},
		{"/api/v1/products", http.StatusTooManyRequests},
		{"/health", http.StatusOK},
		{"/images/FUMEPRO30K/miami_mint.png", http.StatusOK},
		{"/images/FUMEPRO30K/miami_mint.png", http.StatusOK},
		{"/api/v1/stores", http.StatusTooManyRequests},
	}
	for i, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		req.RemoteAddr = "10.0.0.9:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("request %d %s: got %d, want %d", i, tt.path, rec.Code, tt.want)
		}
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, 1, time.Hour, time.Nanosecond)
	defer rl.Shutdown()
	rl.allow("10.0.0.1")
	time.Sleep(time.Millisecond)
	rl.sweep()
	rl.mu.Lock()
	n := len(rl.visitors)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("visitors = %d after sweep, want 0", n)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	h := RequestLogger(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if id := rec.Header().Get("X-Request-ID"); len(id) != 8 {
		t.Errorf("X-Request-ID = %q, want 8 chars", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if id := rec.Header().Get("X-Request-ID"); id != "upstream-1" {
		t.Errorf("X-Request-ID = %q, want upstream-1", id)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded chain", "203.0.113.5, 10.0.0.1", "", "10.0.0.9:80", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.9:80", "198.51.100.7"},
		{"remote addr", "", "", "192.0.2.1:4444", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCORS(t *testing.T) {
	h := NewCORS("https://shop.example.com, https://admin.example.com")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Errorf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}
}
