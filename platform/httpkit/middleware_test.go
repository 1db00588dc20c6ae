package httpkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cep_lookup/platform/apperr"
	"cep_lookup/platform/logger"

	"github.com/gin-gonic/gin"
)

func newEngine(log *logger.Logger, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), RequestLogger(log), SecurityHeaders())
	engine.GET("/", handlers...)
	return engine
}

func TestRequestIDReachesLogs(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(logger.NewWithWriter("production", &buf), func(c *gin.Context) {
		OK(c, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	id := rec.Header().Get(RequestIDHeader)
	if id == "" || id == "not-a-uuid" {
		t.Fatalf("expected a fresh request id, got %q", id)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "http_request" || entry["request_id"] != id {
		t.Fatalf("unexpected log entry %v", entry)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers")
	}
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", apperr.Validation("bad input"), http.StatusBadRequest, "bad input"},
		{"wrapped unavailable", errors.Join(errors.New("ctx"), apperr.Unavailable("upstream down", nil)), http.StatusBadGateway, "upstream down"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newEngine(logger.Discard(), func(c *gin.Context) {
				HandleError(c, tc.err)
			})
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tc.status || !strings.Contains(rec.Body.String(), tc.msg) {
				t.Fatalf("expected %d %q, got %d %s", tc.status, tc.msg, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRateLimitPerIP(t *testing.T) {
	limiter := NewPerMinuteLimiter(2, logger.Discard())
	engine := newEngine(logger.Discard(), limiter.RateLimit(), func(c *gin.Context) {
		OK(c, gin.H{"ok": true})
	})

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other IP should not be limited, got %d", code)
	}
}
