package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/quillboard/internal/metrics"
	"github.com/hitoshi/quillboard/internal/model"
)

// logRequest はロギングミドルウェア越しにreqを処理し、出力された1件のアクセスログを返す。
func logRequest(t *testing.T, next http.Handler, req *http.Request) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewLoggingMiddleware(logger)(next).ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, buf.String())
	}
	return entry
}

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	})
}

// TestLoggingMiddleware_LogsRequestFields はアクセスログにメソッド、パス、ステータス、処理時間が含まれることを検証する。
func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	entry := logRequest(t, statusHandler(http.StatusOK), httptest.NewRequest(http.MethodPost, "/api/articles", nil))

	if entry["method"] != "POST" {
		t.Errorf("method = %q, want %q", entry["method"], "POST")
	}
	if entry["path"] != "/api/articles" {
		t.Errorf("path = %q, want %q", entry["path"], "/api/articles")
	}
	if entry["status"] != float64(200) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if d, ok := entry["duration_ms"].(float64); !ok || d < 0 {
		t.Errorf("duration_ms = %v, want non-negative number", entry["duration_ms"])
	}
	// 未認証リクエストではuser_idは空
	if val, ok := entry["user_id"]; ok && val != "" {
		t.Errorf("user_id should be empty for unauthenticated request, got %q", val)
	}
}

// TestLoggingMiddleware_UserID はユーザーIDが内側のミドルウェアで解決された場合も、事前に注入済みの場合も記録されることを検証する。
func TestLoggingMiddleware_UserID(t *testing.T) {
	t.Run("resolved by inner session middleware", func(t *testing.T) {
		auth := sessionAuth(map[string]*model.User{"s1": {ID: "user-123"}})
		inner := NewSessionMiddleware(auth)(statusHandler(http.StatusOK))

		entry := logRequest(t, inner, requestWithSession(http.MethodGet, "/auth/me", "s1"))
		if entry["user_id"] != "user-123" {
			t.Errorf("user_id = %q, want %q", entry["user_id"], "user-123")
		}
	})

	t.Run("already in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req = req.WithContext(ContextWithUser(context.Background(), &model.User{ID: "user-ctx"}))

		entry := logRequest(t, okHandler(), req)
		if entry["user_id"] != "user-ctx" {
			t.Errorf("user_id = %q, want %q", entry["user_id"], "user-ctx")
		}
	})
}

// TestLoggingMiddleware_CapturesStatusCode は明示的なWriteHeaderと暗黙の200の両方を記録することを検証する。
func TestLoggingMiddleware_CapturesStatusCode(t *testing.T) {
	tests := []struct {
		name    string
		handler http.Handler
		want    int
	}{
		{"201 Created", statusHandler(http.StatusCreated), 201},
		{"404 Not Found", statusHandler(http.StatusNotFound), 404},
		{"429 Too Many Requests", statusHandler(http.StatusTooManyRequests), 429},
		{"500 Internal Server Error", statusHandler(http.StatusInternalServerError), 500},
		{"implicit 200 on Write", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("hello"))
		}), 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := logRequest(t, tt.handler, httptest.NewRequest(http.MethodGet, "/test", nil))
			if status := int(entry["status"].(float64)); status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
		})
	}
}

type statusCollector struct {
	metrics.NopCollector
	codes []int
}

func (c *statusCollector) RecordHTTPStatus(code int) {
	c.codes = append(c.codes, code)
}

// TestMetricsMiddleware_RecordsStatus はレスポンスのステータスコードが記録されることを検証する。
func TestMetricsMiddleware_RecordsStatus(t *testing.T) {
	collector := &statusCollector{}
	handler := NewMetricsMiddleware(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if len(collector.codes) != 2 || collector.codes[0] != 200 || collector.codes[1] != 404 {
		t.Errorf("recorded codes = %v, want [200 404]", collector.codes)
	}
}
