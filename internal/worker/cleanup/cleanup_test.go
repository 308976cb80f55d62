package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hitoshi/quillboard/internal/metrics"
	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/repository"
	"github.com/hitoshi/quillboard/internal/store"
)

// mockPurger はSessionPurgerのモック実装。
type mockPurger struct {
	calls    atomic.Int32
	deleteFn func(ctx context.Context) (int64, error)
}

func (m *mockPurger) DeleteExpired(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	if m.deleteFn != nil {
		return m.deleteFn(ctx)
	}
	return 0, nil
}

// purgeCollector は削除件数の記録を保持するメトリクスのモック。
type purgeCollector struct {
	metrics.NopCollector
	purged []int64
}

func (c *purgeCollector) RecordSessionsPurged(count int64) {
	c.purged = append(c.purged, count)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// TestRun_PurgesExpiredSessions はインメモリストア上で期限切れセッションのみが削除されることを検証する。
func TestRun_PurgesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	sessions := repository.NewStoreSessionRepo(store.NewMemoryStore())

	now := time.Now()
	for _, s := range []*model.Session{
		{ID: "expired-1", UserID: "u1", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "expired-2", UserID: "u2", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)},
		{ID: "active", UserID: "u3", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
	} {
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	collector := &purgeCollector{}
	job := NewCleanupJob(sessions, newTestLogger(&buf), collector)

	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got, _ := sessions.FindByID(ctx, "active"); got == nil {
		t.Error("active session must survive cleanup")
	}
	if got, _ := sessions.FindByID(ctx, "expired-1"); got != nil {
		t.Error("expired session must be deleted")
	}
	if len(collector.purged) != 1 || collector.purged[0] != 2 {
		t.Errorf("purged metrics = %v, want [2]", collector.purged)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log is not JSON: %v", err)
	}
	if entry["deleted_count"] != float64(2) {
		t.Errorf("deleted_count = %v, want 2", entry["deleted_count"])
	}

	// 2回目は削除対象がなくてもエラーにならない
	if err := job.Run(ctx); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if collector.purged[1] != 0 {
		t.Errorf("second run purged %d, want 0", collector.purged[1])
	}
}

// TestRun_Error は削除失敗時にエラーを返し、ログに記録することを検証する。
func TestRun_Error(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{
		deleteFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	collector := &purgeCollector{}
	job := NewCleanupJob(purger, newTestLogger(&buf), collector)

	err := job.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("Run() error = %v, want wrapped connection error", err)
	}
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("error must be logged, got %s", buf.String())
	}
	if len(collector.purged) != 0 {
		t.Error("failed run must not record purge metrics")
	}
}

// TestStart_RunsImmediatelyAndStopsOnCancel は起動直後の実行と周期実行、キャンセルでの終了を検証する。
func TestStart_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{}
	job := NewCleanupJob(purger, newTestLogger(&buf), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for purger.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 runs, got %d", purger.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
