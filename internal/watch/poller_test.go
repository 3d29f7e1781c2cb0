package watch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// mockSyncer はSyncerのテスト用モック。
type mockSyncer struct {
	calls   atomic.Int64
	err     error
	onFetch func()
}

func (m *mockSyncer) Fetch(ctx context.Context) error {
	m.calls.Add(1)
	if m.onFetch != nil {
		m.onFetch()
	}
	return m.err
}

func newTestLogger() *slog.Logger {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil))
}

// TestPoller_RunsImmediatelyOnStart は起動直後に1回同期が実行されることを検証する。
func TestPoller_RunsImmediatelyOnStart(t *testing.T) {
	syncer := &mockSyncer{}
	ctx, cancel := context.WithCancel(context.Background())
	// 最初の同期が走ったらすぐ停止する
	syncer.onFetch = func() { cancel() }

	p := NewPoller(syncer, newTestLogger())

	done := make(chan struct{})
	go func() {
		p.Start(ctx, time.Hour)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ポーリングが停止しなかった")
	}

	if got := syncer.calls.Load(); got != 1 {
		t.Errorf("同期回数 = %d, want 1", got)
	}
}

// TestPoller_ContinuesAfterSyncFailure は同期失敗後もポーリングが継続することを検証する。
func TestPoller_ContinuesAfterSyncFailure(t *testing.T) {
	syncer := &mockSyncer{err: errors.New("boom")}
	ctx, cancel := context.WithCancel(context.Background())
	syncer.onFetch = func() {
		// 起動時の1回とティック2回で停止
		if syncer.calls.Load() >= 3 {
			cancel()
		}
	}

	p := NewPoller(syncer, newTestLogger())

	done := make(chan struct{})
	go func() {
		p.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ポーリングが停止しなかった")
	}

	if got := syncer.calls.Load(); got < 3 {
		t.Errorf("同期回数 = %d, want >= 3", got)
	}
}

// TestPoller_StopsOnContextCancel はコンテキストキャンセルで停止することを検証する。
func TestPoller_StopsOnContextCancel(t *testing.T) {
	syncer := &mockSyncer{}
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPoller(syncer, newTestLogger())

	done := make(chan struct{})
	go func() {
		p.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("キャンセル後もポーリングが停止しなかった")
	}
}
