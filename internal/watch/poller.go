// Package watch は配車一覧の定期同期を提供する。
// 一定間隔のティッカーでシンクロナイザーの取得処理を起動する。
package watch

import (
	"context"
	"log/slog"
	"time"
)

// Syncer は1回分の同期実行インターフェース。
// 配車シンクロナイザーが実装する。
type Syncer interface {
	Fetch(ctx context.Context) error
}

// Poller は配車一覧の定期同期を行う。
type Poller struct {
	syncer Syncer
	logger *slog.Logger
}

// NewPoller はPollerの新しいインスタンスを生成する。
func NewPoller(syncer Syncer, logger *slog.Logger) *Poller {
	return &Poller{
		syncer: syncer,
		logger: logger,
	}
}

// Start は指定間隔のティッカーでポーリングを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
// 同期の失敗はログに記録して次のティックまで待つ。一覧は
// シンクロナイザー側で保持されるため、失敗でポーリングは止めない。
func (p *Poller) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("配車ポーリングを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	if err := p.syncer.Fetch(ctx); err != nil {
		p.logger.Error("配車同期に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("配車ポーリングを停止しました")
			return
		case <-ticker.C:
			if err := p.syncer.Fetch(ctx); err != nil {
				p.logger.Error("配車同期に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
