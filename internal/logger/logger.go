// Package logger はJSON構造化ログのセットアップを提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// writerが指定された場合はそのwriterに出力する。
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerがnilの場合はos.Stderrに出力する。
// サブコマンドの描画結果はstdoutに出すため、ログはstderr側に寄せる。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger := Setup(w, slog.LevelInfo)
	slog.SetDefault(logger)
}
