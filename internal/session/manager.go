// Package session は認証トークンのライフサイクル管理を提供する。
// ログイン、シークレットストアへの永続化、復元、ログアウトを扱う。
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/luxsuv/luxsuv-driver/internal/api"
	"github.com/luxsuv/luxsuv-driver/internal/model"
)

// LoginAPI はログインエンドポイント呼び出しのインターフェース。
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
}

// SecretStore はトークン永続化のインターフェース。
// 実装はキー1件（jwt_token）のセキュアなキーバリューストアであればよい。
type SecretStore interface {
	SaveToken(token string) error
	Token() (string, bool)
	DeleteToken() error
}

// Manager は認証状態とトークンのライフサイクルを管理する。
//
// 状態遷移: uninitialized → Restore() → {unauthenticated | authenticated}。
// Login()はunauthenticated→authenticatedの遷移だが、認証済み状態での
// 再ログインはトークンの上書き（再認証）として扱う。
// Logout()はauthenticated→unauthenticatedの遷移。
type Manager struct {
	api    LoginAPI
	store  SecretStore
	logger *slog.Logger

	mu            sync.Mutex
	authenticated bool
	driver        *model.Driver
	restored      bool
}

// NewManager はManagerの新しいインスタンスを生成する。
func NewManager(loginAPI LoginAPI, store SecretStore, logger *slog.Logger) *Manager {
	return &Manager{
		api:    loginAPI,
		store:  store,
		logger: logger,
	}
}

// Restore は起動時にシークレットストアからトークンを読み込み、認証状態を復元する。
// 空でないトークンが見つかればサーバーに再検証せず認証済みとする。
// トークンが無い場合は通常の「ログアウト状態」でありエラーではない。
// 成否に関わらず必ず完了し、復元処理の完了を1回だけ確定させる。
func (m *Manager) Restore() {
	token, ok := m.store.Token()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.authenticated = ok && token != ""
	m.restored = true

	m.logger.Info("セッションを復元しました",
		slog.Bool("authenticated", m.authenticated),
	)
}

// Restored は復元処理が完了しているかどうかを返す。
func (m *Manager) Restored() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restored
}

// IsAuthenticated は現在の認証状態を返す。
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// Driver はログイン時に取得したドライバープロフィールを返す。
// プロフィールは任意のメタデータであり、トークンのみ保持している場合はnil。
func (m *Manager) Driver() *model.Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.driver
}

// Login は認証情報でログインし、成功時にトークンを永続化して認証済み状態にする。
// 入力は前後の空白を除去した上で空でないことを要求する。
// 失敗時は認証状態を一切変更しない。シークレットストアへの書き込みは成功時の1回のみ。
func (m *Manager) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return model.NewInvalidInputError("Username and password are required")
	}

	result, err := m.api.Login(ctx, username, password)
	if err != nil {
		m.logger.Warn("ログインに失敗しました",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := m.store.SaveToken(result.Token); err != nil {
		// トークンを永続化できなければ認証済みにはしない
		m.logger.Error("トークンの保存に失敗しました",
			slog.String("error", err.Error()),
		)
		return model.NewSecretStoreError(err.Error())
	}

	m.mu.Lock()
	m.authenticated = true
	m.driver = result.Driver
	m.mu.Unlock()

	m.logger.Info("ログインしました",
		slog.String("username", username),
	)
	return nil
}

// Logout はシークレットストアのトークンを削除し、メモリ上の認証状態をクリアする。
// エントリが存在しない場合の削除もエラーにしない。
func (m *Manager) Logout() {
	if err := m.store.DeleteToken(); err != nil {
		m.logger.Error("トークンの削除に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	m.mu.Lock()
	m.authenticated = false
	m.driver = nil
	m.mu.Unlock()

	m.logger.Info("ログアウトしました")
}

// Token は保存済みトークンを返す。
// シークレットストアの読み取り失敗は「トークンなし」として扱い、致命的エラーにしない。
func (m *Manager) Token() (string, bool) {
	return m.store.Token()
}

// TokenExpiry は保存済みJWTのexpクレームを検証なしでデコードして返す。
// 表示用途のみに使用し、認証状態の判定には使わない。
// トークンが無い場合、JWTとしてパースできない場合、expが無い場合はfalseを返す。
func (m *Manager) TokenExpiry() (time.Time, bool) {
	token, ok := m.store.Token()
	if !ok {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
