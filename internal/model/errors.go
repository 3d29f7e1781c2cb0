// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示するメッセージと原因カテゴリ、対処方法を含む。
// Messageはそのままユーザーに表示される（サーバーがmessageを返した場合はその文言を優先する）。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（ユーザー表示用）
	Category string // カテゴリ: auth, transport, server, decode, validation
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthMissing    = "AUTH_MISSING"
	ErrCodeTransportError = "TRANSPORT_FAILED"
	ErrCodeServerRejected = "SERVER_REJECTED"
	ErrCodeDecodeFailed   = "DECODE_FAILED"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeSecretStore    = "SECRET_STORE_FAILED"
)

// NewAuthMissingError はトークン未保存時のエラーを生成する。
// 認証が必要な操作はこのエラーでネットワークI/Oの前に打ち切られる。
func NewAuthMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthMissing,
		Message:  "No authentication token found",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewTransportError はDNS解決・接続・タイムアウト等のトランスポート層エラーを生成する。
// Messageには下位トランスポートのエラー内容をそのまま使用する。
func NewTransportError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeTransportError,
		Message:  reason,
		Category: "transport",
		Action:   "通信環境を確認し、しばらく待ってから再度お試しください。",
	}
}

// NewServerRejectedError は非2xxレスポンスのエラーを生成する。
// サーバーがmessageフィールドを返した場合はその文言をそのまま使用する。
func NewServerRejectedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeServerRejected,
		Message:  message,
		Category: "server",
		Action:   "内容を確認して再度お試しください。",
	}
}

// NewDecodeFailedError はレスポンスボディが期待した形式でない場合のエラーを生成する。
func NewDecodeFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeDecodeFailed,
		Message:  "Failed to parse rides data. Please check the API response format.",
		Category: "decode",
		Action:   "バックエンドのバージョンを確認してください。",
	}
}

// NewInvalidInputError は入力バリデーションエラーを生成する。
func NewInvalidInputError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewSecretStoreError はシークレットストアへの書き込み失敗エラーを生成する。
func NewSecretStoreError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeSecretStore,
		Message:  fmt.Sprintf("Failed to save token: %s", reason),
		Category: "auth",
		Action:   "設定ディレクトリの権限を確認してください。",
	}
}
