// Package api はLuxSUVバックエンドのHTTPクライアントを提供する。
// ログイン、配車一覧取得、配車更新、配車削除の4エンドポイントを扱い、
// エラーボディ（{message, error?}）のデコードとエラー分類を行う。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/luxsuv/luxsuv-driver/internal/model"
)

// userAgent は全リクエストに付与するUser-Agentヘッダー。
const userAgent = "LuxSUVDriver/1.0 Go Client"

// MetricsRecorder はHTTPリクエストのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(d time.Duration)
}

// Client はLuxSUVバックエンドAPIのクライアント。
// すべての配車操作はBearerトークンによる認証が必要で、トークンは呼び出し側が渡す。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    MetricsRecorder // nilの場合は記録しない
}

// NewClient はClientの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger, metrics MetricsRecorder) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
		metrics:    metrics,
	}
}

// LoginResult はログイン成功時のレスポンスを表す。
type LoginResult struct {
	Token  string
	Driver *model.Driver
}

// Login は認証情報をログインエンドポイントに送信する。
// 2xx系レスポンスでトークンと任意のドライバープロフィールを返す。
// 失敗時はサーバーのmessageを優先し、無ければ"Login failed"を返す。
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, data, err := c.do(ctx, http.MethodPost, "/driver/login", "", body)
	if err != nil {
		return nil, err
	}

	if !is2xx(resp.StatusCode) {
		return nil, serverError(data, "Login failed")
	}

	var lr loginResponse
	if err := json.Unmarshal(data, &lr); err != nil || lr.Token == "" {
		c.logger.Error("ログインレスポンスのパースに失敗しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewDecodeFailedError()
	}

	return &LoginResult{Token: lr.Token, Driver: lr.Driver.toModel()}, nil
}

// ListRides はドライバーに割り当てられた配車一覧を取得する。
// レスポンスのsnake_caseフィールドをRideエンティティにマッピングして返す。
// 一覧エンドポイントはstatusを返さないため全件requestedに固定し、
// fare/distance/durationは常に未設定とする。
func (c *Client) ListRides(ctx context.Context, token string) ([]model.Ride, error) {
	resp, data, err := c.do(ctx, http.MethodGet, "/driver/book-rides", token, nil)
	if err != nil {
		return nil, err
	}

	if !is2xx(resp.StatusCode) {
		return nil, serverError(data, fmt.Sprintf("Failed to fetch rides (Status: %d)", resp.StatusCode))
	}

	var dtos []rideDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		c.logger.Error("配車一覧レスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewDecodeFailedError()
	}

	rides := make([]model.Ride, 0, len(dtos))
	for _, dto := range dtos {
		rides = append(rides, dto.toRide())
	}
	return rides, nil
}

// UpdateRide は配車のステータスとメモを更新する。
func (c *Client) UpdateRide(ctx context.Context, token, id string, status model.RideStatus, notes string) error {
	body, err := json.Marshal(rideUpdateRequest{Status: status, Notes: notes})
	if err != nil {
		return fmt.Errorf("failed to encode update request: %w", err)
	}

	resp, data, err := c.do(ctx, http.MethodPut, "/driver/book-ride/"+id, token, body)
	if err != nil {
		return err
	}

	if !is2xx(resp.StatusCode) {
		return serverError(data, fmt.Sprintf("Failed to update ride (Status: %d)", resp.StatusCode))
	}
	return nil
}

// DeleteRide は配車を削除（キャンセル）する。ボディは送らない。
func (c *Client) DeleteRide(ctx context.Context, token, id string) error {
	resp, data, err := c.do(ctx, http.MethodDelete, "/driver/book-ride/"+id, token, nil)
	if err != nil {
		return err
	}

	if !is2xx(resp.StatusCode) {
		return serverError(data, fmt.Sprintf("Failed to delete ride (Status: %d)", resp.StatusCode))
	}
	return nil
}

// do はHTTPリクエストを実行し、レスポンスとボディを返す。
// トランスポート層の失敗は*model.APIError（transportカテゴリ）として返す。
// 相関用のリクエストIDを採番してログとX-Request-IDヘッダーに付与する。
func (c *Client) do(ctx context.Context, method, path, token string, body []byte) (*http.Response, []byte, error) {
	requestID := uuid.New().String()
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("HTTPリクエストに失敗しました",
			slog.String("request_id", requestID),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, nil, model.NewTransportError(err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return nil, nil, model.NewTransportError(err.Error())
	}

	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordHTTPStatus(resp.StatusCode)
		c.metrics.RecordRequestLatency(duration)
	}

	c.logger.Debug("APIリクエストが完了しました",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("http_status", resp.StatusCode),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return resp, data, nil
}

// is2xx はステータスコードが成功クラスかどうかを判定する。
func is2xx(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// serverError は非2xxレスポンスを*model.APIErrorに変換する。
// エラーボディのmessageフィールドをパースできた場合はその文言をそのまま使用し、
// パースできない場合はfallbackの汎用メッセージを使用する。
func serverError(data []byte, fallback string) *model.APIError {
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return model.NewServerRejectedError(body.Message)
	}
	return model.NewServerRejectedError(fallback)
}
