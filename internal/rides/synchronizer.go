// Package rides は配車コレクションの同期を提供する。
// クライアント側の配車一覧の正を保持し、リモートの取得・更新・削除を仲介して、
// 日付別・今後の配車などの派生ビューを公開する。
package rides

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/luxsuv/luxsuv-driver/internal/model"
)

// API はバックエンドの配車エンドポイント呼び出しのインターフェース。
type API interface {
	ListRides(ctx context.Context, token string) ([]model.Ride, error)
	UpdateRide(ctx context.Context, token, id string, status model.RideStatus, notes string) error
	DeleteRide(ctx context.Context, token, id string) error
}

// TokenSource は認証トークン取得のインターフェース。
// セッションマネージャーが実装する。
type TokenSource interface {
	Token() (string, bool)
}

// MetricsRecorder は同期処理のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordSyncSuccess(rideCount int)
	RecordSyncFailure(reason string)
	RecordMutation(operation string, success bool)
}

// Observer は状態変化の通知を受け取るコールバック。
// 状態変更のたびに同期的に呼び出される。
type Observer func()

// Synchronizer はクライアント側の配車一覧の唯一の所有者。
//
// 一覧はサーバーのレスポンス順のまま保持する（取得時の再ソートはしない）。
// 取得成功は常に全件置き換えであり、差分マージはしない。取得失敗時は
// 既存の一覧をそのまま残す（古いデータの方が空よりも良い）。
//
// 複数ゴルーチンからの呼び出しに備えて状態はミューテックスで直列化するが、
// 取得処理同士の相互排他はしない。並行する取得は両方完了し、
// 後から到着したレスポンスが一覧を上書きする（last-response-wins）。
type Synchronizer struct {
	api     API
	tokens  TokenSource
	logger  *slog.Logger
	metrics MetricsRecorder // nilの場合は記録しない

	mu        sync.Mutex
	rides     []model.Ride
	loading   bool
	lastError string
	observers []Observer

	// onMutationSuccess は更新・削除成功後に呼ばれるフック。
	// デフォルトは全件再取得。同期ポリシーを差し替え可能にするため
	// 各ミューテーションメソッドには埋め込まない。
	onMutationSuccess func(ctx context.Context)

	now func() time.Time // テスト用に差し替え可能
}

// NewSynchronizer はSynchronizerの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewSynchronizer(backend API, tokens TokenSource, logger *slog.Logger, metrics MetricsRecorder) *Synchronizer {
	s := &Synchronizer{
		api:     backend,
		tokens:  tokens,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
	s.onMutationSuccess = func(ctx context.Context) {
		// ミューテーション結果は楽観的に反映せず、サーバーから再取得して正を得る
		_ = s.Fetch(ctx)
	}
	return s
}

// SetMutationHook はミューテーション成功後のフックを差し替える。
func (s *Synchronizer) SetMutationHook(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMutationSuccess = fn
}

// Subscribe は状態変化のオブザーバーを登録する。
func (s *Synchronizer) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Fetch は配車一覧をバックエンドから取得し、メモリ上の一覧を全件置き換える。
//
// トークンが無い場合はネットワークに接続せずに認証エラーを設定して返す。
// 失敗時（非2xx・トランスポートエラー・デコード失敗）はlastErrorを設定し、
// 既存の一覧には触れない。isLoadingはどの分岐でも必ずクリアされる。
func (s *Synchronizer) Fetch(ctx context.Context) error {
	token, ok := s.tokens.Token()
	if !ok {
		apiErr := model.NewAuthMissingError()
		s.mu.Lock()
		s.lastError = apiErr.Message
		s.mu.Unlock()
		s.notify()

		s.recordSyncFailure("auth_missing")
		return apiErr
	}

	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
	s.notify()

	start := s.now()
	fetched, err := s.api.ListRides(ctx, token)
	duration := time.Since(start)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastError = errorMessage(err)
		s.mu.Unlock()
		s.notify()

		s.logger.Error("配車一覧の取得に失敗しました",
			slog.String("error", err.Error()),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		s.recordSyncFailure(errorCategory(err))
		return err
	}

	s.rides = fetched
	s.mu.Unlock()
	s.notify()

	s.logger.Info("配車一覧を同期しました",
		slog.Int("ride_count", len(fetched)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)
	if s.metrics != nil {
		s.metrics.RecordSyncSuccess(len(fetched))
	}
	return nil
}

// Update は配車のステータスとメモを更新する。
// 成功時はミューテーションフック（デフォルトで全件再取得）を実行する。
// 失敗時はlastErrorを設定し、再取得しない。
func (s *Synchronizer) Update(ctx context.Context, id string, status model.RideStatus, notes string) error {
	token, ok := s.tokens.Token()
	if !ok {
		apiErr := model.NewAuthMissingError()
		s.mu.Lock()
		s.lastError = apiErr.Message
		s.mu.Unlock()
		s.notify()

		s.recordMutation("update", false)
		return apiErr
	}

	if err := s.api.UpdateRide(ctx, token, id, status, notes); err != nil {
		s.mu.Lock()
		s.lastError = errorMessage(err)
		s.mu.Unlock()
		s.notify()

		s.logger.Warn("配車の更新に失敗しました",
			slog.String("ride_id", id),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
		s.recordMutation("update", false)
		return err
	}

	s.logger.Info("配車を更新しました",
		slog.String("ride_id", id),
		slog.String("status", string(status)),
	)
	s.recordMutation("update", true)

	s.mu.Lock()
	hook := s.onMutationSuccess
	s.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}
	return nil
}

// Delete は配車を削除（キャンセル）する。契約はUpdateと同じで、ボディは送らない。
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	token, ok := s.tokens.Token()
	if !ok {
		apiErr := model.NewAuthMissingError()
		s.mu.Lock()
		s.lastError = apiErr.Message
		s.mu.Unlock()
		s.notify()

		s.recordMutation("delete", false)
		return apiErr
	}

	if err := s.api.DeleteRide(ctx, token, id); err != nil {
		s.mu.Lock()
		s.lastError = errorMessage(err)
		s.mu.Unlock()
		s.notify()

		s.logger.Warn("配車の削除に失敗しました",
			slog.String("ride_id", id),
			slog.String("error", err.Error()),
		)
		s.recordMutation("delete", false)
		return err
	}

	s.logger.Info("配車を削除しました",
		slog.String("ride_id", id),
	)
	s.recordMutation("delete", true)

	s.mu.Lock()
	hook := s.onMutationSuccess
	s.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}
	return nil
}

// Snapshot は現在の一覧の読み取り専用コピーを返す。
func (s *Synchronizer) Snapshot() []model.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Ride, len(s.rides))
	copy(out, s.rides)
	return out
}

// IsLoading は取得処理が進行中かどうかを返す。
func (s *Synchronizer) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError は直近の操作のエラーメッセージを返す。エラーが無ければ空文字列。
func (s *Synchronizer) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// RidesForDate は指定した日付（"2006-01-02"形式）の配車のみを返す。
// 日付文字列の完全一致で判定し、時刻は考慮しない。
func (s *Synchronizer) RidesForDate(date string) []model.Ride {
	out := make([]model.Ride, 0)
	for _, r := range s.Snapshot() {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// UpcomingRides は乗車日時が未来かつステータスがrequestedまたはacceptedの
// 配車を、乗車日時の昇順で返す。日時をパースできない配車は除外する。
// 同時刻の順序は安定ソートに任せる。
func (s *Synchronizer) UpcomingRides() []model.Ride {
	now := s.now()

	type withTime struct {
		ride model.Ride
		at   time.Time
	}

	upcoming := make([]withTime, 0)
	for _, r := range s.Snapshot() {
		if r.Status != model.StatusRequested && r.Status != model.StatusAccepted {
			continue
		}
		at, ok := r.PickupAt()
		if !ok || !at.After(now) {
			continue
		}
		upcoming = append(upcoming, withTime{ride: r, at: at})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].at.Before(upcoming[j].at)
	})

	out := make([]model.Ride, len(upcoming))
	for i, u := range upcoming {
		out[i] = u.ride
	}
	return out
}

// TodayCount は今日の日付の配車件数を返す。
func (s *Synchronizer) TodayCount() int {
	today := s.now().Format("2006-01-02")
	return len(s.RidesForDate(today))
}

// notify は登録済みオブザーバーを同期的に呼び出す。
// オブザーバーがSnapshot等を呼べるように、ロックを保持せずに実行する。
func (s *Synchronizer) notify() {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

func (s *Synchronizer) recordSyncFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordSyncFailure(reason)
	}
}

func (s *Synchronizer) recordMutation(operation string, success bool) {
	if s.metrics != nil {
		s.metrics.RecordMutation(operation, success)
	}
}

// errorMessage はエラーからユーザー表示用メッセージを取り出す。
// *model.APIErrorの場合はMessage（サーバーのmessageそのまま）を使用する。
func errorMessage(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// errorCategory はメトリクス用のエラー分類を返す。
func errorCategory(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Category
	}
	return "unknown"
}
