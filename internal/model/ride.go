// Package model はドメインモデルを定義する。
package model

import "time"

// pickupLayout は日付と時刻を結合した乗車日時のフォーマット。
// バックエンドはdateを"2006-01-02"、timeを"15:04"形式で返す。
const pickupLayout = "2006-01-02 15:04"

// RideStatus は配車リクエストのステータスを表す。
type RideStatus string

const (
	// StatusRequested は乗客からのリクエスト直後の状態。
	StatusRequested RideStatus = "requested"
	// StatusAccepted はドライバーが引き受けた状態。
	StatusAccepted RideStatus = "accepted"
	// StatusInProgress は乗車中の状態。
	StatusInProgress RideStatus = "in_progress"
	// StatusCompleted は完了した状態。
	StatusCompleted RideStatus = "completed"
	// StatusCancelled はキャンセルされた状態。
	StatusCancelled RideStatus = "cancelled"
)

// AllStatuses はステータス更新時に選択可能な全ステータスのリスト。
// 更新モーダルの選択肢と同じ順序で並べる。
var AllStatuses = []RideStatus{
	StatusRequested,
	StatusAccepted,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// ParseRideStatus は文字列をRideStatusに変換する。
// 未知の値の場合はfalseを返す。
func ParseRideStatus(s string) (RideStatus, bool) {
	switch RideStatus(s) {
	case StatusRequested, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return RideStatus(s), true
	default:
		return "", false
	}
}

// DisplayName は画面表示用のステータス名を返す。
func (s RideStatus) DisplayName() string {
	switch s {
	case StatusRequested:
		return "Requested"
	case StatusAccepted:
		return "Accepted"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Color はステータスに対応する表示色を返す。
func (s RideStatus) Color() string {
	switch s {
	case StatusRequested:
		return "blue"
	case StatusAccepted:
		return "green"
	case StatusInProgress:
		return "orange"
	case StatusCompleted:
		return "gray"
	case StatusCancelled:
		return "red"
	default:
		return "gray"
	}
}

// Ride は1件の配車予約を表す。
// バックエンドの一覧レスポンスをクライアント側エンティティに正規化したもの。
// Fare/Distance/Durationは一覧エンドポイントが返さないため常にnil。
type Ride struct {
	ID                 string
	Name               string
	Email              string
	PhoneNumber        string
	RideType           string
	Pickup             string
	Dropoff            string
	Date               string // "2006-01-02"形式
	Time               string // "15:04"形式
	NumberOfPassengers int
	NumberOfLuggage    int
	AdditionalNotes    string
	Status             RideStatus
	Fare               *float64
	Distance           *float64 // マイル
	Duration           *int     // 分
}

// PickupAt はDateとTimeを結合した乗車日時を返す。
// どちらかが不正な形式の場合はfalseを返す。
// 保存せず毎回計算する（ソートと将来判定にのみ使用）。
func (r Ride) PickupAt() (time.Time, bool) {
	t, err := time.ParseInLocation(pickupLayout, r.Date+" "+r.Time, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DisplayName は乗客名を返す。未設定の場合は"Customer"を返す。
func (r Ride) DisplayName() string {
	if r.Name == "" {
		return "Customer"
	}
	return r.Name
}
