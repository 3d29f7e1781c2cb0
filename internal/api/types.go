package api

import (
	"encoding/json"

	"github.com/luxsuv/luxsuv-driver/internal/model"
)

// loginRequest はログインエンドポイントのリクエストボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse はログインエンドポイントの成功レスポンス。
type loginResponse struct {
	Token   string     `json:"token"`
	Driver  *driverDTO `json:"driver"`
	Message string     `json:"message"`
}

// apiErrorBody は非2xxレスポンスのエラーボディ（{message, error?}）。
type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// rideUpdateRequest は配車更新エンドポイントのリクエストボディ。
type rideUpdateRequest struct {
	Status model.RideStatus `json:"status"`
	Notes  string           `json:"notes,omitempty"`
}

// idString はJSONの数値・文字列どちらのIDも文字列として受け取る。
// バックエンドの一覧エンドポイントは数値IDを返すが、クライアント側では
// 常に文字列IDとして扱う。
type idString string

// UnmarshalJSON は数値・文字列の両形式を受け付ける。
func (s *idString) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*s = idString(n.String())
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	*s = idString(str)
	return nil
}

// driverDTO はログインレスポンスに含まれるドライバープロフィール。
type driverDTO struct {
	ID       idString `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Status   string   `json:"status"`
}

// toModel はdriverDTOをmodel.Driverに変換する。nilレシーバーはnilを返す。
func (d *driverDTO) toModel() *model.Driver {
	if d == nil {
		return nil
	}
	return &model.Driver{
		ID:       string(d.ID),
		Username: d.Username,
		Name:     d.Name,
		Email:    d.Email,
		Phone:    d.Phone,
		Status:   d.Status,
	}
}

// rideDTO は一覧エンドポイントが返すsnake_case形式の配車レコード。
type rideDTO struct {
	ID                 idString `json:"id"`
	YourName           string   `json:"your_name"`
	Email              string   `json:"email"`
	PhoneNumber        string   `json:"phone_number"`
	RideType           string   `json:"ride_type"`
	PickupLocation     string   `json:"pickup_location"`
	DropoffLocation    string   `json:"dropoff_location"`
	Date               string   `json:"date"`
	Time               string   `json:"time"`
	NumberOfPassengers int      `json:"number_of_passengers"`
	NumberOfLuggage    int      `json:"number_of_luggage"`
	AdditionalNotes    string   `json:"additional_notes"`
}

// toRide はバックエンドのフィールド名をRideエンティティにマッピングする。
// 一覧エンドポイントの契約上、statusは常にrequestedに固定し、
// fare/distance/durationは常に未設定にする。
func (r rideDTO) toRide() model.Ride {
	return model.Ride{
		ID:                 string(r.ID),
		Name:               r.YourName,
		Email:              r.Email,
		PhoneNumber:        r.PhoneNumber,
		RideType:           r.RideType,
		Pickup:             r.PickupLocation,
		Dropoff:            r.DropoffLocation,
		Date:               r.Date,
		Time:               r.Time,
		NumberOfPassengers: r.NumberOfPassengers,
		NumberOfLuggage:    r.NumberOfLuggage,
		AdditionalNotes:    r.AdditionalNotes,
		Status:             model.StatusRequested,
		Fare:               nil,
		Distance:           nil,
		Duration:           nil,
	}
}
