package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/luxsuv/luxsuv-driver/internal/model"
)

func TestRideTable_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RideTable(nil)

	if !strings.Contains(buf.String(), "No rides found.") {
		t.Errorf("出力 = %q, want 件数ゼロのメッセージ", buf.String())
	}
}

func TestRideTable_RendersAllColumns(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RideTable([]model.Ride{
		{
			ID:                 "42",
			Name:               "Alice",
			Pickup:             "Airport",
			Dropoff:            "Hotel",
			Date:               "2025-06-01",
			Time:               "09:00",
			NumberOfPassengers: 2,
			Status:             model.StatusAccepted,
		},
	})

	out := buf.String()
	for _, want := range []string{"42", "Alice", "Airport", "Hotel", "2025-06-01", "09:00", "Accepted"} {
		if !strings.Contains(out, want) {
			t.Errorf("出力に %q が含まれない:\n%s", want, out)
		}
	}
}

func TestRideTable_StripsHTMLFromFreeText(t *testing.T) {
	// 乗客名やメモはバックエンド経由の自由入力なのでタグを除去する
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RideTable([]model.Ride{
		{
			ID:      "1",
			Name:    `<script>alert("x")</script>Bob`,
			Pickup:  "<b>Main St</b>",
			Dropoff: "D",
			Date:    "2025-06-01",
			Time:    "09:00",
			Status:  model.StatusRequested,
		},
	})

	out := buf.String()
	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>") {
		t.Errorf("タグが除去されていない:\n%s", out)
	}
	if !strings.Contains(out, "Bob") {
		t.Errorf("テキスト部分が失われた:\n%s", out)
	}
	if !strings.Contains(out, "Main St") {
		t.Errorf("テキスト部分が失われた:\n%s", out)
	}
}

func TestRideDetail_OmitsEmptyOptionalFields(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RideDetail(model.Ride{
		ID:      "7",
		Pickup:  "P",
		Dropoff: "D",
		Date:    "2025-06-01",
		Time:    "09:00",
		Status:  model.StatusRequested,
	})

	out := buf.String()
	if strings.Contains(out, "Email:") || strings.Contains(out, "Notes:") {
		t.Errorf("空の任意フィールドが表示された:\n%s", out)
	}
	// 名前が空の場合はフォールバック表示
	if !strings.Contains(out, "Customer") {
		t.Errorf("名前のフォールバックが表示されない:\n%s", out)
	}
}

func TestDashboard_ShowsTodayCountAndUpcoming(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Dashboard(
		&model.Driver{Name: "Dave"},
		3,
		[]model.Ride{{ID: "1", Date: "2025-06-02", Time: "08:00", Status: model.StatusRequested}},
	)

	out := buf.String()
	if !strings.Contains(out, "Welcome, Dave") {
		t.Errorf("挨拶が表示されない:\n%s", out)
	}
	if !strings.Contains(out, "Rides today: 3") {
		t.Errorf("今日の件数が表示されない:\n%s", out)
	}
	if !strings.Contains(out, "Upcoming rides:") {
		t.Errorf("今後の配車見出しが表示されない:\n%s", out)
	}
}

func TestDashboard_NilDriver_UsesFallbackName(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Dashboard(nil, 0, nil)

	out := buf.String()
	if !strings.Contains(out, "Welcome, Driver") {
		t.Errorf("フォールバック名が表示されない:\n%s", out)
	}
	if !strings.Contains(out, "No upcoming rides.") {
		t.Errorf("今後の配車ゼロのメッセージが表示されない:\n%s", out)
	}
}

func TestProfile_WithExpiry(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	expiry := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	r.Profile(&model.Driver{Username: "driver1", Email: "d@example.com"}, expiry)

	out := buf.String()
	if !strings.Contains(out, "driver1") {
		t.Errorf("ユーザー名が表示されない:\n%s", out)
	}
	if !strings.Contains(out, "Token expires:") {
		t.Errorf("有効期限が表示されない:\n%s", out)
	}
}

func TestProfile_NilDriver(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Profile(nil, time.Time{})

	if !strings.Contains(buf.String(), "not available") {
		t.Errorf("プロフィール未取得の案内が表示されない:\n%s", buf.String())
	}
}

func TestError_PrefixesMessage(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Error("Invalid credentials")

	if got := buf.String(); got != "Error: Invalid credentials\n" {
		t.Errorf("出力 = %q", got)
	}
}
