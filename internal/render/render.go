// Package render はターミナル向けの表示整形を提供する。
//
// バックエンドから受け取る自由入力テキスト（乗客名、メモ、住所）は
// 信頼できないため、表示前にbluemondayの許可リストポリシーで
// HTMLタグを全て除去した上でプレーンテキストに戻す。
package render

import (
	"fmt"
	"html"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/luxsuv/luxsuv-driver/internal/model"
)

// Renderer は配車情報のターミナル表示を行う。
type Renderer struct {
	w      io.Writer
	policy *bluemonday.Policy
}

// NewRenderer はRendererの新しいインスタンスを生成する。
// タグを一切許可しないポリシーで自由入力テキストをサニタイズする。
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		w:      w,
		policy: bluemonday.StrictPolicy(),
	}
}

// cleanText は自由入力テキストからHTMLタグを除去し、
// エンティティをターミナル表示用に戻す。
func (r *Renderer) cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(s)))
}

// RideTable は配車一覧をタブ区切りの表として出力する。
func (r *Renderer) RideTable(rides []model.Ride) {
	if len(rides) == 0 {
		fmt.Fprintln(r.w, "No rides found.")
		return
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tCUSTOMER\tPICKUP\tDROPOFF\tPAX\tSTATUS")
	for _, ride := range rides {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			ride.ID,
			ride.Date,
			ride.Time,
			r.cleanText(ride.DisplayName()),
			r.cleanText(ride.Pickup),
			r.cleanText(ride.Dropoff),
			ride.NumberOfPassengers,
			ride.Status.DisplayName(),
		)
	}
	tw.Flush()
}

// RideDetail は1件の配車の詳細を出力する。
func (r *Renderer) RideDetail(ride model.Ride) {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", ride.ID)
	fmt.Fprintf(tw, "Customer:\t%s\n", r.cleanText(ride.DisplayName()))
	if ride.Email != "" {
		fmt.Fprintf(tw, "Email:\t%s\n", r.cleanText(ride.Email))
	}
	if ride.PhoneNumber != "" {
		fmt.Fprintf(tw, "Phone:\t%s\n", r.cleanText(ride.PhoneNumber))
	}
	if ride.RideType != "" {
		fmt.Fprintf(tw, "Type:\t%s\n", r.cleanText(ride.RideType))
	}
	fmt.Fprintf(tw, "Pickup:\t%s\n", r.cleanText(ride.Pickup))
	fmt.Fprintf(tw, "Dropoff:\t%s\n", r.cleanText(ride.Dropoff))
	fmt.Fprintf(tw, "Date:\t%s %s\n", ride.Date, ride.Time)
	fmt.Fprintf(tw, "Passengers:\t%d\n", ride.NumberOfPassengers)
	fmt.Fprintf(tw, "Luggage:\t%d\n", ride.NumberOfLuggage)
	if ride.AdditionalNotes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", r.cleanText(ride.AdditionalNotes))
	}
	fmt.Fprintf(tw, "Status:\t%s\n", ride.Status.DisplayName())
	tw.Flush()
}

// Dashboard はホーム画面相当のサマリーを出力する。
// 今日の配車件数と直近の今後の配車を表示する。
func (r *Renderer) Dashboard(driver *model.Driver, todayCount int, upcoming []model.Ride) {
	fmt.Fprintf(r.w, "Welcome, %s\n\n", r.cleanText(driver.DisplayName()))
	fmt.Fprintf(r.w, "Rides today: %d\n\n", todayCount)

	if len(upcoming) == 0 {
		fmt.Fprintln(r.w, "No upcoming rides.")
		return
	}

	fmt.Fprintln(r.w, "Upcoming rides:")
	r.RideTable(upcoming)
}

// Profile はドライバープロフィールとトークンの有効期限を出力する。
// expiryはゼロ値の場合表示しない。
func (r *Renderer) Profile(driver *model.Driver, expiry time.Time) {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	if driver != nil {
		if driver.Name != "" {
			fmt.Fprintf(tw, "Name:\t%s\n", r.cleanText(driver.Name))
		}
		if driver.Username != "" {
			fmt.Fprintf(tw, "Username:\t%s\n", r.cleanText(driver.Username))
		}
		if driver.Email != "" {
			fmt.Fprintf(tw, "Email:\t%s\n", r.cleanText(driver.Email))
		}
	} else {
		fmt.Fprintln(tw, "Profile:\t(not available; log in again to refresh)")
	}
	if !expiry.IsZero() {
		fmt.Fprintf(tw, "Token expires:\t%s\n", expiry.Local().Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

// Error はエラーメッセージを出力する。
func (r *Renderer) Error(message string) {
	fmt.Fprintf(r.w, "Error: %s\n", message)
}
