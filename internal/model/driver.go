package model

// Driver は認証済みドライバーのプロフィールを表す。
// ログインレスポンスに含まれる場合のみ取得できる任意のメタデータであり、
// 認証状態の判定には使用しない。
type Driver struct {
	ID       string
	Username string
	Name     string
	Email    string
	Phone    string
	Status   string
}

// DisplayName は画面表示用のドライバー名を返す。
// Name、Usernameの順でフォールバックし、どちらも無い場合は"Driver"を返す。
func (d *Driver) DisplayName() string {
	if d == nil {
		return "Driver"
	}
	if d.Name != "" {
		return d.Name
	}
	if d.Username != "" {
		return d.Username
	}
	return "Driver"
}
