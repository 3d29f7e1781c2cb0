package app

// Command はCLIのサブコマンドを表す。
type Command string

const (
	// CommandLogin は認証情報でログインし、トークンを保存する。
	CommandLogin Command = "login"
	// CommandLogout は保存済みトークンを削除する。
	CommandLogout Command = "logout"
	// CommandProfile はドライバープロフィールとトークンの有効期限を表示する。
	CommandProfile Command = "profile"
	// CommandRides は配車一覧を表示する。
	CommandRides Command = "rides"
	// CommandToday は今日の配車を表示する。
	CommandToday Command = "today"
	// CommandUpcoming は今後の配車を表示する。
	CommandUpcoming Command = "upcoming"
	// CommandCalendar は指定日の配車を表示する。
	CommandCalendar Command = "calendar"
	// CommandUpdate は配車のステータスとメモを更新する。
	CommandUpdate Command = "update"
	// CommandCancel は配車を削除（キャンセル）する。
	CommandCancel Command = "cancel"
	// CommandDashboard はホーム画面相当のサマリーを表示する。
	CommandDashboard Command = "dashboard"
	// CommandWatch は定期同期デーモンモードで起動する。
	CommandWatch Command = "watch"
	// CommandHelp は使い方を表示する。
	CommandHelp Command = "help"
)

// ParseCommand はコマンドライン引数からサブコマンドと残りの引数を解析する。
// 引数が空の場合はCommandDashboard、サポート外のコマンドの場合はCommandHelpを返す。
func ParseCommand(args []string) (Command, []string) {
	if len(args) == 0 {
		return CommandDashboard, nil
	}

	switch args[0] {
	case "login":
		return CommandLogin, args[1:]
	case "logout":
		return CommandLogout, args[1:]
	case "profile":
		return CommandProfile, args[1:]
	case "rides":
		return CommandRides, args[1:]
	case "today":
		return CommandToday, args[1:]
	case "upcoming":
		return CommandUpcoming, args[1:]
	case "calendar":
		return CommandCalendar, args[1:]
	case "update":
		return CommandUpdate, args[1:]
	case "cancel":
		return CommandCancel, args[1:]
	case "dashboard":
		return CommandDashboard, args[1:]
	case "watch":
		return CommandWatch, args[1:]
	default:
		return CommandHelp, args
	}
}
