// Package app はCLIのエントリーポイントとコマンドディスパッチを提供する。
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxsuv/luxsuv-driver/internal/api"
	"github.com/luxsuv/luxsuv-driver/internal/config"
	"github.com/luxsuv/luxsuv-driver/internal/logger"
	"github.com/luxsuv/luxsuv-driver/internal/metrics"
	"github.com/luxsuv/luxsuv-driver/internal/model"
	"github.com/luxsuv/luxsuv-driver/internal/render"
	"github.com/luxsuv/luxsuv-driver/internal/rides"
	"github.com/luxsuv/luxsuv-driver/internal/secrets"
	"github.com/luxsuv/luxsuv-driver/internal/session"
	"github.com/luxsuv/luxsuv-driver/internal/status"
	"github.com/luxsuv/luxsuv-driver/internal/watch"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// App はCLIの全依存関係を保持する。
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	out      io.Writer
	in       io.Reader
	renderer *render.Renderer
	session  *session.Manager
	sync     *rides.Synchronizer
	registry *prometheus.Registry
}

// New はConfigから全依存関係をワイヤリングしたAppを生成する。
// 出力はoutへ、ログはslogのデフォルトロガーへ送る。
func New(cfg *config.Config, out io.Writer, in io.Reader) *App {
	log := slog.Default()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	client := api.NewClient(httpClient, cfg.APIBaseURL, log, collector)

	store := secrets.NewStore(cfg.SecretsDir)
	sessionMgr := session.NewManager(client, store, log)
	syncer := rides.NewSynchronizer(client, sessionMgr, log, collector)

	return &App{
		cfg:      cfg,
		logger:   log,
		out:      out,
		in:       in,
		renderer: render.NewRenderer(out),
		session:  sessionMgr,
		sync:     syncer,
		registry: registry,
	}
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応する処理を実行する。
// argsにはos.Args[1:]を渡す。出力はwへ、ログは標準エラーへ送る。
func Run(w io.Writer, args []string) error {
	cmd, rest := ParseCommand(args)

	// help は初期化不要の軽量サブコマンド
	if cmd == CommandHelp {
		printUsage(w)
		if len(rest) > 0 && rest[0] != "help" {
			return fmt.Errorf("unknown command: %s", rest[0])
		}
		return nil
	}

	// ワンショットのサブコマンドは表示出力を汚さないようにログを標準エラーへ、
	// watchモードはデーモンとしてログを標準出力へ送る
	var logW io.Writer
	if cmd == CommandWatch {
		logW = os.Stdout
	}

	cfg, err := Init(logW)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", err.Error())
		return fmt.Errorf("initialization failed: %w", err)
	}

	app := New(cfg, w, os.Stdin)
	return app.Dispatch(context.Background(), cmd, rest)
}

// Dispatch は解析済みサブコマンドを実行する。
// 起動時に必ずセッション復元を行う。
func (a *App) Dispatch(ctx context.Context, cmd Command, rest []string) error {
	a.session.Restore()

	var err error
	switch cmd {
	case CommandLogin:
		err = a.runLogin(ctx, rest)
	case CommandLogout:
		err = a.runLogout()
	case CommandProfile:
		err = a.runProfile()
	case CommandRides:
		err = a.runRides(ctx)
	case CommandToday:
		err = a.runToday(ctx)
	case CommandUpcoming:
		err = a.runUpcoming(ctx)
	case CommandCalendar:
		err = a.runCalendar(ctx, rest)
	case CommandUpdate:
		err = a.runUpdate(ctx, rest)
	case CommandCancel:
		err = a.runCancel(ctx, rest)
	case CommandDashboard:
		err = a.runDashboard(ctx)
	case CommandWatch:
		err = a.runWatch(ctx)
	default:
		printUsage(a.out)
	}

	if err != nil {
		a.renderer.Error(userMessage(err))
	}
	return err
}

// runLogin は認証情報でログインする。
// 認証情報は引数（login <username> <password>）または対話入力で受け取る。
func (a *App) runLogin(ctx context.Context, rest []string) error {
	var username, password string

	reader := bufio.NewReader(a.in)
	if len(rest) > 0 {
		username = rest[0]
	} else {
		fmt.Fprint(a.out, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return model.NewInvalidInputError("Username and password are required")
		}
		username = strings.TrimSpace(line)
	}

	if len(rest) > 1 {
		password = rest[1]
	} else {
		fmt.Fprint(a.out, "Password: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return model.NewInvalidInputError("Username and password are required")
		}
		password = strings.TrimSpace(line)
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		return err
	}

	name := username
	if d := a.session.Driver(); d != nil {
		name = d.DisplayName()
	}
	fmt.Fprintf(a.out, "Logged in as %s.\n", name)
	return nil
}

func (a *App) runLogout() error {
	a.session.Logout()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) runProfile() error {
	if !a.session.IsAuthenticated() {
		return model.NewAuthMissingError()
	}

	expiry, _ := a.session.TokenExpiry()
	a.renderer.Profile(a.session.Driver(), expiry)
	return nil
}

func (a *App) runRides(ctx context.Context) error {
	if err := a.sync.Fetch(ctx); err != nil {
		return err
	}
	a.renderer.RideTable(a.sync.Snapshot())
	return nil
}

func (a *App) runToday(ctx context.Context) error {
	if err := a.sync.Fetch(ctx); err != nil {
		return err
	}
	today := time.Now().Format("2006-01-02")
	a.renderer.RideTable(a.sync.RidesForDate(today))
	return nil
}

func (a *App) runUpcoming(ctx context.Context) error {
	if err := a.sync.Fetch(ctx); err != nil {
		return err
	}
	a.renderer.RideTable(a.sync.UpcomingRides())
	return nil
}

func (a *App) runCalendar(ctx context.Context, rest []string) error {
	if len(rest) < 1 {
		return model.NewInvalidInputError("Usage: calendar <YYYY-MM-DD>")
	}
	date := rest[0]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return model.NewInvalidInputError("Invalid date. Use the YYYY-MM-DD format.")
	}

	if err := a.sync.Fetch(ctx); err != nil {
		return err
	}
	a.renderer.RideTable(a.sync.RidesForDate(date))
	return nil
}

func (a *App) runUpdate(ctx context.Context, rest []string) error {
	if len(rest) < 2 {
		return model.NewInvalidInputError("Usage: update <ride-id> <status> [notes]")
	}

	id := rest[0]
	newStatus, ok := model.ParseRideStatus(rest[1])
	if !ok {
		return model.NewInvalidInputError(
			"Invalid status. Valid statuses: " + strings.Join(statusNames(), ", "))
	}
	notes := strings.Join(rest[2:], " ")

	if err := a.sync.Update(ctx, id, newStatus, notes); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Ride %s updated to %s.\n", id, newStatus.DisplayName())
	return nil
}

func (a *App) runCancel(ctx context.Context, rest []string) error {
	if len(rest) < 1 {
		return model.NewInvalidInputError("Usage: cancel <ride-id>")
	}
	id := rest[0]

	if err := a.sync.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Ride %s cancelled.\n", id)
	return nil
}

func (a *App) runDashboard(ctx context.Context) error {
	if err := a.sync.Fetch(ctx); err != nil {
		return err
	}

	// ダッシュボードは直近5件のみ表示する
	upcoming := a.sync.UpcomingRides()
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}
	a.renderer.Dashboard(a.session.Driver(), a.sync.TodayCount(), upcoming)
	return nil
}

// runWatch は定期同期デーモンモードで起動する。
// ポーリングとステータスサーバーを起動し、SIGINTまたはSIGTERMを
// 受信するとグレースフルシャットダウンを行う。
func (a *App) runWatch(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		return model.NewAuthMissingError()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// 1. ステータスサーバーの起動
	statusSrv := status.NewServer(a.logger, a.sync, a.registry, a.cfg.StatusRateLimit)
	defer statusSrv.Close()

	server := &http.Server{
		Addr:         a.cfg.StatusAddr,
		Handler:      statusSrv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		a.logger.Info("ステータスサーバーを開始しました",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	// 2. ポーリングをバックグラウンドで起動
	poller := watch.NewPoller(a.sync, a.logger)
	done := make(chan struct{})
	go func() {
		poller.Start(ctx, a.cfg.WatchInterval)
		close(done)
	}()

	<-stop
	a.logger.Info("shutting down watcher...")
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.logger.Info("watcher stopped gracefully")
	return nil
}

// userMessage はエラーからユーザー表示用メッセージを取り出す。
func userMessage(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func statusNames() []string {
	names := make([]string, len(model.AllStatuses))
	for i, s := range model.AllStatuses {
		names[i] = string(s)
	}
	return names
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: luxsuv-driver <command> [arguments]

Commands:
  login [username] [password]   Log in and store the auth token
  logout                        Delete the stored auth token
  profile                       Show the driver profile and token expiry
  rides                         List all assigned rides
  today                         List today's rides
  upcoming                      List upcoming rides in pickup order
  calendar <YYYY-MM-DD>         List rides for a specific date
  update <id> <status> [notes]  Update a ride's status and notes
  cancel <id>                   Cancel (delete) a ride
  dashboard                     Show today's summary (default)
  watch                         Run the periodic sync daemon
  help                          Show this message

Environment:
  LUXSUV_API_URL            Backend base URL (required)
  LUXSUV_HTTP_TIMEOUT       HTTP timeout (default 30s)
  LUXSUV_SECRETS_DIR        Token storage directory
  LUXSUV_WATCH_INTERVAL     Sync interval in watch mode (default 5m)
  LUXSUV_STATUS_ADDR        Status server address (default 127.0.0.1:9590)
  LUXSUV_STATUS_RATE_LIMIT  Status server rate limit per minute (default 120)
`)
}
