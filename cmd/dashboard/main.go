package main

import (
	"chat-pulse/auth"
	"chat-pulse/client"
	"chat-pulse/render"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the dashboard binary.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the dashboard-side environment variables. The API base
// URL is injected here and passed down explicitly.
type Config struct {
	BaseURL    string        `envconfig:"DASHBOARD_BASE_URL" default:"http://localhost:8080"`
	UserID     string        `envconfig:"DASHBOARD_USER_ID" default:"dashboard"`
	AuthSecret string        `envconfig:"AUTH_SECRET" required:"true"`
	Timeout    time.Duration `envconfig:"DASHBOARD_TIMEOUT" default:"5s"`
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"INFO"`
	Colours    bool          `envconfig:"DASHBOARD_COLOURS" default:"true"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Dashboard error: %v\n", err)
	}
	os.Exit(code)
}

// run performs one widget load: sign a token, fetch the stats once, render
// the chart, exit. There is no polling; rerun the binary to refresh.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Sign a short-lived token with the shared secret, standing in for
	// the session context of the dashboard page.
	token, err := auth.GenerateToken([]byte(config.AuthSecret), config.UserID, 5*time.Minute)
	if err != nil {
		return exitConfig, fmt.Errorf("token error: %w", err)
	}

	// 4. Fetch and render.
	renderer := render.NewSparkline(os.Stdout, config.Colours)
	dashboard := client.NewDashboardClient(config.BaseURL, token, config.Timeout, renderer, log)

	if err := dashboard.Load(ctx); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}
