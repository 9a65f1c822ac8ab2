package main

import (
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/wuffchat/wuffchat-cli/internal/api"
	"github.com/wuffchat/wuffchat-cli/internal/config"
	"github.com/wuffchat/wuffchat-cli/internal/conversation"
	"github.com/wuffchat/wuffchat-cli/internal/session"
	"github.com/wuffchat/wuffchat-cli/internal/tui"
)

func main() {
	// Load .env file; absent is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg.Client.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	logger.Info().Str("base_url", cfg.Client.BaseURL).Msg("wuffchat client starting")

	store := session.NewStore(session.NewMemoryStorage(), session.WithLogger(logger))
	client := api.NewClient(cfg.Client.BaseURL,
		api.WithAPIKey(cfg.Client.APIKey),
		api.WithHTTPClient(&http.Client{Timeout: cfg.Client.HTTPTimeout}),
		api.WithClientLogger(logger),
	)

	events := make(chan conversation.Event, 256)
	ctrl := conversation.NewController(store, client,
		conversation.WithControllerLogger(logger),
		conversation.WithListener(func(ev conversation.Event) { events <- ev }),
	)

	program := tea.NewProgram(tui.New(ctrl, events), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wuffchat exited with error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes to the configured file so log output never fights the
// alternate screen. Without a file, logging is off.
func newLogger(path string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}

	logger := zerolog.New(file).With().Timestamp().Logger()
	return logger, func() { _ = file.Close() }, nil
}
