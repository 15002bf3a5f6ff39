package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/vidfeed/internal/api"
	"github.com/mmcdole/vidfeed/internal/config"
	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/feed"
	"github.com/mmcdole/vidfeed/internal/log"
	"github.com/mmcdole/vidfeed/internal/session"
	"github.com/mmcdole/vidfeed/internal/tui"
	"github.com/mmcdole/vidfeed/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

type flags struct {
	logout   bool
	playlist string
	tab      string
}

func main() {
	var showVersion bool
	var f flags
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&f.logout, "logout", false, "forget the stored session and server")
	flag.StringVar(&f.playlist, "playlist", "", "open a playlist `id` in its own tab")
	flag.StringVar(&f.tab, "tab", "", "tab to show at startup (home, clips, search, ...)")
	flag.Parse()

	if showVersion {
		fmt.Printf("vidfeed %s\n", Version)
		return
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	loader := config.New()
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting vidfeed", "version", Version)

	if f.logout {
		return runLogout(cfg, loader)
	}

	if !cfg.IsConfigured() {
		if err := promptServer(cfg, loader); err != nil {
			return err
		}
	}

	store, err := session.Open(cfg.Data.Dir, cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer store.Close()

	if err := store.Load(); err != nil {
		logger.Warn("failed to preload session", "error", err)
	}

	if store.Token() == "" {
		if err := runLogin(cfg, store, logger); err != nil {
			return err
		}
	}

	client := api.NewClient(cfg.Server.URL, store,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Burst),
		api.WithLogger(logger),
	)

	tab := cfg.UI.DefaultTab
	if f.tab != "" {
		tab = f.tab
	}
	defaultTab, ok := feed.ParseKind(tab)
	if !ok {
		return fmt.Errorf("unknown tab %q", tab)
	}
	if f.playlist != "" && f.tab == "" {
		defaultTab = feed.KindPlaylist
	}

	user, _ := store.User()
	model, err := tui.NewModel(tui.Options{
		Catalog:    feed.NewCatalog(feed.SourcesFrom(client), cfg, logger),
		Account:    client,
		Recents:    store,
		User:       user,
		Timeout:    cfg.Server.Timeout,
		DefaultTab: defaultTab,
		Playlist:   f.playlist,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build UI: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI", "server", cfg.Server.URL)

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runLogout clears the session of the configured server and the server itself
func runLogout(cfg *config.Config, loader *config.Loader) error {
	if cfg.IsConfigured() {
		store, err := session.Open(cfg.Data.Dir, cfg.Server.URL)
		if err != nil {
			return fmt.Errorf("failed to open session: %w", err)
		}
		defer store.Close()
		if err := store.Clear(); err != nil {
			return err
		}
	}
	if err := loader.ClearServer(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println("✓ Logged out")
	return nil
}

// promptServer asks for the API URL and saves it
func promptServer(cfg *config.Config, loader *config.Loader) error {
	fmt.Println()
	fmt.Println("Welcome to vidfeed!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter the API URL (e.g., https://videos.example.com/api): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		url := strings.TrimRight(strings.TrimSpace(input), "/")
		if url == "" {
			fmt.Println("API URL cannot be empty. Please try again.")
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			fmt.Println("API URL must start with http:// or https://")
			continue
		}
		cfg.Server.URL = url
		break
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// runLogin asks for an access token until the server accepts one
func runLogin(cfg *config.Config, store domain.SessionStore, logger *slog.Logger) error {
	for {
		fmt.Print("Access token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token := strings.TrimSpace(string(raw))
		if token == "" {
			fmt.Println("Token cannot be empty. Please try again.")
			continue
		}

		client := api.NewClient(cfg.Server.URL, api.StaticToken(token),
			api.WithTimeout(cfg.Server.Timeout),
			api.WithLogger(logger),
		)
		user, err := verifyWithSpinner(client)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrAuthFailed):
				fmt.Println("✗ The server rejected that token.")
			default:
				fmt.Printf("✗ Could not sign in: %v\n", err)
			}
			fmt.Println()
			continue
		}

		if err := store.Save(token, user); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Printf("✓ Signed in as %s\n", user.Username)
		return nil
	}
}

// verifyWithSpinner fetches the current user with a visual spinner
func verifyWithSpinner(client *api.Client) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	type result struct {
		user *domain.User
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		user, err := client.Me(ctx)
		resultCh <- result{user, err}
	}()

	frame := 0
	fmt.Printf("\r%s Signing in...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return res.user, res.err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Signing in...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return nil, fmt.Errorf("sign in timed out")
		}
	}
}
