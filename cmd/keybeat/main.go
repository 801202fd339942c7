// Package main provides the CLI entrypoint for keybeat.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keybeat/internal/api"
	"github.com/verte-zerg/keybeat/internal/config"
	"github.com/verte-zerg/keybeat/internal/model"
	"github.com/verte-zerg/keybeat/internal/poems"
	"github.com/verte-zerg/keybeat/internal/results"
	"github.com/verte-zerg/keybeat/internal/resultsui"
	"github.com/verte-zerg/keybeat/internal/server"
	"github.com/verte-zerg/keybeat/internal/stats"
	"github.com/verte-zerg/keybeat/internal/store"
	"github.com/verte-zerg/keybeat/internal/tui"
)

const (
	defaultAddr     = "127.0.0.1:8000"
	defaultDBDriver = "sqlite"
	maxPageSize     = 100
)

var (
	practicePoem     string
	practiceAPIURL   string
	practicePageSize int
	practiceLogFile  string

	resultsPage  int
	resultsPlain bool

	serveAddr     string
	serveDBDriver string
	serveDSN      string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keybeat",
		Short:         "Poem typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practicePoem, "poem", poems.DefaultKey, "poem key to practice (see: keybeat poems)")
	rootCmd.PersistentFlags().StringVar(&practiceAPIURL, "api-url", api.DefaultBaseURL, "results backend base URL")
	rootCmd.PersistentFlags().IntVar(&practicePageSize, "page-size", results.DefaultPageSize, "results per page")
	rootCmd.PersistentFlags().StringVar(&practiceLogFile, "log-file", "", "write warnings to this file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPoemsCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// loadPracticeConfig merges the config file into flags that were not set.
func loadPracticeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "poem", &practicePoem, fileCfg.Practice.Poem)
	applyStringConfig(cmd, "api-url", &practiceAPIURL, fileCfg.Practice.APIURL)
	applyIntConfig(cmd, "page-size", &practicePageSize, fileCfg.Practice.PageSize)
	applyStringConfig(cmd, "log-file", &practiceLogFile, fileCfg.Practice.LogFile)

	cfg := model.Config{
		PoemKey:  strings.TrimSpace(practicePoem),
		APIURL:   strings.TrimSpace(practiceAPIURL),
		PageSize: practicePageSize,
		LogFile:  strings.TrimSpace(practiceLogFile),
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	catalogue, err := poems.LoadFile(config.DefaultPoemsPath())
	if err != nil {
		return fmt.Errorf("failed to load poems: %w", err)
	}
	client, err := api.NewClient(cfg.APIURL, nil)
	if err != nil {
		return err
	}

	closeLog, err := setupTUILog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	m, err := tui.NewModel(cfg, catalogue, client)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// setupTUILog routes the standard logger away from the terminal while a TUI
// owns it.
func setupTUILog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "keybeat")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}, nil
}

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Browse stored session results",
		Args:  cobra.NoArgs,
		RunE:  runResultsCmd,
	}
	cmd.Flags().IntVar(&resultsPage, "page", 1, "page to open")
	cmd.Flags().BoolVar(&resultsPlain, "plain", false, "print a text table instead of the TUI")
	return cmd
}

func runResultsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	if resultsPage < 1 {
		return fmt.Errorf("--page must be >= 1")
	}
	client, err := api.NewClient(cfg.APIURL, nil)
	if err != nil {
		return err
	}

	stdoutFd := int(os.Stdout.Fd())
	if resultsPlain || !term.IsTerminal(stdoutFd) {
		width := 0
		if term.IsTerminal(stdoutFd) {
			if w, _, err := term.GetSize(stdoutFd); err == nil {
				width = w
			}
		}
		return printResults(cmd.Context(), cmd.OutOrStdout(), client, resultsPage, cfg.PageSize, width)
	}

	closeLog, err := setupTUILog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	m := resultsui.NewModel(client, cfg.PageSize, resultsui.WithStartPage(resultsPage))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run results TUI: %w", err)
	}
	return nil
}

func printResults(ctx context.Context, w io.Writer, fetcher results.Fetcher, page, size, width int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pager := results.NewPager(fetcher, size)
	if err := pager.LoadPage(ctx, page); err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	current := pager.Page()
	if err := stats.RenderResultsTable(w, current, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(current.Items) == 0 {
		return nil
	}
	if err := stats.RenderSummary(w, current.Items); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.PlotHistory(w, current.Items, width, stats.ColorEnabled(w)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPoemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poems",
		Short: "List available poems",
		Args:  cobra.NoArgs,
		RunE:  runPoemsCmd,
	}
}

func runPoemsCmd(cmd *cobra.Command, _ []string) error {
	catalogue, err := poems.LoadFile(config.DefaultPoemsPath())
	if err != nil {
		return fmt.Errorf("failed to load poems: %w", err)
	}
	for _, key := range catalogue.Keys() {
		poem, _ := catalogue.Get(key)
		words := len(poems.Tokenize(poem.Text))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s (%d words)\n", key, poem.Title, words); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the results backend",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveDBDriver, "db-driver", defaultDBDriver, "database driver: sqlite, postgres or mysql")
	cmd.Flags().StringVar(&serveDSN, "dsn", "", "database DSN (sqlite: file path, default in XDG data dir)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	applyStringConfig(cmd, "db-driver", &serveDBDriver, fileCfg.Server.DBDriver)
	applyStringConfig(cmd, "dsn", &serveDSN, fileCfg.Server.DSN)

	cfg := model.ServerConfig{
		Addr:     strings.TrimSpace(serveAddr),
		DBDriver: strings.TrimSpace(serveDBDriver),
		DSN:      strings.TrimSpace(serveDSN),
	}
	if err := validateServerConfig(&cfg); err != nil {
		return err
	}

	st, err := store.Open(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := st.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach db: %w", err)
	}
	log.Printf("[DB] using %s store\n", st.Driver())
	if err := server.Run(ctx, cfg.Addr, server.New(st).Handler()); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keybeat configuration
# Uncomment a value to enable it. CLI flags override config values.
# Extra poems can be added in %s as [poems.<key>] with title and text.

[practice]
# poem = %q             # Poem key (see: keybeat poems)
# api-url = %q  # Results backend
# page-size = %d          # Results per page
# log-file = %q

[server]
# addr = %q    # Listen address
# db-driver = %q       # sqlite, postgres or mysql
# dsn = %q
`,
		config.DefaultPoemsPath(),
		poems.DefaultKey,
		api.DefaultBaseURL,
		results.DefaultPageSize,
		config.DefaultLogPath(),
		defaultAddr,
		defaultDBDriver,
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.PoemKey == "" {
		return fmt.Errorf("--poem must not be empty")
	}
	if cfg.APIURL == "" {
		return fmt.Errorf("--api-url must not be empty")
	}
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		return fmt.Errorf("--page-size must be between 1 and %d", maxPageSize)
	}
	return nil
}

func validateServerConfig(cfg *model.ServerConfig) error {
	if cfg.Addr == "" {
		return fmt.Errorf("--addr must not be empty")
	}
	switch strings.ToLower(cfg.DBDriver) {
	case "", "sqlite", "sqlite3":
		if cfg.DSN == "" {
			cfg.DSN = config.DefaultDBPath()
		}
	case "postgres", "postgresql", "mysql":
		if cfg.DSN == "" {
			return fmt.Errorf("--dsn is required for %s", cfg.DBDriver)
		}
	default:
		return fmt.Errorf("--db-driver must be sqlite, postgres or mysql")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
