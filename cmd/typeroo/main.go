// Package main provides the CLI entrypoint for typeroo.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeroo/internal/config"
	"github.com/verte-zerg/typeroo/internal/engine"
	"github.com/verte-zerg/typeroo/internal/generator"
	"github.com/verte-zerg/typeroo/internal/livefeed"
	"github.com/verte-zerg/typeroo/internal/model"
	"github.com/verte-zerg/typeroo/internal/remote"
	"github.com/verte-zerg/typeroo/internal/stats"
	"github.com/verte-zerg/typeroo/internal/statsui"
	"github.com/verte-zerg/typeroo/internal/store"
	"github.com/verte-zerg/typeroo/internal/tui"
	"github.com/verte-zerg/typeroo/internal/wordlist"
)

const (
	defaultMode     = string(model.ModeTimed)
	defaultDuration = 30
	shutdownTimeout = 2 * time.Second
	requestTimeout  = 10 * time.Second
	dateLayout      = "2006-01-02"
)

var (
	testMode     string
	testDuration int
	testText     string
	testTextID   int64
	testCorpus   string
	testFeedAddr string
	testPlain    bool

	statsMode   string
	statsSince  string
	statsLast   int
	statsWindow int
	statsPlain  bool

	textsRemote bool
	textsPublic bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typeroo",
		Short:         "Terminal typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().StringVar(&testMode, "mode", defaultMode, "test mode: time, count-up or text")
	rootCmd.Flags().IntVar(&testDuration, "duration", defaultDuration, "countdown length in seconds for time mode")
	rootCmd.Flags().StringVar(&testText, "text", "", "type this text (implies --mode text)")
	rootCmd.Flags().Int64Var(&testTextID, "text-id", 0, "type a saved custom text (implies --mode text)")
	rootCmd.Flags().StringVar(&testCorpus, "corpus", "", "word list file, one word per line (default: built-in list)")
	rootCmd.Flags().StringVar(&testFeedAddr, "feed-addr", "", "serve a live WebSocket feed on this address, e.g. :8081")
	rootCmd.Flags().BoolVar(&testPlain, "plain", false, "run a single test without the full-screen UI")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newTextsCmd())

	return rootCmd
}

// settings holds everything resolved from flags, the config file and the
// environment.
type settings struct {
	cfg model.Config
	api config.API
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	if err := config.LoadEnv(".env", config.DefaultEnvPath()); err != nil {
		logErrf("failed to load .env: %v\n", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Lookup("mode") != nil {
		applyStringConfig(cmd, "mode", &testMode, fileCfg.Test.Mode)
		applyIntConfig(cmd, "duration", &testDuration, fileCfg.Test.Duration)
		applyStringConfig(cmd, "corpus", &testCorpus, fileCfg.Test.Corpus)
		applyStringConfig(cmd, "feed-addr", &testFeedAddr, fileCfg.Test.FeedAddr)
	}
	api := config.ResolveAPI(fileCfg.API)
	return settings{
		cfg: model.Config{
			Mode:       model.Mode(testMode),
			Duration:   testDuration,
			Text:       testText,
			TextID:     testTextID,
			CorpusPath: testCorpus,
			FeedAddr:   testFeedAddr,
			APIURL:     api.URL,
			APIToken:   api.Token,
		},
		api: api,
	}, nil
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cfg := s.cfg
	if cmd.Flags().Changed("text") || cmd.Flags().Changed("text-id") {
		cfg.Mode = model.ModeFixedText
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	words, err := wordlist.Resolve(cfg.CorpusPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus %s: %w", cfg.CorpusPath, err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	src, err := resolveSource(cmd.Context(), cfg, st)
	if err != nil {
		return err
	}

	sinks := []tui.NamedSink{{Name: "local", Sink: st}}
	if s.api.Enabled() {
		sinks = append(sinks, tui.NamedSink{Name: "remote", Sink: remote.New(s.api.URL, s.api.Token, nil)})
	}

	var opts []engine.Option
	if cfg.FeedAddr != "" {
		hub := livefeed.NewHub()
		srv, err := livefeed.Listen(cfg.FeedAddr, hub)
		if err != nil {
			return fmt.Errorf("failed to start live feed: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if serr := srv.Shutdown(ctx); serr != nil {
				logErrf("failed to stop live feed: %v\n", serr)
			}
		}()
		logErrf("live feed on ws://%s%s\n", srv.Addr(), livefeed.Path)
		opts = append(opts, engine.WithObserver(hub))
	}

	gen := generator.New(words)
	if testPlain {
		return runPlain(cmd.Context(), src, gen, sinks, opts)
	}

	e, err := engine.New(src, gen, opts...)
	if err != nil && !errors.Is(err, engine.ErrNoContent) {
		return err
	}
	m := tui.NewModel(e, tui.Options{Sinks: sinks, Texts: st, Timeout: requestTimeout})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func resolveSource(ctx context.Context, cfg model.Config, st *store.Store) (engine.Source, error) {
	switch cfg.Mode {
	case model.ModeCountUp:
		return engine.CountUp(), nil
	case model.ModeFixedText:
		if cfg.TextID > 0 {
			text, err := st.CustomText(ctx, cfg.TextID)
			if err != nil {
				return engine.Source{}, fmt.Errorf("failed to load text %d: %w", cfg.TextID, err)
			}
			return engine.StoredText(text), nil
		}
		return engine.FixedText(cfg.Text), nil
	default:
		return engine.Timed(cfg.Duration), nil
	}
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
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

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show results, personal bests and progress",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "only results of this mode: time, count-up or text")
	cmd.Flags().StringVar(&statsSince, "since", "", "only results since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "only the last N results")
	cmd.Flags().IntVar(&statsWindow, "window", stats.DefaultCurveWindow, "moving-average window for curves")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := parseHistoryFilter(statsMode, statsSince, statsLast)
	if err != nil {
		return err
	}
	if statsWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), st, filter)
		if err != nil {
			return err
		}
		return report.Render(os.Stdout, 0, stats.ColorEnabled(os.Stdout))
	}

	program := tea.NewProgram(statsui.NewModel(st, filter, statsWindow), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats UI: %w", err)
	}
	return nil
}

func parseHistoryFilter(mode, since string, last int) (model.HistoryFilter, error) {
	var filter model.HistoryFilter
	if mode != "" {
		m, err := parseMode(mode)
		if err != nil {
			return filter, err
		}
		filter.Mode = m
	}
	if since != "" {
		parsed, err := time.ParseInLocation(dateLayout, since, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid --since date %q (expected YYYY-MM-DD)", since)
		}
		filter.Since = &parsed
	}
	if last < 0 {
		return filter, fmt.Errorf("--last must be >= 0")
	}
	filter.Last = last
	return filter, nil
}

func newTextsCmd() *cobra.Command {
	textsCmd := &cobra.Command{
		Use:   "texts",
		Short: "List custom texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsListCmd,
	}
	textsCmd.PersistentFlags().BoolVar(&textsRemote, "remote", false, "use the remote API instead of the local store")

	addCmd := &cobra.Command{
		Use:   "add TEXT|-",
		Short: "Save a custom text (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runTextsAddCmd,
	}
	addCmd.Flags().BoolVar(&textsPublic, "public", false, "share the text with other users (remote only)")

	rmCmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a custom text by id",
		Args:  cobra.ExactArgs(1),
		RunE:  runTextsRmCmd,
	}

	textsCmd.AddCommand(addCmd, rmCmd)
	return textsCmd
}

// textStore is implemented by the local store and the remote client.
type textStore interface {
	CustomTexts(ctx context.Context) ([]model.CustomText, error)
	AddCustomText(ctx context.Context, content string, public bool) (int64, error)
}

func remoteClient(cmd *cobra.Command) (*remote.Client, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if !s.api.Enabled() {
		return nil, fmt.Errorf("remote API is not configured (set %s)", config.EnvAPIURL)
	}
	return remote.New(s.api.URL, s.api.Token, nil), nil
}

func withTextStore(cmd *cobra.Command, fn func(textStore) error) error {
	if textsRemote {
		client, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		return fn(client)
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	return fn(st)
}

func runTextsListCmd(cmd *cobra.Command, _ []string) error {
	return withTextStore(cmd, func(ts textStore) error {
		texts, err := ts.CustomTexts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list texts: %w", err)
		}
		return writeTexts(cmd.OutOrStdout(), texts)
	})
}

func writeTexts(w io.Writer, texts []model.CustomText) error {
	if len(texts) == 0 {
		_, err := fmt.Fprintln(w, "No custom texts.")
		return err
	}
	for _, t := range texts {
		public := ""
		if t.Public {
			public = " (public)"
		}
		id := t.RemoteID
		if id == "" {
			id = strconv.FormatInt(t.ID, 10)
		}
		if _, err := fmt.Fprintf(w, "%4s  %3d words%s  %s\n", id, len(strings.Fields(t.Content)), public, previewText(t.Content, 60)); err != nil {
			return err
		}
	}
	return nil
}

func runTextsAddCmd(cmd *cobra.Command, args []string) error {
	content := args[0]
	if content == "-" {
		data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	}
	if strings.TrimSpace(content) == "" {
		return store.ErrBlankText
	}
	return withTextStore(cmd, func(ts textStore) error {
		id, err := ts.AddCustomText(cmd.Context(), content, textsPublic)
		if err != nil {
			return fmt.Errorf("failed to add text: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved text %d\n", id)
		return err
	})
}

func runTextsRmCmd(cmd *cobra.Command, args []string) error {
	if textsRemote {
		client, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		return client.DeleteCustomText(cmd.Context(), args[0])
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid text id %q", args[0])
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	if err := st.DeleteCustomText(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete text %d: %w", id, err)
	}
	return nil
}

func previewText(content string, width int) string {
	line := strings.Join(strings.Fields(content), " ")
	runes := []rune(line)
	if len(runes) <= width {
		return line
	}
	return string(runes[:width-3]) + "..."
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
	return fmt.Sprintf(`# typeroo configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# mode = %q            # time, count-up or text
# duration = %d          # Countdown length in seconds for time mode
# corpus = ""            # Word list file, one word per line
# feed-addr = ""         # Serve a live WebSocket feed, e.g. ":8081"

[api]
# url = ""               # Remote API base URL (or %s)
# token = ""             # Bearer token (or %s)
`,
		defaultMode,
		defaultDuration,
		config.EnvAPIURL,
		config.EnvAPIToken,
	)
}

func parseMode(s string) (model.Mode, error) {
	switch m := model.Mode(strings.TrimSpace(s)); m {
	case model.ModeTimed, model.ModeCountUp, model.ModeFixedText:
		return m, nil
	default:
		return "", fmt.Errorf("invalid mode %q (use time, count-up or text)", s)
	}
}

func validateConfig(cfg model.Config) error {
	if _, err := parseMode(string(cfg.Mode)); err != nil {
		return fmt.Errorf("--mode: %w", err)
	}
	if cfg.Mode == model.ModeTimed && cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.Text != "" && cfg.TextID != 0 {
		return fmt.Errorf("--text and --text-id are mutually exclusive")
	}
	if cfg.TextID < 0 {
		return fmt.Errorf("--text-id must be > 0")
	}
	if cfg.Mode == model.ModeFixedText && strings.TrimSpace(cfg.Text) == "" && cfg.TextID == 0 {
		return fmt.Errorf("--mode text needs --text or --text-id")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
