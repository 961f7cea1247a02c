// Package main provides the CLI entrypoint for tuiread.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/corpus"
	"github.com/verte-zerg/tuiread/internal/logger"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/progress"
	"github.com/verte-zerg/tuiread/internal/stats"
	"github.com/verte-zerg/tuiread/internal/statsui"
	"github.com/verte-zerg/tuiread/internal/store"
	"github.com/verte-zerg/tuiread/internal/training"
	"github.com/verte-zerg/tuiread/internal/tui"
)

const defaultCurveWindow = 3

// settings is the resolved configuration of one invocation.
type settings struct {
	Training   model.TrainingConfig
	CorpusPath string
	DBPath     string
	LogLevel   string
	LogPath    string
}

var (
	trainReadSeconds   int
	trainVerifySeconds int
	trainFinalSeconds  int
	trainRestSeconds   int
	trainMaxCycles     int
	trainEphemeral     bool

	globalDB       string
	globalCorpus   string
	globalLogLevel string

	resetYes bool

	historyLast   int
	historyWindow int
	historyExport string
	historyPlain  bool

	corpusCheck bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := model.DefaultTrainingConfig()
	rootCmd := &cobra.Command{
		Use:           "tuiread",
		Short:         "TUI reading comprehension trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrainCmd,
	}

	rootCmd.Flags().IntVar(&trainReadSeconds, "read-seconds", defaults.ReadSeconds, "seconds per sentence in timed reading")
	rootCmd.Flags().IntVar(&trainVerifySeconds, "verify-seconds", defaults.VerifySeconds, "seconds of the verification window")
	rootCmd.Flags().IntVar(&trainFinalSeconds, "final-seconds", defaults.FinalSeconds, "seconds for the final no-voice sentence")
	rootCmd.Flags().IntVar(&trainRestSeconds, "rest-seconds", defaults.RestSeconds, "seconds of the rest period")
	rootCmd.Flags().IntVar(&trainMaxCycles, "max-cycles", defaults.MaxCycles, "countdown cycles before the drill moves on")
	rootCmd.Flags().BoolVar(&trainEphemeral, "ephemeral", false, "keep progress in memory only")

	rootCmd.PersistentFlags().StringVar(&globalDB, "db", "", "database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&globalCorpus, "corpus", "", "corpus TOML file (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "info", "diagnostic log level")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newCorpusCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadSettings merges the config file under any flags not set explicitly.
func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	return resolveSettings(cmd, fileCfg)
}

func resolveSettings(cmd *cobra.Command, fileCfg config.FileConfig) (settings, error) {
	applyIntConfig(cmd, "read-seconds", &trainReadSeconds, fileCfg.Training.ReadSeconds)
	applyIntConfig(cmd, "verify-seconds", &trainVerifySeconds, fileCfg.Training.VerifySeconds)
	applyIntConfig(cmd, "final-seconds", &trainFinalSeconds, fileCfg.Training.FinalSeconds)
	applyIntConfig(cmd, "rest-seconds", &trainRestSeconds, fileCfg.Training.RestSeconds)
	applyIntConfig(cmd, "max-cycles", &trainMaxCycles, fileCfg.Training.MaxCycles)
	applyStringConfig(cmd, "corpus", &globalCorpus, fileCfg.Training.Corpus)
	applyStringConfig(cmd, "db", &globalDB, fileCfg.Training.DB)
	applyStringConfig(cmd, "log-level", &globalLogLevel, fileCfg.Log.Level)

	s := settings{
		Training: model.TrainingConfig{
			ReadSeconds:   trainReadSeconds,
			VerifySeconds: trainVerifySeconds,
			FinalSeconds:  trainFinalSeconds,
			RestSeconds:   trainRestSeconds,
			MaxCycles:     trainMaxCycles,
		},
		CorpusPath: globalCorpus,
		DBPath:     globalDB,
		LogLevel:   globalLogLevel,
		LogPath:    config.DefaultLogPath(),
	}
	if s.DBPath == "" {
		s.DBPath = config.DefaultDBPath()
	}
	if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
		s.LogPath = *fileCfg.Log.File
	}
	if err := validateConfig(s.Training); err != nil {
		return settings{}, err
	}
	return s, nil
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, err := logger.New(s.LogPath, s.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	c, err := corpus.Load(s.CorpusPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	ctx := context.Background()
	var (
		kv   progress.KV
		opts []training.Option
	)
	if trainEphemeral {
		kv = progress.NewMemoryKV()
	} else {
		st, err := store.Open(s.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		kv = st
		opts = append(opts, training.WithRecorder(st))
	}

	log.Info("training started",
		zap.String("corpus", c.Source),
		zap.Bool("ephemeral", trainEphemeral),
		zap.Int("read_seconds", s.Training.ReadSeconds),
		zap.Int("max_cycles", s.Training.MaxCycles),
	)
	tracker := progress.NewTracker(ctx, progress.NewKVGateway(kv, log), log)
	session := training.New(tracker, c, s.Training, log, opts...)
	program := tea.NewProgram(tui.NewModel(ctx, session, log), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// openTracker opens the store and loads the saved progress for the
// non-interactive commands.
func openTracker(ctx context.Context, s settings) (*progress.Tracker, *store.Store, error) {
	st, err := store.Open(s.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	log, err := logger.New(s.LogPath, s.LogLevel)
	if err != nil {
		log = zap.NewNop()
		logErrf("failed to open log: %v\n", err)
	}
	return progress.NewTracker(ctx, progress.NewKVGateway(st, log), log), st, nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show saved progress",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	c, err := corpus.Load(s.CorpusPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	tracker, st, err := openTracker(cmd.Context(), s)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return renderStatus(cmd.OutOrStdout(), tracker.Progress(), c)
}

func renderStatus(w io.Writer, p model.UserProgress, c *corpus.Corpus) error {
	step := fmt.Sprintf("%d of %d", p.CurrentStep, model.TrainingSteps)
	if p.IsFinished() {
		step = "finished"
	}
	path := string(p.UserPath)
	if path == "" {
		path = "none"
	}
	lines := []string{
		fmt.Sprintf("Step: %s", step),
		fmt.Sprintf("Path: %s", path),
		fmt.Sprintf("Steps: %s", stepBadges(p)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if len(p.Marks) == 0 {
		_, err := fmt.Fprintln(w, "No marks yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	rows := make([][]string, 0, len(p.Marks))
	for _, mk := range p.Marks {
		text := ""
		if sentence, ok := c.Sentence(mk.SentenceID); ok {
			text = truncate(sentence.Text, 48)
		}
		rows = append(rows, []string{strconv.Itoa(mk.SentenceID), mk.Kind.String(), text})
	}
	return stats.RenderTable(w, []string{"#", "Mark", "Sentence"}, rows, map[int]bool{0: true})
}

func stepBadges(p model.UserProgress) string {
	completed := map[int]bool{}
	for _, s := range p.CompletedSteps {
		completed[s] = true
	}
	badges := make([]string, 0, model.TrainingSteps)
	for s := 1; s <= model.TrainingSteps; s++ {
		switch {
		case completed[s]:
			badges = append(badges, fmt.Sprintf("✓%d", s))
		case s == p.CurrentStep:
			badges = append(badges, fmt.Sprintf("[%d]", s))
		default:
			badges = append(badges, strconv.Itoa(s))
		}
	}
	return strings.Join(badges, " ")
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear saved progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if !resetYes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to reset without --yes when stdin is not a terminal")
		}
		ok, err := confirm(os.Stdin, cmd.ErrOrStderr(), "Reset all progress? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Reset cancelled.")
			return nil
		}
	}
	tracker, st, err := openTracker(cmd.Context(), s)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := tracker.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
	return err
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show step completion history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N step completions")
	cmd.Flags().IntVar(&historyWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&historyExport, "export", "", "write the history to an .xlsx file")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a table instead of the interactive view")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(s.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	cfg := model.HistoryConfig{Last: historyLast}
	if historyExport == "" && !historyPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		program := tea.NewProgram(statsui.NewModel(st, cfg, historyWindow), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if historyExport != "" {
		if err := stats.ExportXLSX(historyExport, report); err != nil {
			return err
		}
		logErrf("Wrote %s\n", historyExport)
		return nil
	}
	return report.Render(cmd.OutOrStdout(), historyWindow, stats.TerminalWidth())
}

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Print or validate the active corpus",
		Args:  cobra.NoArgs,
		RunE:  runCorpusCmd,
	}
	cmd.Flags().BoolVar(&corpusCheck, "check", false, "only validate the corpus")
	return cmd
}

func runCorpusCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	c, err := corpus.Load(s.CorpusPath)
	if err != nil {
		return fmt.Errorf("invalid corpus: %w", err)
	}
	if corpusCheck {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d base, %d garbled)\n", c.Source, len(c.Base), len(c.Garbled))
		return err
	}
	return renderCorpus(cmd.OutOrStdout(), c)
}

func renderCorpus(w io.Writer, c *corpus.Corpus) error {
	if _, err := fmt.Fprintf(w, "Source: %s\nSymbols: %s\n\n", c.Source, strings.Join(c.Symbols, " ")); err != nil {
		return err
	}
	sections := []struct {
		title     string
		sentences []model.Sentence
	}{
		{"Base", c.Base},
		{"Path A", c.PathA},
		{"Path B", c.PathB},
		{"Path C", c.PathC},
		{"Garbled", c.Garbled},
	}
	for _, sec := range sections {
		if _, err := fmt.Fprintln(w, sec.title); err != nil {
			return err
		}
		rows := make([][]string, 0, len(sec.sentences))
		for _, sentence := range sec.sentences {
			rows = append(rows, []string{strconv.Itoa(sentence.ID), sentence.Text})
		}
		if err := stats.RenderTable(w, nil, rows, map[int]bool{0: true}); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
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
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless path already exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
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

func validateConfig(cfg model.TrainingConfig) error {
	if cfg.ReadSeconds <= 0 {
		return fmt.Errorf("--read-seconds must be > 0")
	}
	if cfg.VerifySeconds <= 0 {
		return fmt.Errorf("--verify-seconds must be > 0")
	}
	if cfg.FinalSeconds <= 0 {
		return fmt.Errorf("--final-seconds must be > 0")
	}
	if cfg.RestSeconds <= 0 {
		return fmt.Errorf("--rest-seconds must be > 0")
	}
	if cfg.MaxCycles <= 0 {
		return fmt.Errorf("--max-cycles must be > 0")
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
