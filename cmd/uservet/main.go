package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/uservet/uservet/internal/check"
	"github.com/uservet/uservet/internal/client"
	"github.com/uservet/uservet/internal/config"
	"github.com/uservet/uservet/internal/testdata"
	"github.com/uservet/uservet/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for uservet.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Run     RunCmd           `cmd:"" help:"Run checks against the user-creation endpoint."`
	List    ListCmd          `cmd:"" help:"List available checks."`
}

// RunCmd executes checks against the configured endpoint.
type RunCmd struct {
	Checks      []string      `arg:"" optional:"" help:"Checks to run (default: all)."`
	BaseURL     string        `help:"Target endpoint URL (overrides config)."`
	RollNumber  string        `help:"Value for the roll-number header (overrides config)."`
	Timeout     time.Duration `help:"Per-request timeout (overrides config)."`
	FailureMode string        `help:"Behavior after a failing check: abort or continue."`
	Plain       bool          `help:"Force plain text output even if stdout is a TTY."`
	Verbose     bool          `short:"v" help:"Log request and response transcripts."`
}

// checkRunner abstracts check.Runner.Run for testing.
type checkRunner interface {
	Run(ctx context.Context) ([]check.Result, error)
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/uservet/config.yaml"),
		".uservet/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run executes the run command.
func (r *RunCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	// Apply CLI flag overrides.
	if r.BaseURL != "" {
		cfg.Target.BaseURL = r.BaseURL
	}
	if r.RollNumber != "" {
		cfg.Target.RollNumber = r.RollNumber
	}
	if r.Timeout > 0 {
		cfg.Target.Timeout = r.Timeout
	}
	if r.FailureMode != "" {
		cfg.Run.FailureMode = r.FailureMode
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	defs, err := resolveChecks(r.Checks)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	harness := client.New(cfg.Target.BaseURL, cfg.Target.RollNumber,
		client.WithTimeout(cfg.Target.Timeout),
		client.WithLogger(newLogger(r.Verbose)),
	)
	env := check.Env{
		Harness: harness,
		Phone:   testdata.PhoneNumber,
		Email:   testdata.Email,
	}

	// Create a cancellable context for the run. The cancel func is passed to
	// the TUI so keyboard abort (q / Ctrl+C) can cancel the run gracefully.
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	bridge := tui.NewBridge()
	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     os.Stdout,
		ForcePlain: r.Plain,
		Checks:     checkNames(defs),
		CancelFunc: runCancel,
	})

	runner := check.NewRunner(env,
		check.WithChecks(defs),
		check.WithFailureMode(check.FailureMode(cfg.Run.FailureMode)),
		check.WithStatusCallback(bridgeStatusCallback(bridge)),
	)

	return r.run(runner, display, bridge, runCtx)
}

// run executes the checks with display lifecycle management, enabling testable wiring.
func (r *RunCmd) run(runner checkRunner, display tui.Display, bridge *tui.Bridge, runCtx context.Context) error {
	// Start display goroutine.
	displayDone := make(chan error, 1)
	go func() {
		displayDone <- display.Run(context.Background(), bridge.Events())
	}()

	// Wrap with OS signal handling so Ctrl+C in non-TUI mode still works.
	ctx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	_, runErr := runner.Run(ctx)

	// Signal display completion.
	if runErr != nil {
		bridge.Error(runErr)
	} else {
		bridge.Done()
	}

	// Wait for display to finish (so it releases the terminal).
	<-displayDone

	return runErr
}

// ListCmd prints the available checks.
type ListCmd struct{}

// Run executes the list command.
func (l *ListCmd) Run() error {
	return l.run(os.Stdout)
}

// run prints the check list to w, enabling testable wiring.
func (l *ListCmd) run(w io.Writer) error {
	for _, def := range check.DefaultChecks() {
		_, _ = fmt.Fprintf(w, "%-16s %s\n", def.Name, def.Summary)
	}
	return nil
}

// resolveChecks maps names to built-in check definitions, keeping the default
// execution order. An empty list selects every check.
func resolveChecks(names []string) ([]check.Definition, error) {
	defs := check.DefaultChecks()
	if len(names) == 0 {
		return defs, nil
	}

	var selected []check.Definition
	for _, name := range names {
		def, ok := check.Find(defs, name)
		if !ok {
			return nil, fmt.Errorf("unknown check %q (try: uservet list)", name)
		}
		selected = append(selected, def)
	}
	return selected, nil
}

// checkNames extracts check names from a slice of Definitions.
func checkNames(defs []check.Definition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

// newLogger builds the transcript logger. Transcripts are debug-level, so the
// default warn level keeps normal runs quiet.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// bridgeStatusCallback returns a StatusCallback that converts runner
// StatusUpdates to tui.StatusUpdateMsg and sends them through the bridge.
func bridgeStatusCallback(bridge *tui.Bridge) check.StatusCallback {
	return func(su check.StatusUpdate) {
		msg := tui.StatusUpdateMsg{
			Check:    su.Check,
			Status:   tui.CheckState(su.Status),
			Progress: su.Progress,
			Duration: su.Duration,
		}
		if su.Verdict != nil {
			msg.Summary = su.Verdict.Summary
			msg.Detail = su.Verdict.Detail
		}
		bridge.Send(msg)
	}
}

// Exit codes.
const (
	exitSuccess = 0
	exitCheck   = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var re *check.RunError
	if errors.As(err, &re) {
		return exitCheck
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kong.Vars{"version": version + " " + commit + " " + date})
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
