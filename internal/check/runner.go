package check

import (
	"context"
	"fmt"
	"time"
)

// FailureMode controls what the runner does after a non-passing check.
type FailureMode string

const (
	FailAbort    FailureMode = "abort"    // stop at the first non-passing check
	FailContinue FailureMode = "continue" // run everything, report at the end
)

// State is the display-facing lifecycle of a check execution.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StatePassed  State = "passed"
	StateFailed  State = "failed"
	StateError   State = "error"
)

// StatusUpdate carries progress information for a single check execution.
type StatusUpdate struct {
	Check    string        // Check name.
	Status   State         // Current state.
	Progress string        // Human-readable progress (e.g. "2/3").
	Duration time.Duration // Elapsed time, set on completion.
	Verdict  *Verdict      // Populated on completion, nil while running.
}

// StatusCallback receives check progress updates.
type StatusCallback func(StatusUpdate)

// Result is the recorded outcome of one executed check.
type Result struct {
	Name     string
	Verdict  Verdict
	Duration time.Duration
}

// RunError reports the first check that did not pass.
type RunError struct {
	Check   string
	Verdict Verdict
}

func (e *RunError) Error() string {
	if e.Verdict.Detail != "" {
		return fmt.Sprintf("check %q %s: %s (%s)",
			e.Check, e.Verdict.Status, e.Verdict.Summary, e.Verdict.Detail)
	}
	return fmt.Sprintf("check %q %s: %s", e.Check, e.Verdict.Status, e.Verdict.Summary)
}

// Runner executes checks sequentially. Checks share no state; each run is
// independent, with no retry and no backoff.
type Runner struct {
	env         Env
	checks      []Definition
	failureMode FailureMode
	callback    StatusCallback
}

// Option configures a Runner.
type Option func(*Runner)

// WithChecks overrides the default check list.
func WithChecks(checks []Definition) Option {
	return func(r *Runner) { r.checks = checks }
}

// WithFailureMode sets what happens after a non-passing check.
func WithFailureMode(mode FailureMode) Option {
	return func(r *Runner) { r.failureMode = mode }
}

// WithStatusCallback sets the callback for progress updates.
func WithStatusCallback(cb StatusCallback) Option {
	return func(r *Runner) { r.callback = cb }
}

// NewRunner creates a Runner with the given environment and options.
func NewRunner(env Env, opts ...Option) *Runner {
	r := &Runner{
		env:         env,
		checks:      DefaultChecks(),
		failureMode: FailAbort,
		callback:    func(StatusUpdate) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the configured checks in order. It returns the results of
// every executed check and, if any check did not pass, a *RunError for the
// first such check. Under FailAbort nothing runs past the first failure.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	var results []Result
	var firstFailure *RunError

	for i, def := range r.checks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		progress := fmt.Sprintf("%d/%d", i+1, len(r.checks))
		r.callback(StatusUpdate{Check: def.Name, Status: StateRunning, Progress: progress})

		start := time.Now()
		verdict := def.Run(ctx, r.env)
		elapsed := time.Since(start)

		results = append(results, Result{Name: def.Name, Verdict: verdict, Duration: elapsed})
		r.callback(StatusUpdate{
			Check:    def.Name,
			Status:   stateFor(verdict.Status),
			Progress: progress,
			Duration: elapsed,
			Verdict:  &verdict,
		})

		if verdict.Status != StatusPass {
			if firstFailure == nil {
				firstFailure = &RunError{Check: def.Name, Verdict: verdict}
			}
			if r.failureMode == FailAbort {
				break
			}
		}
	}

	if firstFailure != nil {
		return results, firstFailure
	}
	return results, nil
}

// stateFor maps a verdict status to its display state.
func stateFor(s Status) State {
	switch s {
	case StatusPass:
		return StatePassed
	case StatusFail:
		return StateFailed
	default:
		return StateError
	}
}
