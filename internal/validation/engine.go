package validation

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Stage names the orchestrator's progression through a validation call.
// The order is fixed; structural failure jumps straight to done.
type Stage string

const (
	StageReceived   Stage = "RECEIVED"
	StageStructural Stage = "STRUCTURALLY_VALIDATED"
	StageOverlap    Stage = "OVERLAP_CHECKED"
	StageThreshold  Stage = "THRESHOLD_CHECKED"
	StageUniqueness Stage = "UNIQUENESS_CHECKED"
	StageDone       Stage = "DONE"
)

// VerdictRecorder receives the outcome of every validation call, typically
// backed by a prometheus counter.
type VerdictRecorder interface {
	RecordVerdict(kind, outcome string)
}

// Engine is the validation façade every write path calls before a commit.
// It is stateless, holds only read access to storage, and is safe for
// concurrent use.
type Engine struct {
	store    Store
	policy   Policy
	logger   *slog.Logger
	recorder VerdictRecorder
}

// NewEngine constructs the engine with explicit dependencies.
func NewEngine(store Store, policy Policy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, policy: policy, logger: logger}
}

// SetVerdictRecorder injects the metrics hook.
func (e *Engine) SetVerdictRecorder(r VerdictRecorder) {
	e.recorder = r
}

// Policy exposes the injected thresholds, mainly for handlers echoing the
// effective limits back to clients.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Validate runs every check relevant to the change request and returns a
// single verdict. Business conflicts are data inside the verdict; only
// malformed input (ErrInvalidRequest) or storage failure/cancellation
// (ErrUnavailable) surface as errors. Business checks never short-circuit,
// so one round trip reports every problem at once.
func (e *Engine) Validate(ctx context.Context, req ChangeRequest) (Verdict, error) {
	e.record(req.Kind, "received")
	if err := validateStructure(req); err != nil {
		e.record(req.Kind, "invalid_request")
		e.logger.Debug("validation rejected structurally",
			slog.String("kind", string(req.Kind)), slog.Any("error", err))
		return Verdict{}, err
	}

	checks := []struct {
		stage Stage
		fn    checkFn
	}{
		{StageOverlap, overlapChecks(req)},
		{StageThreshold, thresholdChecks(req)},
		{StageUniqueness, uniquenessChecks(req)},
		{StageDone, relatedChecks(req)},
	}

	// Sub-checks have no ordering dependency, so they fan out across
	// goroutines; the deterministic sort below makes the merge stable.
	results := make([][]Finding, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		if c.fn == nil {
			continue
		}
		i, fn := i, c.fn
		g.Go(func() error {
			findings, err := fn(gctx, e.store, e.policy)
			if err != nil {
				return err
			}
			results[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.record(req.Kind, "unavailable")
		e.logger.Warn("validation indeterminate",
			slog.String("kind", string(req.Kind)), slog.Any("error", err))
		return Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		e.record(req.Kind, "unavailable")
		return Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	verdict := assemble(results)
	for _, c := range checks {
		e.logger.Debug("validation stage complete",
			slog.String("kind", string(req.Kind)), slog.String("stage", string(c.stage)))
	}

	outcome := "valid"
	if !verdict.Valid {
		outcome = "invalid"
	}
	e.record(req.Kind, outcome)
	e.logger.Info("validation verdict",
		slog.String("kind", string(req.Kind)),
		slog.Bool("valid", verdict.Valid),
		slog.Int("errors", len(verdict.Errors)),
		slog.Int("warnings", len(verdict.Warnings)))
	return verdict, nil
}

func assemble(results [][]Finding) Verdict {
	verdict := Verdict{Valid: true}
	for _, findings := range results {
		for _, f := range findings {
			switch f.Severity {
			case SeverityError:
				verdict.Errors = append(verdict.Errors, f)
			case SeverityWarning:
				verdict.Warnings = append(verdict.Warnings, f)
			default:
				verdict.Related = append(verdict.Related, f)
			}
		}
	}
	SortFindings(verdict.Errors)
	SortFindings(verdict.Warnings)
	SortFindings(verdict.Related)
	verdict.Valid = len(verdict.Errors) == 0
	return verdict
}

func (e *Engine) record(kind ChangeKind, outcome string) {
	if e.recorder != nil {
		e.recorder.RecordVerdict(string(kind), outcome)
	}
}
