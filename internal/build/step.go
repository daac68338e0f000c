package build

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wharfhq/wharfd/internal/manifest"
	"github.com/wharfhq/wharfd/internal/runtime"
)

// Executes a single step, dispatching to operation execution or state
// mutation depending on the step's fields.
func executeStep(ctx context.Context, ctr *runtime.Container, cs *contextSet, step manifest.Step, state *stepState) error {
	if step.Run != "" || step.Copy != "" {
		return executeOperation(ctx, ctr, cs, step, state)
	}

	// Standalone modifier(s): persist in state.
	state.apply(step)
	return nil
}

// Executes a run or copy operation with scoped modifier overrides.
//
// Step-level modifiers override the persistent state for this operation only.
// The persistent state is not modified.
func executeOperation(ctx context.Context, ctr *runtime.Container, cs *contextSet, step manifest.Step, state *stepState) error {
	resolved := state.resolve(step)

	if resolved.workdir != "" {
		if err := ctr.MkdirAll(ctx, resolved.workdir); err != nil {
			return err
		}
	}

	switch {
	case step.Run != "":
		slog.Debug("run", "command", step.Run, "shell", resolved.shell)
		result, err := ctr.Exec(ctx, resolved.shell, step.Run, resolved.environ(), resolved.workdir)
		if err != nil {
			return err
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, result.ExitCode, result.Stderr)
		}

	case step.Copy != "":
		if err := executeCopy(ctx, ctr, cs, step.Copy, resolved.workdir); err != nil {
			return err
		}
	}

	return nil
}
