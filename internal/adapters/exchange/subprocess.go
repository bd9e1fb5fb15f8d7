package exchange

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// SubprocessDispatcher runs the dispatch policy as a separate OS process: it
// rewrites the three input files, invokes the configured command, requires
// the success flag on stdout, and only trusts output files whose modification
// times fall strictly inside the invocation window.
type SubprocessDispatcher struct {
	dir         string
	command     string
	successFlag string
	clock       shared.Clock
}

func NewSubprocessDispatcher(dir, command, successFlag string, clock shared.Clock) *SubprocessDispatcher {
	return &SubprocessDispatcher{
		dir:         dir,
		command:     command,
		successFlag: successFlag,
		clock:       clock,
	}
}

func (s *SubprocessDispatcher) Dispatch(ctx context.Context, snapshot *dispatch.Snapshot) (*dispatch.Result, error) {
	if err := WriteInputs(s.dir, snapshot); err != nil {
		return nil, err
	}

	started := s.clock.Now()
	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	cmd.Dir = s.dir
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, shared.NewPolicyFailedError("algorithm exceeded its runtime limit")
	}
	if err != nil {
		log.Printf("exchange: algorithm output:\n%s", output)
		return nil, shared.NewPolicyFailedError(fmt.Sprintf("algorithm exited abnormally: %v", err))
	}
	if !strings.Contains(string(output), s.successFlag) {
		log.Printf("exchange: algorithm output:\n%s", output)
		return nil, shared.NewPolicyFailedError("algorithm did not signal " + s.successFlag)
	}
	finished := s.clock.Now()

	for _, name := range []string{DestinationFile, PlannedRouteFile} {
		if err := checkFreshness(filepath.Join(s.dir, name), started, finished); err != nil {
			return nil, err
		}
	}
	return ReadOutputs(s.dir)
}

// checkFreshness rejects an output file whose mtime is not strictly inside
// the invocation window. A stale file means the algorithm never wrote it.
func checkFreshness(path string, started, finished time.Time) error {
	info, err := os.Stat(path)
	if err != nil {
		return shared.NewPolicyFailedError(fmt.Sprintf("missing output file %s", filepath.Base(path)))
	}
	mtime := info.ModTime()
	if !mtime.After(started) || !mtime.Before(finished) {
		return shared.NewPolicyFailedError(fmt.Sprintf(
			"output file %s is stale: modified %s outside (%s, %s)",
			filepath.Base(path), mtime.Format(time.RFC3339Nano),
			started.Format(time.RFC3339Nano), finished.Format(time.RFC3339Nano)))
	}
	return nil
}
