package scheduling

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/flowforge/flowforge/pkg/models"
)

// CommandScheduler drives a cluster queue through its command line
// tools. It knows no wire protocol; the contract is argv in, lines out.
// Submit pipes the script to the submit argv on stdin; List must print
// one line per queued job: "<scheduler_id> <name> <status>".
type CommandScheduler struct {
	SubmitArgv []string
	ListArgv   []string
	Timeout    time.Duration
}

// NewCommandScheduler builds an adapter from argv templates. A zero
// timeout defaults to 30 seconds; the adapter must not hang the
// orchestration loop.
func NewCommandScheduler(submitArgv, listArgv []string, timeout time.Duration) (*CommandScheduler, error) {
	if len(submitArgv) == 0 || len(listArgv) == 0 {
		return nil, fmt.Errorf("command scheduler requires submit and list argv")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CommandScheduler{SubmitArgv: submitArgv, ListArgv: listArgv, Timeout: timeout}, nil
}

// Submit pipes the script into the configured submit command.
func (c *CommandScheduler) Submit(ctx context.Context, script, bundleID string) (models.JobStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.SubmitArgv[0], c.SubmitArgv[1:]...)
	cmd.Stdin = strings.NewReader(script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return models.StatusUnknown, fmt.Errorf("%w: %s failed: %v (%s)",
			ErrSchedulerUnavailable, c.SubmitArgv[0], err, strings.TrimSpace(stderr.String()))
	}
	return models.StatusSubmitted, nil
}

// Jobs runs the configured list command and parses its line output.
// Unparseable lines are skipped; the queue tool may print headers.
func (c *CommandScheduler) Jobs(ctx context.Context) ([]models.ClusterJob, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.ListArgv[0], c.ListArgv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s failed: %v (%s)",
			ErrSchedulerUnavailable, c.ListArgv[0], err, strings.TrimSpace(stderr.String()))
	}
	return ParseJobLines(stdout.String()), nil
}

// ParseJobLines parses "<scheduler_id> <name> <status>" lines into
// cluster job snapshots.
func ParseJobLines(out string) []models.ClusterJob {
	var jobs []models.ClusterJob
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		status, err := models.ParseStatus(fields[2])
		if err != nil {
			continue
		}
		jobs = append(jobs, models.ClusterJob{
			SchedulerID: fields[0],
			Name:        fields[1],
			Status:      status,
		})
	}
	return jobs
}
