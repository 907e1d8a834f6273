// Package analysis runs the external analysis process and decodes its report.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mentalwell/config"
	"mentalwell/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotConfigured = errors.New("analysis command not configured")
	ErrTimeout       = errors.New("analysis timed out")
	ErrCommandFailed = errors.New("analysis command failed")
	ErrNoJSON        = errors.New("no JSON object found in analysis output")
)

type Runner interface {
	Run(ctx context.Context) (*entity.AnalysisReport, error)
}

type CommandRunner struct {
	args    []string
	timeout time.Duration
	log     *logrus.Logger
	now     func() time.Time
}

func NewCommandRunner(cfg config.AnalysisConfig, log *logrus.Logger) *CommandRunner {
	return &CommandRunner{
		args:    strings.Fields(cfg.Command),
		timeout: cfg.Timeout,
		log:     log,
		now:     time.Now,
	}
}

// Run executes the command without arguments beyond the configured ones and
// returns the last JSON object it printed.
func (r *CommandRunner) Run(ctx context.Context) (*entity.AnalysisReport, error) {
	if len(r.args) == 0 {
		return nil, ErrNotConfigured
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.args[0], r.args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, ErrTimeout
	}
	if err != nil {
		r.log.WithField("stderr", stderr.String()).Warnf("Failed to run analysis: %+v", err)
		return nil, fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}
	if stderr.Len() > 0 {
		r.log.WithField("stderr", stderr.String()).Warn("Analysis wrote to stderr")
	}

	report, err := ParseOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	report.GeneratedAt = r.now().UTC()
	return report, nil
}

// ParseOutput decodes the last top-level JSON object in out. Text around and
// between objects is ignored; sections missing from the object stay nil.
func ParseOutput(out []byte) (*entity.AnalysisReport, error) {
	var last json.RawMessage
	for i := 0; i < len(out); {
		start := bytes.IndexByte(out[i:], '{')
		if start < 0 {
			break
		}
		start += i

		var obj json.RawMessage
		dec := json.NewDecoder(bytes.NewReader(out[start:]))
		if err := dec.Decode(&obj); err != nil {
			i = start + 1
			continue
		}
		last = obj
		i = start + int(dec.InputOffset())
	}

	if last == nil {
		return nil, ErrNoJSON
	}

	var report entity.AnalysisReport
	if err := json.Unmarshal(last, &report); err != nil {
		return nil, fmt.Errorf("decode analysis report: %w", err)
	}
	nullToNil(&report.Predictions)
	nullToNil(&report.Insights)
	nullToNil(&report.WeeklyTrends)
	nullToNil(&report.MoodPatterns)
	nullToNil(&report.UserClusters)
	nullToNil(&report.Recommendations)
	return &report, nil
}

func nullToNil(raw *json.RawMessage) {
	if bytes.Equal(bytes.TrimSpace(*raw), []byte("null")) {
		*raw = nil
	}
}
