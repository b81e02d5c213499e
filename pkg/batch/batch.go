package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fahmitech/codecheck/pkg/utils"
	"github.com/fahmitech/codecheck/pkg/validator"
)

// VerdictOK is written for lines that match the grammar
const VerdictOK = "OK"

type Request struct {
	Validator *validator.Validator

	// Input is read when set, otherwise InputPath is opened
	Input     io.Reader
	InputPath string

	// Output is written when set, otherwise OutputPath is opened for appending
	Output     io.Writer
	OutputPath string

	Logger *slog.Logger
}

// Report summarizes one run
type Report struct {
	RunID   string         `yaml:"run_id" json:"run_id"`
	Total   int            `yaml:"total" json:"total"`
	Valid   int            `yaml:"valid" json:"valid"`
	Invalid int            `yaml:"invalid" json:"invalid"`
	ByKind  map[string]int `yaml:"by_kind,omitempty" json:"by_kind,omitempty"`
}

// YAML renders the report
func (r *Report) YAML() ([]byte, error) {
	b, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}

// WriteFile writes the YAML report to path
func (r *Report) WriteFile(path string) error {
	b, err := r.YAML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Run validates every line of the input and appends "{line}\t{verdict}" to the
// output. Invalid lines never stop the run; I/O failures and cancellation do.
func Run(ctx context.Context, req Request) (*Report, error) {
	if req.Validator == nil {
		return nil, fmt.Errorf("missing validator")
	}
	if req.Input == nil && req.InputPath == "" {
		return nil, fmt.Errorf("missing input")
	}
	if req.Output == nil && req.OutputPath == "" {
		return nil, fmt.Errorf("missing output")
	}

	report := &Report{RunID: uuid.NewString(), ByKind: map[string]int{}}
	log := req.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With(slog.String("run_id", report.RunID))

	in := req.Input
	if in == nil {
		f, err := os.Open(req.InputPath)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := req.Output
	if out == nil {
		f, err := os.OpenFile(req.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	log.Info("run started", slog.String("input", req.InputPath), slog.String("output", req.OutputPath))

	err := utils.ScanLines(in, func(line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Total++

		verdict := VerdictOK
		if err := req.Validator.Validate(line); err != nil {
			report.Invalid++
			verdict = err.Error()
			if verr, ok := validator.AsError(err); ok {
				report.ByKind[verr.Kind.String()]++
				log.Debug("invalid code", slog.Int("line", report.Total), slog.String("kind", verr.Kind.String()), slog.Int("position", verr.Position))
			}
		} else {
			report.Valid++
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\n", line, verdict); err != nil {
			return fmt.Errorf("write verdict: %w", err)
		}
		return nil
	})
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", flushErr)
	}
	if err != nil {
		log.Error("run aborted", slog.Int("processed", report.Total), slog.Any("error", err))
		return report, err
	}

	log.Info("run finished", slog.Int("total", report.Total), slog.Int("valid", report.Valid), slog.Int("invalid", report.Invalid))
	return report, nil
}
