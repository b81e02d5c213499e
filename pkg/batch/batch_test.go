package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fahmitech/codecheck/pkg/grammar"
	"github.com/fahmitech/codecheck/pkg/validator"
)

func newValidator(t *testing.T, text string) *validator.Validator {
	t.Helper()
	rules, err := grammar.Parse(text)
	require.NoError(t, err)
	v, err := validator.New(rules)
	require.NoError(t, err)
	return v
}

func TestRun_WritesOneVerdictPerLine(t *testing.T) {
	in := strings.Join([]string{
		"12341234567",
		"1234123456789",
		"",
		"12341234567123123",
		`1234123456712312345\u001d`,
	}, "\r\n")

	var out bytes.Buffer
	report, err := Run(context.Background(), Request{
		Validator: newValidator(t, "1234 - 7, 123 - 5+"),
		Input:     strings.NewReader(in),
		Output:    &out,
	})
	require.NoError(t, err)

	want := "12341234567\texpected application group 123, found <end of code>. Position 12.\n" +
		"1234123456789\texpected application group 123, found 89. Position 12.\n" +
		"\texpected application group 1234, found <end of code>. Position 1.\n" +
		"12341234567123123\tapplication group 123 length below minimum, expected 5+, found 3. Position 12.\n" +
		`1234123456712312345\u001d` + "\tOK\n"
	assert.Equal(t, want, out.String())

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 1, report.Valid)
	assert.Equal(t, 4, report.Invalid)
	assert.Equal(t, map[string]int{"group_mismatch": 3, "length_below_minimum": 1}, report.ByKind)
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
}

func TestRun_LongLineDoesNotStopRun(t *testing.T) {
	long := "1234" + strings.Repeat("1", 2<<20)
	in := "12341234567\n" + long + "\n12341234567\n"

	var out bytes.Buffer
	report, err := Run(context.Background(), Request{
		Validator: newValidator(t, "1234 - 7"),
		Input:     strings.NewReader(in),
		Output:    &out,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Valid)
	assert.Equal(t, map[string]int{"trailing_content": 1}, report.ByKind)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "12341234567\tOK", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ". Position 12."))
	assert.Equal(t, "12341234567\tOK", lines[2])
}

func TestRun_AppendsToOutputFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "codes.txt")
	outPath := filepath.Join(dir, "checkedCodes.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("12341234567\n123412345\n"), 0o600))
	require.NoError(t, os.WriteFile(outPath, []byte("previous\tOK\n"), 0o600))

	req := Request{
		Validator:  newValidator(t, "1234 - 7"),
		InputPath:  inPath,
		OutputPath: outPath,
	}
	_, err := Run(context.Background(), req)
	require.NoError(t, err)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "previous\tOK\n"+
		"12341234567\tOK\n"+
		"123412345\tapplication group 1234 has variable length, fixed length 7 expected. Position 1.\n", string(got))
}

func TestRun_MissingInputFile(t *testing.T) {
	_, err := Run(context.Background(), Request{
		Validator:  newValidator(t, "1234 - 7"),
		InputPath:  filepath.Join(t.TempDir(), "missing.txt"),
		OutputPath: filepath.Join(t.TempDir(), "out.txt"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")
}

func TestRun_RequestValidation(t *testing.T) {
	v := newValidator(t, "1234 - 7")

	_, err := Run(context.Background(), Request{Input: strings.NewReader(""), Output: &bytes.Buffer{}})
	assert.Error(t, err)

	_, err = Run(context.Background(), Request{Validator: v, Output: &bytes.Buffer{}})
	assert.Error(t, err)

	_, err = Run(context.Background(), Request{Validator: v, Input: strings.NewReader("")})
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	report, err := Run(ctx, Request{
		Validator: newValidator(t, "1234 - 7"),
		Input:     strings.NewReader("12341234567\n12341234567\n"),
		Output:    &out,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Total)
	assert.Empty(t, out.String())
}

func TestReport_YAML(t *testing.T) {
	r := &Report{RunID: "id", Total: 2, Valid: 1, Invalid: 1, ByKind: map[string]int{"trailing_content": 1}}
	b, err := r.YAML()
	require.NoError(t, err)

	var back Report
	require.NoError(t, yaml.Unmarshal(b, &back))
	assert.Equal(t, *r, back)

	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	require.NoError(t, r.WriteFile(path))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, b, onDisk)
}
