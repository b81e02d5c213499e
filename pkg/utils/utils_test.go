package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateGroupCode(t *testing.T) {
	testCases := []struct {
		name      string
		code      string
		wantError bool
	}{
		{"digits", "1234", false},
		{"letters", "AI", false},
		{"brackets", "(01)", false},
		{"empty", "", true},
		{"inner space", "12 34", false},
		{"dash", "12-34", true},
		{"comma", "12,34", true},
		{"semicolon", "12;34", true},
		{"plus", "12+", false},
		{"inner plus", "A+B", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGroupCode(tc.code)
			if tc.wantError && err == nil {
				t.Errorf("expected error for group code '%s', got nil", tc.code)
			}
			if !tc.wantError && err != nil {
				t.Errorf("unexpected error for group code '%s': %v", tc.code, err)
			}
		})
	}
}

func TestScanLines(t *testing.T) {
	in := "first\r\n\nsecond\nthird"
	var got []string
	err := ScanLines(strings.NewReader(in), func(line string) error {
		got = append(got, line)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanLines error: %v", err)
	}
	want := []string{"first", "", "second", "third"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestScanLines_TrailingNewline(t *testing.T) {
	var got []string
	err := ScanLines(strings.NewReader("a\n\nb\n"), func(line string) error {
		got = append(got, line)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanLines error: %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "" || got[2] != "b" {
		t.Fatalf("expected [a  b], got %q", got)
	}
}

func TestScanLines_LongLine(t *testing.T) {
	long := strings.Repeat("7", 2<<20)
	in := "first\n" + long + "\nlast\n"

	var got []string
	err := ScanLines(strings.NewReader(in), func(line string) error {
		got = append(got, line)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanLines error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got))
	}
	if got[1] != long || got[2] != "last" {
		t.Fatalf("long line was not returned intact")
	}
}

func TestScanLines_StopsOnError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := ScanLines(strings.NewReader("a\nb\nc\n"), func(line string) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
