package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestProgressDisabledIsNoop(t *testing.T) {
	var out bytes.Buffer
	p := startProgress(false, &out, "Asking claude", 1)
	p.Finished()
	p.Stop()
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestProgressCountsAndClears(t *testing.T) {
	prev := progressTickInterval
	progressTickInterval = 5 * time.Millisecond
	t.Cleanup(func() { progressTickInterval = prev })

	var out bytes.Buffer
	p := startProgress(true, &out, "Asking claude, gemini", 2)
	time.Sleep(20 * time.Millisecond)
	p.Finished()
	time.Sleep(20 * time.Millisecond)
	p.Stop()
	p.Stop()

	got := out.String()
	for _, pattern := range []string{
		`Asking claude, gemini 0/2 \d+\.\ds`,
		`Asking claude, gemini 1/2 \d+\.\ds`,
		`\r +\r$`,
	} {
		if !regexp.MustCompile(pattern).MatchString(got) {
			t.Fatalf("progress output %q does not match %s", got, pattern)
		}
	}
}

func TestProgressDefaultLabel(t *testing.T) {
	var out bytes.Buffer
	p := startProgress(true, &out, "  ", 0)
	p.Stop()
	got := out.String()
	if !strings.Contains(got, "Waiting for backends") {
		t.Fatalf("progress output missing default label: %q", got)
	}
	if strings.Contains(got, "/0") {
		t.Fatalf("progress output should omit the count without a total: %q", got)
	}
}
