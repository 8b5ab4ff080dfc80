package cli

import (
	"bytes"
	"strings"
	"testing"

	"escape-room-service/internal/content"
	"escape-room-service/internal/domain"
)

func TestCheckReportsSectionTotals(t *testing.T) {
	var rounds []domain.Round
	for _, r := range content.SampleRounds() {
		rounds = append(rounds, r)
	}

	var out bytes.Buffer
	if err := writeCheckReport(&out, rounds); err != nil {
		t.Fatalf("check failed: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "section 1: 400 points") {
		t.Fatalf("expected section total, got:\n%s", out.String())
	}
}

func TestCheckFlagsBrokenRounds(t *testing.T) {
	broken := content.SampleRounds()["s1-r3-evidence-ranking"]
	broken.Scoring.MaxScore = 90

	var out bytes.Buffer
	if err := writeCheckReport(&out, []domain.Round{broken}); err == nil {
		t.Fatalf("expected validation failure")
	}
	if !strings.Contains(out.String(), "scoring.maxScore") {
		t.Fatalf("expected failing field in report, got:\n%s", out.String())
	}
}

func TestCheckCommandReadsContentDir(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", "../../content"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("check content dir: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "s1-r4-quality-checklist") {
		t.Fatalf("expected shipped rounds listed, got:\n%s", out.String())
	}
}
