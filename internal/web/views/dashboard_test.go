package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/vetimport/internal/core"
)

func TestDashboard(t *testing.T) {
	runs := []core.ImportRun{
		{
			Source:    "<script>ut.csv",
			Status:    core.StatusCompleted,
			StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Summary:   "Imported 2 veterans in 1 branches in 1 wars.",
		},
		{
			Source: "id.csv",
			Status: core.StatusFailed,
			Error:  "row 3: duplicate key value violates unique constraint",
		},
	}

	var buf bytes.Buffer
	if err := Dashboard(core.Counts{Veterans: 2, Wars: 1}, runs).Render(t.Context(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<th>Veterans</th><td>2</td>",
		"Imported 2 veterans in 1 branches in 1 wars.",
		"&lt;script&gt;ut.csv",
		"DB001",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Error("source name was not escaped")
	}
}

func TestDashboard_NoRuns(t *testing.T) {
	var buf bytes.Buffer
	if err := Dashboard(core.Counts{}, nil).Render(t.Context(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No imports yet.") {
		t.Errorf("expected empty-state message, got %s", buf.String())
	}
}
