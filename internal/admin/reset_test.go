package admin

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/vetimport/internal/core"
	"github.com/JonMunkholm/vetimport/internal/store/memory"
)

func seed(t *testing.T, repo core.Repository) {
	t.Helper()
	rows := [][]string{
		{"John", "", "Doe", "", "1/2/1920", "3/4/1990", "A", "1", "2", "Oak Hill", "1 Main St", "", "Springfield", "IL", "62701", "", "", "Son", "Jim", "", "Doe", "", "Army", "PFC", "WWII"},
	}
	if _, err := core.NewImporter(repo, core.ImporterOptions{}).Import(t.Context(), rows); err != nil {
		t.Fatalf("seed import: %v", err)
	}
}

func TestResetAll(t *testing.T) {
	repo := memory.NewStore()
	seed(t, repo)

	before, err := ResetAll(t.Context(), repo, true)
	if err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if before.Veterans != 1 || before.Wars != 1 {
		t.Errorf("before = %+v", before)
	}

	after, err := repo.Counts(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if after != (core.Counts{}) {
		t.Errorf("after reset = %+v, want empty", after)
	}
}

func TestResetAll_RequiresConfirmation(t *testing.T) {
	repo := memory.NewStore()
	seed(t, repo)

	if _, err := ResetAll(t.Context(), repo, false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("error = %v, want ErrNotConfirmed", err)
	}
	counts, err := repo.Counts(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Veterans != 1 {
		t.Errorf("veterans = %d, unconfirmed reset must not delete", counts.Veterans)
	}
}
