// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/vetimport/internal/core"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// ErrNotConfirmed is returned when a reset was requested without confirmation.
var ErrNotConfirmed = errors.New("reset not confirmed")

// ResetAll removes every cemetery, burial, kin, veteran and vocabulary value.
// This is a destructive operation; confirm must be true. The counts held
// before the reset are returned.
func ResetAll(ctx context.Context, repo core.Repository, confirm bool) (core.Counts, error) {
	if !confirm {
		return core.Counts{}, ErrNotConfirmed
	}

	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	before, err := repo.Counts(ctx)
	if err != nil {
		return core.Counts{}, fmt.Errorf("count before reset: %w", err)
	}
	if err := repo.Reset(ctx); err != nil {
		return core.Counts{}, err
	}

	slog.Info("store reset",
		"veterans", before.Veterans,
		"cemeteries", before.Cemeteries,
		"ranks", before.Ranks,
		"branches", before.Branches,
		"wars", before.Wars,
	)
	return before, nil
}
