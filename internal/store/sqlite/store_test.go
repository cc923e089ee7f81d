package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/JonMunkholm/vetimport/internal/core"
	"github.com/JonMunkholm/vetimport/internal/store/sqlite"
	"github.com/JonMunkholm/vetimport/internal/store/storetest"
)

type SQLiteStoreSuite struct {
	storetest.RepositorySuite
}

func TestSQLiteStoreSuite(t *testing.T) {
	s := new(SQLiteStoreSuite)
	s.NewRepo = func() core.Repository {
		store, err := sqlite.Open(context.Background(), filepath.Join(s.T().TempDir(), "test.db"))
		require.NoError(s.T(), err)
		return store
	}
	suite.Run(t, s)
}

func TestOpenIsReentrant(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "vet.db")

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.RunInTx(ctx, func(tx core.Tx) error {
		_, err := tx.CreateVocabulary(ctx, core.VocabWar, "Korea")
		return err
	}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	counts, err := reopened.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.Wars)
}

func TestForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	err = store.RunInTx(ctx, func(tx core.Tx) error {
		return tx.CreateBurial(ctx, core.Burial{VeteranKey: "v", CemeteryKey: "missing"})
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "FOREIGN KEY")
}
