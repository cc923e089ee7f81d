// Package storetest holds the contract suite every core.Repository must pass.
package storetest

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/suite"

	"github.com/JonMunkholm/vetimport/internal/core"
)

var errBoom = errors.New("boom")

// RepositorySuite exercises a repository through core.Tx. Embed it and set
// NewRepo, which must return an empty repository.
type RepositorySuite struct {
	suite.Suite
	NewRepo func() core.Repository

	repo core.Repository
	ctx  context.Context
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.NewRepo()
}

func (s *RepositorySuite) TearDownTest() {
	if s.repo != nil {
		s.NoError(s.repo.Close())
	}
}

func date(y int, m time.Month, d int) pgtype.Date {
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func fixtureCemetery() core.Cemetery {
	return core.Cemetery{
		Key:        "oak hill-1 main st-springfield",
		Name:       "Oak Hill",
		AddressOne: "1 Main St",
		City:       "Springfield",
		State:      "IL",
		Zip:        "62701",
	}
}

func fixtureVeteran() core.Veteran {
	key := "john-doe-1920-01-02-1990-03-04-oak hill-1 main st-springfield"
	return core.Veteran{
		Key:       key,
		FirstName: "John",
		LastName:  "Doe",
		BirthDate: date(1920, time.January, 2),
		DeathDate: date(1990, time.March, 4),
		BurialKey: key,
		KinKey:    key,
	}
}

// seed writes a cemetery, burial, kin and veteran in one transaction.
func (s *RepositorySuite) seed() core.Veteran {
	cem := fixtureCemetery()
	vet := fixtureVeteran()
	err := s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		if err := tx.CreateCemetery(s.ctx, cem); err != nil {
			return err
		}
		if err := tx.CreateBurial(s.ctx, core.Burial{VeteranKey: vet.Key, CemeteryKey: cem.Key, Section: "A"}); err != nil {
			return err
		}
		if err := tx.CreateKin(s.ctx, core.Kin{VeteranKey: vet.Key, Relationship: "Son", FirstName: "Jim", LastName: "Doe"}); err != nil {
			return err
		}
		return tx.CreateVeteran(s.ctx, vet)
	})
	s.Require().NoError(err)
	return vet
}

func (s *RepositorySuite) TestFindMissingReturnsNotFound() {
	err := s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		_, err := tx.FindCemetery(s.ctx, "nope")
		s.ErrorIs(err, core.ErrNotFound)
		_, err = tx.FindBurial(s.ctx, "nope")
		s.ErrorIs(err, core.ErrNotFound)
		_, err = tx.FindKin(s.ctx, "nope")
		s.ErrorIs(err, core.ErrNotFound)
		_, err = tx.FindVeteran(s.ctx, "nope")
		s.ErrorIs(err, core.ErrNotFound)
		return nil
	})
	s.Require().NoError(err)
}

func (s *RepositorySuite) TestCreateAndFindRoundTrip() {
	vet := s.seed()

	err := s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		cem, err := tx.FindCemetery(s.ctx, fixtureCemetery().Key)
		s.Require().NoError(err)
		s.Equal(fixtureCemetery(), cem)

		got, err := tx.FindVeteran(s.ctx, vet.Key)
		s.Require().NoError(err)
		s.Equal(vet.FirstName, got.FirstName)
		s.Empty(got.MiddleName)
		s.True(core.SameDate(vet.BirthDate, got.BirthDate))
		s.True(core.SameDate(vet.DeathDate, got.DeathDate))
		s.Equal(vet.Key, got.BurialKey)

		kin, err := tx.FindKin(s.ctx, vet.Key)
		s.Require().NoError(err)
		s.Equal("Son", kin.Relationship)
		s.Empty(kin.Suffix)

		burial, err := tx.FindBurial(s.ctx, vet.Key)
		s.Require().NoError(err)
		s.Equal(fixtureCemetery().Key, burial.CemeteryKey)
		s.Equal("A", burial.Section)
		return nil
	})
	s.Require().NoError(err)
}

func (s *RepositorySuite) TestUpdatePersists() {
	vet := s.seed()

	err := s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		cem := fixtureCemetery()
		cem.Phone = "555-0100"
		if err := tx.UpdateCemetery(s.ctx, cem); err != nil {
			return err
		}
		vet.MiddleName = "Q"
		return tx.UpdateVeteran(s.ctx, vet)
	})
	s.Require().NoError(err)

	err = s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		cem, err := tx.FindCemetery(s.ctx, fixtureCemetery().Key)
		s.Require().NoError(err)
		s.Equal("555-0100", cem.Phone)

		got, err := tx.FindVeteran(s.ctx, vet.Key)
		s.Require().NoError(err)
		s.Equal("Q", got.MiddleName)
		return nil
	})
	s.Require().NoError(err)
}

func (s *RepositorySuite) TestFailedTransactionRollsBack() {
	err := s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		if err := tx.CreateCemetery(s.ctx, fixtureCemetery()); err != nil {
			return err
		}
		if _, err := tx.CreateVocabulary(s.ctx, core.VocabWar, "WWII"); err != nil {
			return err
		}
		return errBoom
	})
	s.Require().ErrorIs(err, errBoom)

	counts, err := s.repo.Counts(s.ctx)
	s.Require().NoError(err)
	s.Zero(counts.Cemeteries)
	s.Zero(counts.Wars)
}

func (s *RepositorySuite) TestVocabularyCreateOnce() {
	err := s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		exists, err := tx.VocabularyExists(s.ctx, core.VocabBranch, "Army")
		s.Require().NoError(err)
		s.False(exists)

		created, err := tx.CreateVocabulary(s.ctx, core.VocabBranch, "Army")
		s.Require().NoError(err)
		s.True(created)

		created, err = tx.CreateVocabulary(s.ctx, core.VocabBranch, "Army")
		s.Require().NoError(err)
		s.False(created)

		exists, err = tx.VocabularyExists(s.ctx, core.VocabBranch, "Army")
		s.Require().NoError(err)
		s.True(exists)

		// Vocabularies are independent and case-sensitive.
		exists, err = tx.VocabularyExists(s.ctx, core.VocabWar, "Army")
		s.Require().NoError(err)
		s.False(exists)
		exists, err = tx.VocabularyExists(s.ctx, core.VocabBranch, "army")
		s.Require().NoError(err)
		s.False(exists)
		return nil
	})
	s.Require().NoError(err)

	counts, err := s.repo.Counts(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), counts.Branches)
}

func (s *RepositorySuite) TestAttachAndListVocabulary() {
	vet := s.seed()

	err := s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		for _, v := range []string{"Navy", "Army"} {
			if _, err := tx.CreateVocabulary(s.ctx, core.VocabBranch, v); err != nil {
				return err
			}
		}
		return tx.AttachVocabulary(s.ctx, core.VocabBranch, vet.Key, []string{"Navy", "Army"})
	})
	s.Require().NoError(err)

	err = s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		values, err := tx.ListVocabulary(s.ctx, core.VocabBranch, vet.Key)
		s.Require().NoError(err)
		s.Equal([]string{"Navy", "Army"}, values)

		values, err = tx.ListVocabulary(s.ctx, core.VocabWar, vet.Key)
		s.Require().NoError(err)
		s.Empty(values)
		return nil
	})
	s.Require().NoError(err)
}

func (s *RepositorySuite) TestCounts() {
	s.seed()

	counts, err := s.repo.Counts(s.ctx)
	s.Require().NoError(err)
	s.Equal(core.Counts{Cemeteries: 1, Burials: 1, Kins: 1, Veterans: 1}, counts)
}

func (s *RepositorySuite) TestReset() {
	vet := s.seed()
	err := s.repo.RunInTx(s.ctx, func(tx core.Tx) error {
		if _, err := tx.CreateVocabulary(s.ctx, core.VocabWar, "WWII"); err != nil {
			return err
		}
		return tx.AttachVocabulary(s.ctx, core.VocabWar, vet.Key, []string{"WWII"})
	})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Reset(s.ctx))

	counts, err := s.repo.Counts(s.ctx)
	s.Require().NoError(err)
	s.Equal(core.Counts{}, counts)

	// The store stays usable after a reset.
	s.seed()
}

func (s *RepositorySuite) TestImporterIdempotent() {
	rows := [][]string{
		core.HeaderColumns,
		{"John", "", "Doe", "", "1/2/1920", "3/4/1990", "A", "1", "2", "Oak Hill", "1 Main St", "", "Springfield", "IL", "62701", "", "", "Son", "Jim", "", "Doe", "", "Army, Navy, Army", "PFC", "WWII"},
		{"Mary", "", "Roe", "", "5/6/1925", "7/8/2001", "B", "3", "4", "Oak Hill", "1 Main St", "", "Springfield", "IL", "62701", "", "", "Daughter", "Ann", "", "Roe", "", "Navy", "", "Korea"},
	}
	im := core.NewImporter(s.repo, core.ImporterOptions{})

	first, err := im.Import(s.ctx, rows)
	s.Require().NoError(err)
	s.Equal(2, first.Veterans)
	s.Equal(2, first.Branches)
	s.Equal(2, first.Wars)

	before, err := s.repo.Counts(s.ctx)
	s.Require().NoError(err)

	second, err := im.Import(s.ctx, rows)
	s.Require().NoError(err)
	s.Zero(second.Writes.Total())
	s.Zero(second.Branches)
	s.Zero(second.Wars)

	after, err := s.repo.Counts(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, after)
	s.Equal(int64(1), after.Cemeteries)
	s.Equal(int64(2), after.Veterans)
}
