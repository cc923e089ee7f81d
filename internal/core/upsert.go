package core

// upsert.go applies one create-or-update template to every entity.
//
// For each entity the stored record is looked up by key. A missing record
// is created from the candidate. An existing record has the candidate's
// non-empty attributes laid over it and is written back only when that
// changes something. Empty candidate attributes never clear stored values.

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// Outcome describes what an upsert did.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// entityOps binds the storage callbacks for one entity type.
type entityOps[T any] struct {
	name   string
	find   func(ctx context.Context, key string) (T, error)
	create func(ctx context.Context, v T) error
	update func(ctx context.Context, v T) error
	// merge overlays candidate onto stored and reports whether anything changed.
	merge func(stored, candidate T) (T, bool)
}

func upsert[T any](ctx context.Context, ops entityOps[T], key string, candidate T) (Outcome, error) {
	stored, err := ops.find(ctx, key)
	if errors.Is(err, ErrNotFound) {
		if err := ops.create(ctx, candidate); err != nil {
			return OutcomeUnchanged, fmt.Errorf("create %s %q: %w", ops.name, key, err)
		}
		return OutcomeCreated, nil
	}
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("find %s %q: %w", ops.name, key, err)
	}

	merged, changed := ops.merge(stored, candidate)
	if !changed {
		return OutcomeUnchanged, nil
	}
	if err := ops.update(ctx, merged); err != nil {
		return OutcomeUnchanged, fmt.Errorf("update %s %q: %w", ops.name, key, err)
	}
	return OutcomeUpdated, nil
}

// overlay copies v into *dst when v is non-empty and differs.
func overlay(dst *string, v string, changed *bool) {
	if v == "" || *dst == v {
		return
	}
	*dst = v
	*changed = true
}

// overlayDate copies v into *dst when v is valid and differs.
func overlayDate(dst *pgtype.Date, v pgtype.Date, changed *bool) {
	if !v.Valid || SameDate(*dst, v) {
		return
	}
	*dst = v
	*changed = true
}

func mergeCemetery(stored, c Cemetery) (Cemetery, bool) {
	changed := false
	overlay(&stored.Name, c.Name, &changed)
	overlay(&stored.AddressOne, c.AddressOne, &changed)
	overlay(&stored.AddressTwo, c.AddressTwo, &changed)
	overlay(&stored.Phone, c.Phone, &changed)
	overlay(&stored.URL, c.URL, &changed)
	overlay(&stored.City, c.City, &changed)
	overlay(&stored.State, c.State, &changed)
	overlay(&stored.Zip, c.Zip, &changed)
	return stored, changed
}

func mergeBurial(stored, b Burial) (Burial, bool) {
	changed := false
	overlay(&stored.CemeteryKey, b.CemeteryKey, &changed)
	overlay(&stored.Section, b.Section, &changed)
	overlay(&stored.Row, b.Row, &changed)
	overlay(&stored.Site, b.Site, &changed)
	return stored, changed
}

func mergeKin(stored, k Kin) (Kin, bool) {
	changed := false
	overlay(&stored.Relationship, k.Relationship, &changed)
	overlay(&stored.FirstName, k.FirstName, &changed)
	overlay(&stored.MiddleName, k.MiddleName, &changed)
	overlay(&stored.LastName, k.LastName, &changed)
	overlay(&stored.Suffix, k.Suffix, &changed)
	return stored, changed
}

func mergeVeteran(stored, v Veteran) (Veteran, bool) {
	changed := false
	overlay(&stored.FirstName, v.FirstName, &changed)
	overlay(&stored.MiddleName, v.MiddleName, &changed)
	overlay(&stored.LastName, v.LastName, &changed)
	overlayDate(&stored.BirthDate, v.BirthDate, &changed)
	overlayDate(&stored.DeathDate, v.DeathDate, &changed)
	overlay(&stored.BurialKey, v.BurialKey, &changed)
	overlay(&stored.KinKey, v.KinKey, &changed)
	return stored, changed
}

// VocabularyCreated counts vocabulary values created while upserting a veteran.
type VocabularyCreated map[Vocabulary]int

// EntityUpserter writes the entities of one row through a transaction.
type EntityUpserter struct {
	tx Tx
}

// NewEntityUpserter creates an upserter bound to tx.
func NewEntityUpserter(tx Tx) *EntityUpserter {
	return &EntityUpserter{tx: tx}
}

// Cemetery creates or updates a cemetery.
func (u *EntityUpserter) Cemetery(ctx context.Context, c Cemetery) (Outcome, error) {
	return upsert(ctx, entityOps[Cemetery]{
		name:   "cemetery",
		find:   u.tx.FindCemetery,
		create: u.tx.CreateCemetery,
		update: u.tx.UpdateCemetery,
		merge:  mergeCemetery,
	}, c.Key, c)
}

// Burial creates or updates a burial.
func (u *EntityUpserter) Burial(ctx context.Context, b Burial) (Outcome, error) {
	return upsert(ctx, entityOps[Burial]{
		name:   "burial",
		find:   u.tx.FindBurial,
		create: u.tx.CreateBurial,
		update: u.tx.UpdateBurial,
		merge:  mergeBurial,
	}, b.VeteranKey, b)
}

// Kin creates or updates a next of kin.
func (u *EntityUpserter) Kin(ctx context.Context, k Kin) (Outcome, error) {
	return upsert(ctx, entityOps[Kin]{
		name:   "kin",
		find:   u.tx.FindKin,
		create: u.tx.CreateKin,
		update: u.tx.UpdateKin,
		merge:  mergeKin,
	}, k.VeteranKey, k)
}

// Veteran creates or updates a veteran. Only a newly created veteran has its
// rank, branch and war values resolved and attached; updates leave
// associations alone.
func (u *EntityUpserter) Veteran(ctx context.Context, v Veteran, raw map[Vocabulary]string) (Outcome, VocabularyCreated, error) {
	outcome, err := upsert(ctx, entityOps[Veteran]{
		name:   "veteran",
		find:   u.tx.FindVeteran,
		create: u.tx.CreateVeteran,
		update: u.tx.UpdateVeteran,
		merge:  mergeVeteran,
	}, v.Key, v)
	if err != nil || outcome != OutcomeCreated {
		return outcome, nil, err
	}

	created := make(VocabularyCreated, len(Vocabularies))
	for _, vocab := range Vocabularies {
		values, n, err := ResolveVocabulary(ctx, u.tx, vocab, raw[vocab])
		if err != nil {
			return outcome, created, err
		}
		created[vocab] = n
		if len(values) == 0 {
			continue
		}
		if err := u.tx.AttachVocabulary(ctx, vocab, v.Key, values); err != nil {
			return outcome, created, fmt.Errorf("attach %s to veteran %q: %w", vocab, v.Key, err)
		}
	}
	return outcome, created, nil
}
