// Package memory provides an in-memory implementation of core.Repository
// used for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/vetimport/internal/core"
)

// Compile-time contract assertion.
var _ core.Repository = (*Store)(nil)

type memoryState struct {
	cemeteries map[string]core.Cemetery
	burials    map[string]core.Burial
	kins       map[string]core.Kin
	veterans   map[string]core.Veteran
	vocab      map[core.Vocabulary]map[string]struct{}
	links      map[core.Vocabulary]map[string][]string
}

func newMemoryState() memoryState {
	s := memoryState{
		cemeteries: make(map[string]core.Cemetery),
		burials:    make(map[string]core.Burial),
		kins:       make(map[string]core.Kin),
		veterans:   make(map[string]core.Veteran),
		vocab:      make(map[core.Vocabulary]map[string]struct{}),
		links:      make(map[core.Vocabulary]map[string][]string),
	}
	for _, v := range core.Vocabularies {
		s.vocab[v] = make(map[string]struct{})
		s.links[v] = make(map[string][]string)
	}
	return s
}

// Store keeps every record in maps guarded by a single mutex.
// Transactions are serialized; their writes are staged and applied only on
// success, so a failed transaction leaves no trace.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newMemoryState()}
}

// RunInTx runs fn with staged writes and applies them when fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(tx core.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{base: &s.state, staged: newMemoryState()}
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

// Counts reports the number of stored records.
func (s *Store) Counts(_ context.Context) (core.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return core.Counts{
		Cemeteries: int64(len(s.state.cemeteries)),
		Burials:    int64(len(s.state.burials)),
		Kins:       int64(len(s.state.kins)),
		Veterans:   int64(len(s.state.veterans)),
		Ranks:      int64(len(s.state.vocab[core.VocabRank])),
		Branches:   int64(len(s.state.vocab[core.VocabBranch])),
		Wars:       int64(len(s.state.vocab[core.VocabWar])),
	}, nil
}

// Reset drops every record.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = newMemoryState()
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// transaction reads through staged writes to the committed state.
type transaction struct {
	base   *memoryState
	staged memoryState
}

func lookup[V any](staged, base map[string]V, key string) (V, bool) {
	if v, ok := staged[key]; ok {
		return v, true
	}
	v, ok := base[key]
	return v, ok
}

func (t *transaction) apply() {
	for k, v := range t.staged.cemeteries {
		t.base.cemeteries[k] = v
	}
	for k, v := range t.staged.burials {
		t.base.burials[k] = v
	}
	for k, v := range t.staged.kins {
		t.base.kins[k] = v
	}
	for k, v := range t.staged.veterans {
		t.base.veterans[k] = v
	}
	for vocab, values := range t.staged.vocab {
		for v := range values {
			t.base.vocab[vocab][v] = struct{}{}
		}
	}
	for vocab, byVet := range t.staged.links {
		for vet, values := range byVet {
			t.base.links[vocab][vet] = values
		}
	}
}

func (t *transaction) FindCemetery(_ context.Context, key string) (core.Cemetery, error) {
	if c, ok := lookup(t.staged.cemeteries, t.base.cemeteries, key); ok {
		return c, nil
	}
	return core.Cemetery{}, core.ErrNotFound
}

func (t *transaction) CreateCemetery(_ context.Context, c core.Cemetery) error {
	if _, ok := lookup(t.staged.cemeteries, t.base.cemeteries, c.Key); ok {
		return fmt.Errorf("cemetery %q: duplicate key", c.Key)
	}
	t.staged.cemeteries[c.Key] = c
	return nil
}

func (t *transaction) UpdateCemetery(_ context.Context, c core.Cemetery) error {
	if _, ok := lookup(t.staged.cemeteries, t.base.cemeteries, c.Key); !ok {
		return fmt.Errorf("cemetery %q: %w", c.Key, core.ErrNotFound)
	}
	t.staged.cemeteries[c.Key] = c
	return nil
}

func (t *transaction) FindBurial(_ context.Context, veteranKey string) (core.Burial, error) {
	if b, ok := lookup(t.staged.burials, t.base.burials, veteranKey); ok {
		return b, nil
	}
	return core.Burial{}, core.ErrNotFound
}

func (t *transaction) CreateBurial(_ context.Context, b core.Burial) error {
	if _, ok := lookup(t.staged.burials, t.base.burials, b.VeteranKey); ok {
		return fmt.Errorf("burial %q: duplicate key", b.VeteranKey)
	}
	if _, ok := lookup(t.staged.cemeteries, t.base.cemeteries, b.CemeteryKey); !ok {
		return fmt.Errorf("burial %q: violates foreign key to cemetery %q", b.VeteranKey, b.CemeteryKey)
	}
	t.staged.burials[b.VeteranKey] = b
	return nil
}

func (t *transaction) UpdateBurial(_ context.Context, b core.Burial) error {
	if _, ok := lookup(t.staged.burials, t.base.burials, b.VeteranKey); !ok {
		return fmt.Errorf("burial %q: %w", b.VeteranKey, core.ErrNotFound)
	}
	t.staged.burials[b.VeteranKey] = b
	return nil
}

func (t *transaction) FindKin(_ context.Context, veteranKey string) (core.Kin, error) {
	if k, ok := lookup(t.staged.kins, t.base.kins, veteranKey); ok {
		return k, nil
	}
	return core.Kin{}, core.ErrNotFound
}

func (t *transaction) CreateKin(_ context.Context, k core.Kin) error {
	if _, ok := lookup(t.staged.kins, t.base.kins, k.VeteranKey); ok {
		return fmt.Errorf("kin %q: duplicate key", k.VeteranKey)
	}
	t.staged.kins[k.VeteranKey] = k
	return nil
}

func (t *transaction) UpdateKin(_ context.Context, k core.Kin) error {
	if _, ok := lookup(t.staged.kins, t.base.kins, k.VeteranKey); !ok {
		return fmt.Errorf("kin %q: %w", k.VeteranKey, core.ErrNotFound)
	}
	t.staged.kins[k.VeteranKey] = k
	return nil
}

func (t *transaction) FindVeteran(_ context.Context, key string) (core.Veteran, error) {
	if v, ok := lookup(t.staged.veterans, t.base.veterans, key); ok {
		return v, nil
	}
	return core.Veteran{}, core.ErrNotFound
}

func (t *transaction) CreateVeteran(_ context.Context, v core.Veteran) error {
	if _, ok := lookup(t.staged.veterans, t.base.veterans, v.Key); ok {
		return fmt.Errorf("veteran %q: duplicate key", v.Key)
	}
	t.staged.veterans[v.Key] = v
	return nil
}

func (t *transaction) UpdateVeteran(_ context.Context, v core.Veteran) error {
	if _, ok := lookup(t.staged.veterans, t.base.veterans, v.Key); !ok {
		return fmt.Errorf("veteran %q: %w", v.Key, core.ErrNotFound)
	}
	t.staged.veterans[v.Key] = v
	return nil
}

func (t *transaction) VocabularyExists(_ context.Context, vocab core.Vocabulary, value string) (bool, error) {
	if _, ok := t.staged.vocab[vocab][value]; ok {
		return true, nil
	}
	_, ok := t.base.vocab[vocab][value]
	return ok, nil
}

func (t *transaction) CreateVocabulary(ctx context.Context, vocab core.Vocabulary, value string) (bool, error) {
	if _, ok := t.staged.vocab[vocab]; !ok {
		return false, fmt.Errorf("unknown vocabulary %q", vocab)
	}
	exists, _ := t.VocabularyExists(ctx, vocab, value)
	if exists {
		return false, nil
	}
	t.staged.vocab[vocab][value] = struct{}{}
	return true, nil
}

func (t *transaction) AttachVocabulary(ctx context.Context, vocab core.Vocabulary, veteranKey string, values []string) error {
	if _, ok := lookup(t.staged.veterans, t.base.veterans, veteranKey); !ok {
		return fmt.Errorf("attach %s: violates foreign key to veteran %q", vocab, veteranKey)
	}
	current, err := t.ListVocabulary(ctx, vocab, veteranKey)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(current))
	for _, v := range current {
		seen[v] = struct{}{}
	}
	for _, v := range values {
		if exists, _ := t.VocabularyExists(ctx, vocab, v); !exists {
			return fmt.Errorf("attach %s %q: violates foreign key", vocab, v)
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		current = append(current, v)
	}
	t.staged.links[vocab][veteranKey] = current
	return nil
}

func (t *transaction) ListVocabulary(_ context.Context, vocab core.Vocabulary, veteranKey string) ([]string, error) {
	byVet, ok := t.staged.links[vocab]
	if !ok {
		return nil, fmt.Errorf("unknown vocabulary %q", vocab)
	}
	values, ok := byVet[veteranKey]
	if !ok {
		values = t.base.links[vocab][veteranKey]
	}
	return append([]string{}, values...), nil
}
