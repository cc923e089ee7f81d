package core

import "context"

// Repository is the storage engine consumed by the importer.
type Repository interface {
	// RunInTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	// Counts reports how many records of each kind are stored.
	Counts(ctx context.Context) (Counts, error)

	// Reset removes every stored record, vocabularies included.
	Reset(ctx context.Context) error

	Close() error
}

// Tx is the set of operations available inside a transaction.
// Finders return ErrNotFound when no record has the key.
type Tx interface {
	FindCemetery(ctx context.Context, key string) (Cemetery, error)
	CreateCemetery(ctx context.Context, c Cemetery) error
	UpdateCemetery(ctx context.Context, c Cemetery) error

	FindBurial(ctx context.Context, veteranKey string) (Burial, error)
	CreateBurial(ctx context.Context, b Burial) error
	UpdateBurial(ctx context.Context, b Burial) error

	FindKin(ctx context.Context, veteranKey string) (Kin, error)
	CreateKin(ctx context.Context, k Kin) error
	UpdateKin(ctx context.Context, k Kin) error

	FindVeteran(ctx context.Context, key string) (Veteran, error)
	CreateVeteran(ctx context.Context, v Veteran) error
	UpdateVeteran(ctx context.Context, v Veteran) error

	// VocabularyExists reports whether value is already in vocab.
	VocabularyExists(ctx context.Context, vocab Vocabulary, value string) (bool, error)
	// CreateVocabulary adds value to vocab. created is false when another
	// writer inserted it first.
	CreateVocabulary(ctx context.Context, vocab Vocabulary, value string) (created bool, err error)
	// AttachVocabulary links a veteran to vocabulary values.
	AttachVocabulary(ctx context.Context, vocab Vocabulary, veteranKey string, values []string) error
	// ListVocabulary returns the values attached to a veteran, in insertion order.
	ListVocabulary(ctx context.Context, vocab Vocabulary, veteranKey string) ([]string, error)
}

// LoadVeteranDetail assembles a veteran and its related records within tx.
func LoadVeteranDetail(ctx context.Context, tx Tx, key string) (*VeteranDetail, error) {
	vet, err := tx.FindVeteran(ctx, key)
	if err != nil {
		return nil, err
	}
	detail := &VeteranDetail{Veteran: vet}

	if b, err := tx.FindBurial(ctx, vet.BurialKey); err == nil {
		detail.Burial = &b
		if c, err := tx.FindCemetery(ctx, b.CemeteryKey); err == nil {
			detail.Cemetery = &c
		} else if !IsNotFound(err) {
			return nil, err
		}
	} else if !IsNotFound(err) {
		return nil, err
	}

	if k, err := tx.FindKin(ctx, vet.KinKey); err == nil {
		detail.Kin = &k
	} else if !IsNotFound(err) {
		return nil, err
	}

	if detail.Ranks, err = tx.ListVocabulary(ctx, VocabRank, key); err != nil {
		return nil, err
	}
	if detail.Branches, err = tx.ListVocabulary(ctx, VocabBranch, key); err != nil {
		return nil, err
	}
	if detail.Wars, err = tx.ListVocabulary(ctx, VocabWar, key); err != nil {
		return nil, err
	}
	return detail, nil
}
