package core

import (
	"context"
	"fmt"
	"strings"
)

// vocabularySeparator separates values inside a rank, branch or war cell.
const vocabularySeparator = ", "

// SplitVocabulary splits a raw cell into trimmed, non-empty values, keeping
// the first occurrence of each. Comparison is case-sensitive.
func SplitVocabulary(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, vocabularySeparator)
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ResolveVocabulary makes sure every value of raw exists in vocab, creating
// the missing ones one at a time. It returns the deduplicated values in order
// and how many were created by this call.
func ResolveVocabulary(ctx context.Context, tx Tx, vocab Vocabulary, raw string) ([]string, int, error) {
	values := SplitVocabulary(raw)
	created := 0

	for _, value := range values {
		exists, err := tx.VocabularyExists(ctx, vocab, value)
		if err != nil {
			return nil, created, fmt.Errorf("lookup %s %q: %w", vocab, value, err)
		}
		if exists {
			continue
		}
		ok, err := tx.CreateVocabulary(ctx, vocab, value)
		if err != nil {
			return nil, created, fmt.Errorf("create %s %q: %w", vocab, value, err)
		}
		if ok {
			created++
		}
	}
	return values, created, nil
}
