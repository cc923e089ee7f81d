// Package core provides the business logic for veteran burial imports.
//
// This package turns rows of a flat burial extract into cemeteries, burials,
// next of kin, veterans and the rank, branch and war vocabularies, without
// creating duplicates across repeated imports. It knows nothing about HTTP,
// files or a particular database; storage is reached through [Repository].
//
// # Pipeline
//
// For each row, in file order:
//
//  1. [LayoutFor] picks the standard or extra-column layout by field count.
//  2. [RowValidator] skips the header row and rows missing required fields.
//  3. [BuildRecords] derives the cemetery and veteran keys ([CemeteryKey],
//     [VeteranKey]) and the entity candidates.
//  4. One transaction ([Repository.RunInTx]) upserts Cemetery, Burial, Kin
//     and Veteran through [EntityUpserter]. A newly created veteran also gets
//     its vocabulary values resolved ([ResolveVocabulary]) and attached.
//
// [Importer.Import] owns the counters and returns an [ImportResult] whose
// [ImportResult.Summary] is the one-line report of the run.
//
// # Keys
//
// Keys are lower-cased, hyphen-joined, trimmed field values:
//
//	cemetery: name-addressone-city
//	veteran:  first-last-YYYY-MM-DD(birth)-YYYY-MM-DD(death)-cemeterykey
//
// A date that is not month/day/year contributes an empty segment.
//
// # Errors
//
// Technical errors are mapped to operator messages using [MapError]:
//
//   - DB001-DB005: database errors (duplicates, constraints, connections)
//   - VAL001-VAL002: validation and lookup errors
//   - FILE001-FILE005: file and source errors
//   - IMP001-IMP004: import lifecycle (busy, not found, cancelled, timeout)
//
// # Service
//
// [Service] wraps the importer for long-running processes: it serializes
// imports with an [ImportLimiter], applies a timeout and keeps a bounded
// history of [ImportRun] records.
package core
