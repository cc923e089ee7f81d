// Package core provides the business logic for veteran burial imports.
// This package has no transport or storage dependencies beyond the Repository interface.
package core

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cemetery is a physical burial ground, keyed by name, address and city.
type Cemetery struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	AddressOne string `json:"address_one,omitempty"`
	AddressTwo string `json:"address_two,omitempty"`
	Phone      string `json:"phone,omitempty"`
	URL        string `json:"url,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Zip        string `json:"zip,omitempty"`
}

// Burial locates a veteran's grave. It shares the veteran's key.
type Burial struct {
	VeteranKey  string `json:"veteran_key"`
	CemeteryKey string `json:"cemetery_key"`
	Section     string `json:"section,omitempty"`
	Row         string `json:"row,omitempty"`
	Site        string `json:"site,omitempty"`
}

// Kin is the next of kin recorded for a veteran. It shares the veteran's key.
type Kin struct {
	VeteranKey   string `json:"veteran_key"`
	Relationship string `json:"relationship,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	MiddleName   string `json:"middle_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Suffix       string `json:"suffix,omitempty"`
}

// Veteran is a deceased service member. BurialKey and KinKey always equal Key.
type Veteran struct {
	Key        string      `json:"key"`
	FirstName  string      `json:"first_name"`
	MiddleName string      `json:"middle_name,omitempty"`
	LastName   string      `json:"last_name"`
	BirthDate  pgtype.Date `json:"birth_date"`
	DeathDate  pgtype.Date `json:"death_date"`
	BurialKey  string      `json:"burial_key"`
	KinKey     string      `json:"kin_key"`
}

// Vocabulary names one of the shared lookup value sets.
type Vocabulary string

const (
	VocabRank   Vocabulary = "rank"
	VocabBranch Vocabulary = "branch"
	VocabWar    Vocabulary = "war"
)

// Vocabularies lists every vocabulary in the order they are resolved for a new veteran.
var Vocabularies = []Vocabulary{VocabRank, VocabBranch, VocabWar}

// Counts reports how many records of each kind a store holds.
type Counts struct {
	Cemeteries int64 `json:"cemeteries"`
	Burials    int64 `json:"burials"`
	Kins       int64 `json:"kins"`
	Veterans   int64 `json:"veterans"`
	Ranks      int64 `json:"ranks"`
	Branches   int64 `json:"branches"`
	Wars       int64 `json:"wars"`
}

// VeteranDetail is a veteran together with everything that hangs off it.
type VeteranDetail struct {
	Veteran  Veteran   `json:"veteran"`
	Burial   *Burial   `json:"burial,omitempty"`
	Cemetery *Cemetery `json:"cemetery,omitempty"`
	Kin      *Kin      `json:"kin,omitempty"`
	Ranks    []string  `json:"ranks"`
	Branches []string  `json:"branches"`
	Wars     []string  `json:"wars"`
}

// WriteStats counts creates and updates for one entity kind.
type WriteStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// record adds an upsert outcome to the stats.
func (w *WriteStats) record(o Outcome) {
	switch o {
	case OutcomeCreated:
		w.Created++
	case OutcomeUpdated:
		w.Updated++
	}
}

// Writes groups write statistics per entity.
type Writes struct {
	Cemeteries WriteStats `json:"cemeteries"`
	Burials    WriteStats `json:"burials"`
	Kins       WriteStats `json:"kins"`
	Veterans   WriteStats `json:"veterans"`
}

// Total returns the number of creates and updates across all entities.
func (w Writes) Total() int {
	return w.Cemeteries.Created + w.Cemeteries.Updated +
		w.Burials.Created + w.Burials.Updated +
		w.Kins.Created + w.Kins.Updated +
		w.Veterans.Created + w.Veterans.Updated
}

// FailedRow contains information about a row that could not be written.
// Row is the 1-based position among parsed records, not a physical file
// line: blank lines are dropped and quoted fields may span lines.
type FailedRow struct {
	Row    int      `json:"row"`
	Reason string   `json:"reason"`
	Data   []string `json:"data,omitempty"`
}

// ImportResult is the accumulator owned by the importer for a single run.
type ImportResult struct {
	// Reported counters.
	Veterans int `json:"veterans"`
	Branches int `json:"branches"`
	Wars     int `json:"wars"`

	// Ranks created are tracked but not part of the summary line.
	Ranks int `json:"ranks"`

	Rows       int           `json:"rows"`
	Skipped    int           `json:"skipped"`
	Writes     Writes        `json:"writes"`
	FailedRows []FailedRow   `json:"failed_rows,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Summary returns the human-readable one-line report of an import.
func (r *ImportResult) Summary() string {
	return fmt.Sprintf("Imported %d veterans in %d branches in %d wars.", r.Veterans, r.Branches, r.Wars)
}

// ImportStatus is the lifecycle state of an import run.
type ImportStatus string

const (
	StatusRunning   ImportStatus = "running"
	StatusCompleted ImportStatus = "completed"
	StatusFailed    ImportStatus = "failed"
)

// ImportRun describes one import tracked by the Service.
type ImportRun struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Status     ImportStatus  `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Result     *ImportResult `json:"result,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	Error      string        `json:"error,omitempty"`
}
