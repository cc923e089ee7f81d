package core

import "strings"

// CemeteryKey derives the natural key of a cemetery: lower(name-addressOne-city).
func CemeteryKey(f Fields) string {
	return joinKey(
		f.Get(FieldCemeteryName),
		f.Get(FieldAddressOne),
		f.Get(FieldCity),
	)
}

// VeteranKey derives the natural key of a veteran from the decedent's names,
// normalized birth and death dates, and the cemetery key. A date that does not
// parse contributes an empty segment.
func VeteranKey(f Fields, cemeteryKey string) string {
	return joinKey(
		f.Get(FieldFirstName),
		f.Get(FieldLastName),
		FormatDate(ParseDate(f.Get(FieldBirthDate))),
		FormatDate(ParseDate(f.Get(FieldDeathDate))),
		cemeteryKey,
	)
}

func joinKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.ToLower(strings.Join(parts, "-"))
}

// Records holds the entities derived from one row.
type Records struct {
	Cemetery Cemetery
	Burial   Burial
	Kin      Kin
	Veteran  Veteran

	// Raw vocabulary cells, split during resolution.
	Ranks    string
	Branches string
	Wars     string
}

// BuildRecords derives keys and entity candidates from resolved row fields.
// Burial and kin share the veteran's key.
func BuildRecords(f Fields) Records {
	cemKey := CemeteryKey(f)
	vetKey := VeteranKey(f, cemKey)

	return Records{
		Cemetery: Cemetery{
			Key:        cemKey,
			Name:       f.Get(FieldCemeteryName),
			AddressOne: f.Get(FieldAddressOne),
			AddressTwo: f.Get(FieldAddressTwo),
			Phone:      f.Get(FieldPhone),
			URL:        f.Get(FieldURL),
			City:       f.Get(FieldCity),
			State:      f.Get(FieldState),
			Zip:        f.Get(FieldZip),
		},
		Burial: Burial{
			VeteranKey:  vetKey,
			CemeteryKey: cemKey,
			Section:     f.Get(FieldSection),
			Row:         f.Get(FieldRow),
			Site:        f.Get(FieldSite),
		},
		Kin: Kin{
			VeteranKey:   vetKey,
			Relationship: f.Get(FieldRelationship),
			FirstName:    f.Get(FieldKinFirstName),
			MiddleName:   f.Get(FieldKinMiddleName),
			LastName:     f.Get(FieldKinLastName),
			Suffix:       f.Get(FieldKinSuffix),
		},
		Veteran: Veteran{
			Key:        vetKey,
			FirstName:  f.Get(FieldFirstName),
			MiddleName: f.Get(FieldMiddleName),
			LastName:   f.Get(FieldLastName),
			BirthDate:  ParseDate(f.Get(FieldBirthDate)),
			DeathDate:  ParseDate(f.Get(FieldDeathDate)),
			BurialKey:  vetKey,
			KinKey:     vetKey,
		},
		Ranks:    f.Get(FieldRank),
		Branches: f.Get(FieldBranch),
		Wars:     f.Get(FieldWar),
	}
}
