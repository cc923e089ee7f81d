package core

import "testing"

func TestCemeteryKey(t *testing.T) {
	f := StandardLayout.Resolve(standardRow())
	if got, want := CemeteryKey(f), "oak hill-1 main st-springfield"; got != want {
		t.Errorf("CemeteryKey = %q, want %q", got, want)
	}
}

func TestVeteranKey(t *testing.T) {
	f := StandardLayout.Resolve(standardRow())
	got := VeteranKey(f, CemeteryKey(f))
	want := "john-doe-1920-01-02-1990-03-04-oak hill-1 main st-springfield"
	if got != want {
		t.Errorf("VeteranKey = %q, want %q", got, want)
	}
}

func TestVeteranKey_Deterministic(t *testing.T) {
	a := standardRow()
	b := standardRow()
	b[0] = "  JOHN "
	b[4] = "01/02/1920"
	b[9] = "OAK HILL"
	b[22] = "Navy"

	fa := StandardLayout.Resolve(a)
	fb := StandardLayout.Resolve(b)
	if VeteranKey(fa, CemeteryKey(fa)) != VeteranKey(fb, CemeteryKey(fb)) {
		t.Error("keys differ for rows naming the same veteran")
	}
}

func TestVeteranKey_UnparseableDate(t *testing.T) {
	row := standardRow()
	row[4] = "circa 1920"
	f := StandardLayout.Resolve(row)

	want := "john-doe--1990-03-04-oak hill-1 main st-springfield"
	if got := VeteranKey(f, CemeteryKey(f)); got != want {
		t.Errorf("VeteranKey = %q, want %q", got, want)
	}
}

func TestBuildRecords(t *testing.T) {
	r := BuildRecords(StandardLayout.Resolve(standardRow()))

	if r.Burial.VeteranKey != r.Veteran.Key || r.Kin.VeteranKey != r.Veteran.Key {
		t.Error("burial and kin must share the veteran key")
	}
	if r.Veteran.BurialKey != r.Veteran.Key || r.Veteran.KinKey != r.Veteran.Key {
		t.Error("veteran must reference its burial and kin by its own key")
	}
	if r.Burial.CemeteryKey != r.Cemetery.Key {
		t.Errorf("burial cemetery key = %q, want %q", r.Burial.CemeteryKey, r.Cemetery.Key)
	}
	if r.Cemetery.Name != "Oak Hill" {
		t.Errorf("cemetery name = %q, original case should be kept", r.Cemetery.Name)
	}
	if !r.Veteran.BirthDate.Valid || !r.Veteran.DeathDate.Valid {
		t.Error("dates should parse")
	}
	if r.Branches != "Army" || r.Ranks != "PFC" || r.Wars != "WWII" {
		t.Errorf("vocabulary cells = %q %q %q", r.Branches, r.Ranks, r.Wars)
	}
}
