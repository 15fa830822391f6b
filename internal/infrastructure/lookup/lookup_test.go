package lookup

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func mustNew(t *testing.T) *Directory {
	t.Helper()
	d, err := New()
	if err != nil {
		t.Fatalf("load embedded dataset: %v", err)
	}
	return d
}

func TestDistrictExists_CaseInsensitive(t *testing.T) {
	d := mustNew(t)

	for _, name := range []string{"Dhaka", "dhaka", "DHAKA", "dHaKa"} {
		if !d.DistrictExists(name) {
			t.Errorf("%q must exist", name)
		}
	}
	if d.DistrictExists("Atlantis") {
		t.Error("unknown district must not exist")
	}
}

func TestUpazilaInDistrict(t *testing.T) {
	d := mustNew(t)

	if !d.UpazilaInDistrict("Dhaka", "Savar") {
		t.Error("Savar must belong to Dhaka")
	}
	if !d.UpazilaInDistrict("dhaka", "savar") {
		t.Error("matching must be case-insensitive")
	}
	if d.UpazilaInDistrict("Chattogram", "Savar") {
		t.Error("Savar must not belong to Chattogram")
	}
	if d.UpazilaInDistrict("Atlantis", "Savar") {
		t.Error("unknown district must not match")
	}
}

func TestDistricts_SortedCanonical(t *testing.T) {
	d := mustNew(t)

	names := d.Districts()
	if len(names) == 0 {
		t.Fatal("dataset must not be empty")
	}
	if !sort.StringsAreSorted(names) {
		t.Error("districts must be sorted")
	}

	seen := false
	for _, n := range names {
		if n == "Dhaka" {
			seen = true
		}
	}
	if !seen {
		t.Error("canonical casing must be preserved")
	}
}

func TestUpazilas(t *testing.T) {
	d := mustNew(t)

	ups, ok := d.Upazilas("dhaka")
	if !ok {
		t.Fatal("Dhaka must be known")
	}
	if !sort.StringsAreSorted(ups) {
		t.Error("upazilas must be sorted")
	}
	if _, ok := d.Upazilas("Atlantis"); ok {
		t.Error("unknown district must report ok=false")
	}
}

func TestNewFromDir(t *testing.T) {
	dir := t.TempDir()
	districts := `[{"id":"1","name":"Testville"}]`
	upazilas := `[{"id":"10","district_id":"1","name":"Subtown"}]`
	if err := os.WriteFile(filepath.Join(dir, "districts.json"), []byte(districts), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "upazilas.json"), []byte(upazilas), 0o600); err != nil {
		t.Fatal(err)
	}

	d, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.UpazilaInDistrict("testville", "subtown") {
		t.Error("override dataset must be honored")
	}
	if d.DistrictExists("Dhaka") {
		t.Error("override must replace the embedded dataset")
	}
}

func TestNewFromDir_DanglingDistrictID(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "districts.json"), []byte(`[]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "upazilas.json"), []byte(`[{"id":"10","district_id":"99","name":"Orphan"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFromDir(dir); err == nil {
		t.Fatal("dangling district reference must fail")
	}
}
