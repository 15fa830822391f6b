// Package lookup provides the district/upazila dataset used for write-time
// validation of geographic fields. The dataset ships embedded; deployments
// can point GEO_DATA_DIR at a directory containing districts.json and
// upazilas.json to replace it.
package lookup

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed data/districts.json data/upazilas.json
var embedded embed.FS

type districtEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type upazilaEntry struct {
	ID         string `json:"id"`
	DistrictID string `json:"district_id"`
	Name       string `json:"name"`
}

type district struct {
	name     string              // canonical casing
	upazilas map[string]string   // lowercase → canonical
	ordered  []string            // canonical, sorted
}

// Directory is an immutable in-memory index over the dataset. All lookups
// are case-insensitive; it is safe for concurrent use.
type Directory struct {
	districts map[string]*district // lowercase → entry
	ordered   []string             // canonical district names, sorted
}

// New builds a Directory from the embedded dataset.
func New() (*Directory, error) {
	dj, err := embedded.ReadFile("data/districts.json")
	if err != nil {
		return nil, fmt.Errorf("lookup: read embedded districts: %w", err)
	}
	uj, err := embedded.ReadFile("data/upazilas.json")
	if err != nil {
		return nil, fmt.Errorf("lookup: read embedded upazilas: %w", err)
	}
	return build(dj, uj)
}

// NewFromDir builds a Directory from districts.json and upazilas.json in dir.
func NewFromDir(dir string) (*Directory, error) {
	dj, err := os.ReadFile(filepath.Join(dir, "districts.json"))
	if err != nil {
		return nil, fmt.Errorf("lookup: read districts: %w", err)
	}
	uj, err := os.ReadFile(filepath.Join(dir, "upazilas.json"))
	if err != nil {
		return nil, fmt.Errorf("lookup: read upazilas: %w", err)
	}
	return build(dj, uj)
}

func build(districtsJSON, upazilasJSON []byte) (*Directory, error) {
	var dents []districtEntry
	if err := json.Unmarshal(districtsJSON, &dents); err != nil {
		return nil, fmt.Errorf("lookup: parse districts: %w", err)
	}
	var uents []upazilaEntry
	if err := json.Unmarshal(upazilasJSON, &uents); err != nil {
		return nil, fmt.Errorf("lookup: parse upazilas: %w", err)
	}

	byID := make(map[string]*district, len(dents))
	d := &Directory{districts: make(map[string]*district, len(dents))}
	for _, e := range dents {
		entry := &district{name: e.Name, upazilas: make(map[string]string)}
		byID[e.ID] = entry
		d.districts[strings.ToLower(e.Name)] = entry
		d.ordered = append(d.ordered, e.Name)
	}
	sort.Strings(d.ordered)

	for _, u := range uents {
		parent, ok := byID[u.DistrictID]
		if !ok {
			return nil, fmt.Errorf("lookup: upazila %q references unknown district id %q", u.Name, u.DistrictID)
		}
		parent.upazilas[strings.ToLower(u.Name)] = u.Name
		parent.ordered = append(parent.ordered, u.Name)
	}
	for _, entry := range byID {
		sort.Strings(entry.ordered)
	}
	return d, nil
}

func (d *Directory) DistrictExists(name string) bool {
	_, ok := d.districts[strings.ToLower(name)]
	return ok
}

func (d *Directory) UpazilaInDistrict(districtName, upazila string) bool {
	entry, ok := d.districts[strings.ToLower(districtName)]
	if !ok {
		return false
	}
	_, ok = entry.upazilas[strings.ToLower(upazila)]
	return ok
}

func (d *Directory) Districts() []string {
	out := make([]string, len(d.ordered))
	copy(out, d.ordered)
	return out
}

func (d *Directory) Upazilas(districtName string) ([]string, bool) {
	entry, ok := d.districts[strings.ToLower(districtName)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(entry.ordered))
	copy(out, entry.ordered)
	return out, true
}
