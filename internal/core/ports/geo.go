package ports

// GeoDirectory answers district/upazila membership questions against the
// recognized lookup dataset. All matching is case-insensitive on input;
// returned names use the dataset's canonical casing.
type GeoDirectory interface {
	DistrictExists(district string) bool
	// UpazilaInDistrict reports whether upazila belongs to district.
	UpazilaInDistrict(district, upazila string) bool
	// Districts returns all district names in alphabetical order.
	Districts() []string
	// Upazilas returns the upazilas of a district; ok is false when the
	// district is unknown.
	Upazilas(district string) (upazilas []string, ok bool)
}
