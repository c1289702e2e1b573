package profiles

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

type VendorFilter string

const (
	VendorAll  VendorFilter = ""
	VendorOnly VendorFilter = "vendor"
	NonVendor  VendorFilter = "non_vendor"
)

// Filter narrows the directory. All criteria must hold.
type Filter struct {
	Query  string
	Role   *models.Role // nil matches every role
	Vendor VendorFilter
}

// ParseFilter reads filter criteria from form values, ignoring unknown
// roles and vendor options.
func ParseFilter(query, role, vendor string) Filter {
	f := Filter{Query: strings.TrimSpace(query)}
	if r, err := models.ParseRole(role); err == nil {
		f.Role = &r
	}
	switch VendorFilter(vendor) {
	case VendorOnly, NonVendor:
		f.Vendor = VendorFilter(vendor)
	}
	return f
}

// Apply returns the profiles matching f in their original order.
func Apply(profiles []models.Profile, f Filter) []models.Profile {
	// cases.Caser is stateful; one per call.
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(f.Query))

	out := make([]models.Profile, 0, len(profiles))
	for _, p := range profiles {
		if f.Role != nil && p.Role != *f.Role {
			continue
		}
		if f.Vendor == VendorOnly && !p.IsVendor || f.Vendor == NonVendor && p.IsVendor {
			continue
		}
		if needle != "" && !matchesQuery(folder, p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(folder cases.Caser, p models.Profile, needle string) bool {
	fields := []string{p.FullName, p.Email, models.Deref(p.BusinessName), models.Deref(p.VendorBusinessName)}
	for _, field := range fields {
		if field != "" && strings.Contains(folder.String(field), needle) {
			return true
		}
	}
	return false
}
