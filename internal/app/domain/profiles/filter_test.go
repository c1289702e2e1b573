package profiles

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

func strPtr(s string) *string { return &s }

func profile(name, email string, role models.Role, vendor bool, business string) models.Profile {
	p := models.Profile{ID: uuid.New(), UserID: uuid.New(), FullName: name, Email: email, Role: role, Status: models.StatusActive}
	p.SetBusinessName(vendor, business)
	return p
}

func directoryFixture() []models.Profile {
	return []models.Profile{
		profile("Ana Admin", "ana@store.test", models.RoleAdmin, false, "Acme"),
		profile("Vera Vendor", "vera@farm.test", models.RoleVendor, true, "Acme Shop"),
		profile("Sam Cashier", "sam@store.test", models.RoleCashier, false, "Acme"),
		profile("Jörg Straße", "JOERG@Store.test", models.RoleManager, false, "Straßenbau"),
		profile("Olga Owner", "olga@farm.test", models.RoleOwner, true, "Green Farm"),
	}
}

func ids(ps []models.Profile) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(ps))
	for _, p := range ps {
		out[p.ID] = true
	}
	return out
}

func TestApply_Search(t *testing.T) {
	all := directoryFixture()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query matches all", "", []string{"Ana Admin", "Vera Vendor", "Sam Cashier", "Jörg Straße", "Olga Owner"}},
		{"case insensitive email", "STORE.TEST", []string{"Ana Admin", "Sam Cashier", "Jörg Straße"}},
		{"vendor business name", "shop", []string{"Vera Vendor"}},
		{"business name", "green", []string{"Olga Owner"}},
		{"unicode folding", "STRASSE", []string{"Jörg Straße"}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range Apply(all, Filter{Query: tt.query}) {
				got = append(got, p.FullName)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_IsIntersectionOfCriteria(t *testing.T) {
	all := directoryFixture()
	queries := []string{"", "acme", "farm", "store"}
	vendors := []VendorFilter{VendorAll, VendorOnly, NonVendor}
	roles := append([]*models.Role{nil}, func() []*models.Role {
		var out []*models.Role
		for _, r := range models.Roles {
			out = append(out, &r)
		}
		return out
	}()...)

	for _, q := range queries {
		for _, v := range vendors {
			for _, r := range roles {
				combined := ids(Apply(all, Filter{Query: q, Role: r, Vendor: v}))
				bySearch := ids(Apply(all, Filter{Query: q}))
				byRole := ids(Apply(all, Filter{Role: r}))
				byVendor := ids(Apply(all, Filter{Vendor: v}))

				for _, p := range all {
					want := bySearch[p.ID] && byRole[p.ID] && byVendor[p.ID]
					require.Equal(t, want, combined[p.ID], "query=%q vendor=%q role=%v profile=%s", q, v, r, p.FullName)
				}
			}
		}
	}
}

func TestApply_VendorFilter(t *testing.T) {
	all := directoryFixture()
	assert.Len(t, Apply(all, Filter{Vendor: VendorOnly}), 2)
	assert.Len(t, Apply(all, Filter{Vendor: NonVendor}), 3)
	assert.Len(t, Apply(all, Filter{}), 5)
}

func TestParseFilter(t *testing.T) {
	f := ParseFilter("  acme ", "Cashier", "vendor")
	assert.Equal(t, "acme", f.Query)
	require.NotNil(t, f.Role)
	assert.Equal(t, models.RoleCashier, *f.Role)
	assert.Equal(t, VendorOnly, f.Vendor)

	f = ParseFilter("", "superuser", "maybe")
	assert.Nil(t, f.Role)
	assert.Equal(t, VendorAll, f.Vendor)
}
