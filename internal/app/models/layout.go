package models

import "github.com/a-h/templ"

type NavItem struct {
	Name  string
	URL   string
	Roles []Role // empty means every signed-in role
}

type Navigation struct {
	Items []NavItem
}

// For returns the items visible to role.
func (n Navigation) For(role Role) []NavItem {
	var out []NavItem
	for _, item := range n.Items {
		if len(item.Roles) == 0 {
			out = append(out, item)
			continue
		}
		for _, r := range item.Roles {
			if r == role {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

type LayoutTempl struct {
	Title        string
	User         *Identity
	Nav          Navigation
	ActiveNav    string
	Content      templ.Component
	PollInterval string // htmx interval, e.g. "30s"; empty disables the session poll
}

var MainNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/dashboard"},
		{Name: "Point of Sale", URL: "/pos", Roles: []Role{RoleAdmin, RoleOwner, RoleManager, RoleCashier}},
		{Name: "Products", URL: "/products", Roles: []Role{RoleAdmin, RoleOwner, RoleManager, RoleVendor}},
		{Name: "Users", URL: "/admin/users", Roles: []Role{RoleAdmin}},
	},
}
