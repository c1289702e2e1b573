package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

// DirectoryView is the profile directory after filtering.
type DirectoryView struct {
	MountID  string
	Query    string
	Role     string // empty means all roles
	Vendor   string // "", "vendor" or "non_vendor"
	Profiles []models.Profile
	Total    int
	Error    string
	Notice   string
}

func DirectoryPage(v DirectoryView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="mb-6 flex items-center justify-between"><h1 class="text-2xl font-semibold">Users</h1>`,
			`<a href="/admin/users/new" class="`, buttonClass, `">New user</a></div>`)
		h.render(ctx, Banner(BannerSuccess, v.Notice))
		h.raw(`<div id="directory-errors"></div>`)

		h.raw(`<form id="directory-filters" class="mb-4 grid gap-3 sm:grid-cols-3" hx-get="/admin/users/table" hx-target="#directory-table" hx-swap="outerHTML" `,
			`hx-trigger="input changed delay:300ms from:#directory-q, change" hx-indicator="#directory-loading">`)
		h.rawf(`<input type="hidden" name="mount" value="%s">`, esc(v.MountID))
		h.raw(`<input id="directory-q" type="search" name="q" placeholder="Search name, email or business" class="`, inputClass, `" value="`)
		h.text(v.Query)
		h.raw(`"><select name="role" class="`, inputClass, `"><option value="">All roles</option>`)
		for _, r := range models.Roles {
			h.rawf(`<option value="%s"%s>%s</option>`, esc(string(r)), selected(v.Role == string(r)), esc(string(r)))
		}
		h.raw(`</select><select name="vendor" class="`, inputClass, `">`)
		for _, opt := range [][2]string{{"", "Vendors and staff"}, {"vendor", "Vendors only"}, {"non_vendor", "Staff only"}} {
			h.rawf(`<option value="%s"%s>%s</option>`, opt[0], selected(v.Vendor == opt[0]), opt[1])
		}
		h.raw(`</select></form><div id="directory-loading" class="htmx-indicator text-sm text-gray-500">Loading…</div>`)
		h.render(ctx, DirectoryTable(v))
	})
}

// DirectoryTable is the swappable table partial.
func DirectoryTable(v DirectoryView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div id="directory-table">`)
		if v.Error != "" {
			h.render(ctx, Banner(BannerError, v.Error))
			h.raw(`</div>`)
			return
		}
		h.rawf(`<p class="mb-2 text-sm text-gray-500">Showing %d of %d users</p>`, len(v.Profiles), v.Total)
		h.raw(`<table class="min-w-full divide-y divide-gray-200 bg-white text-sm"><thead><tr>`)
		for _, col := range []string{"Name", "Email", "Role", "Business", "Code", "Status", ""} {
			h.raw(`<th class="px-3 py-2 text-left font-medium text-gray-600">`, col, `</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		if len(v.Profiles) == 0 {
			h.raw(`<tr><td colspan="7" class="px-3 py-6 text-center text-gray-500">No users match the current filters</td></tr>`)
		}
		for _, p := range v.Profiles {
			id := p.ID.String()
			h.rawf(`<tr id="profile-%s" data-role="%s">`, id, esc(string(p.Role)))
			h.raw(`<td class="px-3 py-2">`)
			h.text(p.FullName)
			h.raw(`</td><td class="px-3 py-2">`)
			h.text(p.Email)
			h.raw(`</td><td class="px-3 py-2">`)
			h.text(string(p.Role))
			h.raw(`</td><td class="px-3 py-2">`)
			h.text(p.DisplayBusiness())
			if p.IsVendor {
				h.raw(` <span class="rounded bg-amber-100 px-1 text-xs text-amber-800">vendor</span>`)
			}
			h.raw(`</td><td class="px-3 py-2 font-mono">`)
			h.text(p.BusinessCode)
			h.raw(`</td><td class="px-3 py-2">`)
			h.text(string(p.Status))
			h.rawf(`</td><td class="px-3 py-2 text-right"><a href="/admin/users/%s/edit" class="text-indigo-600">Edit</a> `, id)
			h.rawf(`<button type="button" class="ml-2 text-red-600" hx-delete="/admin/users/%s" hx-target="#profile-%s" hx-swap="outerHTML" hx-include="[name=mount]" hx-confirm="Delete this user and their account?">Delete</button></td></tr>`, id, id)
		}
		h.raw(`</tbody></table></div>`)
	})
}

type ProfileEditView struct {
	Profile models.Profile
	Error   string
}

func ProfileEditPage(v ProfileEditView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		p := v.Profile
		h.raw(`<h1 class="mb-4 text-2xl font-semibold">Edit `)
		h.text(p.Email)
		h.raw(`</h1>`)
		h.render(ctx, Banner(BannerError, v.Error))
		h.rawf(`<form method="post" action="/admin/users/%s" class="max-w-lg space-y-4">`, p.ID.String())
		textField(h, "full_name", "Full name", p.FullName, true)
		roleSelect(h, p.Role)
		h.rawf(`<label class="flex items-center gap-2 text-sm"><input type="checkbox" name="is_vendor" value="true"%s> Vendor</label>`, checked(p.IsVendor))
		textField(h, "business_name", "Business name", p.DisplayBusiness(), true)
		textField(h, "phone", "Phone", models.Deref(p.Phone), false)
		textField(h, "branch", "Branch", models.Deref(p.Branch), false)
		h.raw(`<div><label for="status" class="`, labelClass, `">Status</label><select id="status" name="status" class="`, inputClass, `">`)
		for _, s := range []models.ProfileStatus{models.StatusActive, models.StatusInactive} {
			h.rawf(`<option value="%s"%s>%s</option>`, s, selected(p.Status == s), s)
		}
		h.raw(`</select></div><button type="submit" class="`, buttonClass, `">Save</button></form>`)
	})
}

func textField(h *htmlWriter, name, label, value string, required bool) {
	req := ""
	if required {
		req = " required"
	}
	h.rawf(`<div><label for="%s" class="%s">%s</label><input id="%s" name="%s" type="text" class="%s"%s value="`,
		name, labelClass, esc(label), name, name, inputClass, req)
	h.text(value)
	h.raw(`"></div>`)
}

func roleSelect(h *htmlWriter, current models.Role) {
	h.raw(`<div><label for="role" class="`, labelClass, `">Role</label><select id="role" name="role" required class="`, inputClass, `">`)
	for _, r := range models.Roles {
		h.rawf(`<option value="%s"%s>%s</option>`, r, selected(r == current), r)
	}
	h.raw(`</select></div>`)
}
