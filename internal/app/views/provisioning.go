package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

// ProvisionView is the new-user form with the values typed so far.
type ProvisionView struct {
	Email        string
	FullName     string
	Role         models.Role
	IsVendor     bool
	BusinessName string
	BusinessCode string
	Phone        string
	BranchID     string
	Branches     []models.Branch
	Error        string
	Notice       string
}

func ProvisionPage(v ProvisionView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1 class="mb-4 text-2xl font-semibold">New user</h1><div id="provision-form">`)
		h.render(ctx, ProvisionForm(v))
		h.raw(`</div>`)
	})
}

// ProvisionForm is swapped in place after each submit.
func ProvisionForm(v ProvisionView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.render(ctx, Banner(BannerError, v.Error))
		h.render(ctx, Banner(BannerSuccess, v.Notice))
		h.raw(`<form method="post" action="/admin/users" hx-post="/admin/users" hx-target="#provision-form" hx-swap="innerHTML" class="max-w-lg space-y-4">`)
		h.raw(`<div><label for="email" class="`, labelClass, `">Email</label><input id="email" name="email" type="email" required class="`, inputClass, `" value="`)
		h.text(v.Email)
		h.raw(`"></div><div><label for="password" class="`, labelClass, `">Password</label>`,
			`<input id="password" name="password" type="password" minlength="6" required autocomplete="new-password" class="`, inputClass, `"></div>`)
		textField(h, "full_name", "Full name", v.FullName, true)
		roleSelect(h, v.Role)
		h.rawf(`<label class="flex items-center gap-2 text-sm"><input type="checkbox" name="is_vendor" value="true"%s> Vendor account</label>`, checked(v.IsVendor))
		textField(h, "business_name", "Business name", v.BusinessName, true)
		h.raw(`<div><label for="business_code" class="`, labelClass, `">Business code</label><div class="flex gap-2">`)
		h.render(ctx, BusinessCodeInput(v.BusinessCode))
		h.raw(`<button type="button" class="text-sm text-indigo-600" hx-get="/admin/users/new/code" hx-target="#business_code" hx-swap="outerHTML">Regenerate</button></div></div>`)
		textField(h, "phone", "Phone", v.Phone, false)
		h.raw(`<div><label for="branch" class="`, labelClass, `">Branch</label><select id="branch" name="branch" class="`, inputClass, `"><option value="">No branch</option>`)
		for _, b := range v.Branches {
			id := b.ID.String()
			h.rawf(`<option value="%s"%s>`, id, selected(v.BranchID == id))
			h.text(b.Name)
			h.raw(`</option>`)
		}
		h.raw(`</select></div><button type="submit" class="`, buttonClass, `">Create user</button></form>`)
	})
}

// BusinessCodeInput is the editable code field, re-rendered on regenerate.
// A blank value is filled in on submit.
func BusinessCodeInput(code string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<input id="business_code" name="business_code" type="text" maxlength="32" class="`, cx(inputClass, "font-mono"), `" value="`)
		h.text(code)
		h.raw(`">`)
	})
}
