package views

import (
	"context"

	"github.com/a-h/templ"
)

type LoginView struct {
	Email string
	Error string
}

func LoginPage(v LoginView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="mx-auto mt-16 max-w-sm rounded-lg border bg-white p-6 shadow-sm">`,
			`<h1 class="mb-4 text-xl font-semibold">Sign in</h1>`)
		h.render(ctx, Banner(BannerError, v.Error))
		h.raw(`<form method="post" action="/auth/login" class="space-y-4">`,
			`<div><label for="email" class="`, labelClass, `">Email</label>`,
			`<input id="email" name="email" type="email" required autocomplete="username" class="`, inputClass, `" value="`)
		h.text(v.Email)
		h.raw(`"></div>`,
			`<div><label for="password" class="`, labelClass, `">Password</label>`,
			`<input id="password" name="password" type="password" required autocomplete="current-password" class="`, inputClass, `"></div>`,
			`<button type="submit" class="`, cx(buttonClass, "w-full justify-center"), `">Sign in</button></form></div>`)
	})
}
