package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

// Layout renders the application shell around d.Content. Signed-in pages get
// the single session poll element that calls /session/check.
func Layout(d models.LayoutTempl) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		h.text(d.Title)
		h.raw(`</title><link rel="stylesheet" href="/assets/css/app.css">`,
			`<script src="https://unpkg.com/htmx.org@2.0.4" defer></script></head>`,
			`<body class="min-h-screen bg-gray-50 text-gray-900" hx-boost="true">`)

		if d.User != nil {
			h.raw(`<nav class="flex items-center gap-4 border-b bg-white px-4 py-3">`)
			for _, item := range d.Nav.For(d.User.Role) {
				class := "text-sm text-gray-600 hover:text-gray-900"
				if item.Name == d.ActiveNav {
					class = cx(class, "font-semibold text-indigo-600")
				}
				h.rawf(`<a href="%s" class="%s">`, esc(item.URL), class)
				h.text(item.Name)
				h.raw(`</a>`)
			}
			h.raw(`<span class="ml-auto text-sm text-gray-500">`)
			h.text(displayName(d.User))
			h.raw(`</span><form method="post" action="/auth/logout"><button type="submit" class="text-sm text-gray-600 hover:text-gray-900">Sign out</button></form></nav>`)
			if d.PollInterval != "" {
				h.rawf(`<div id="session-poll" hx-get="/session/check" hx-trigger="every %s" hx-swap="none"></div>`, esc(d.PollInterval))
			}
		}

		h.raw(`<main class="mx-auto max-w-7xl p-4">`)
		h.render(ctx, d.Content)
		h.raw(`</main></body></html>`)
	})
}

func displayName(id *models.Identity) string {
	if id == nil {
		return ""
	}
	if id.FullName != "" {
		return id.FullName
	}
	return id.Email
}

// LocationReplace navigates the browser to path without leaving the current
// page in history.
func LocationReplace(path string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		target, err := templ.JSONString(path)
		if err != nil {
			h.err = err
			return
		}
		h.raw(`<script>window.location.replace(`, target, `)</script>`)
	})
}

type BannerKind string

const (
	BannerError   BannerKind = "error"
	BannerSuccess BannerKind = "success"
	BannerInfo    BannerKind = "info"
)

// Banner renders a dismissable message. An empty message renders nothing.
func Banner(kind BannerKind, message string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if message == "" {
			return
		}
		class := "mb-4 rounded-md border px-4 py-3 text-sm"
		switch kind {
		case BannerError:
			class = cx(class, "border-red-200 bg-red-50 text-red-700")
		case BannerSuccess:
			class = cx(class, "border-green-200 bg-green-50 text-green-700")
		default:
			class = cx(class, "border-blue-200 bg-blue-50 text-blue-700")
		}
		h.rawf(`<div class="%s" role="alert" data-kind="%s">`, class, esc(string(kind)))
		h.text(message)
		h.raw(`</div>`)
	})
}

// NotFoundPage is shown for unknown routes.
func NotFoundPage() templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="py-16 text-center"><h1 class="text-2xl font-semibold">Page not found</h1>`,
			`<a href="/dashboard" class="mt-4 inline-block text-indigo-600">Back to dashboard</a></div>`)
	})
}

// DashboardPage is the landing page after sign in.
func DashboardPage(id *models.Identity, nav []models.NavItem) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<h1 class="mb-6 text-2xl font-semibold">Welcome, `)
		h.text(displayName(id))
		h.raw(`</h1><div class="grid gap-4 sm:grid-cols-2 lg:grid-cols-3">`)
		for _, item := range nav {
			if item.URL == "/dashboard" {
				continue
			}
			h.rawf(`<a href="%s" class="rounded-lg border bg-white p-6 shadow-sm hover:shadow">`, esc(item.URL))
			h.text(item.Name)
			h.raw(`</a>`)
		}
		h.raw(`</div>`)
	})
}
