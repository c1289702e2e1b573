package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

// SortHeader is one clickable column header. Href already carries the
// toggled sort state.
type SortHeader struct {
	Key       string
	Label     string
	Href      string
	Active    bool
	Direction string
}

type ProductTableView struct {
	Headers  []SortHeader
	Products []models.Product
	Currency string
	Error    string
}

func ProductsPage(v ProductTableView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1 class="mb-6 text-2xl font-semibold">Products</h1>`)
		h.render(ctx, ProductTable(v))
	})
}

func ProductTable(v ProductTableView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div id="product-table">`)
		h.render(ctx, Banner(BannerError, v.Error))
		h.raw(`<table class="min-w-full divide-y divide-gray-200 bg-white text-sm"><thead><tr>`)
		for _, hd := range v.Headers {
			h.rawf(`<th class="px-3 py-2 text-left" data-column="%s"`, esc(hd.Key))
			if hd.Active {
				aria := "ascending"
				if hd.Direction == "desc" {
					aria = "descending"
				}
				h.rawf(` aria-sort="%s"`, aria)
			}
			h.rawf(`><a href="%s" hx-get="%s" hx-target="#product-table" hx-swap="outerHTML" hx-push-url="true" class="font-medium text-gray-600 hover:text-gray-900">`,
				esc(hd.Href), esc(hd.Href))
			h.text(hd.Label)
			if hd.Active {
				if hd.Direction == "desc" {
					h.raw(` ↓`)
				} else {
					h.raw(` ↑`)
				}
			}
			h.raw(`</a></th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, p := range v.Products {
			h.rawf(`<tr data-product="%s"><td class="px-3 py-2">`, p.ID.String())
			h.text(p.Name)
			h.raw(`</td><td class="px-3 py-2">`)
			h.text(p.Category)
			h.raw(`</td><td class="px-3 py-2 font-mono">`)
			h.text(p.SKU)
			h.raw(`</td><td class="px-3 py-2">`, esc(money(p.Price, v.Currency)), `</td><td class="px-3 py-2">`,
				strconv.FormatFloat(p.Stock, 'f', -1, 64), `</td><td class="px-3 py-2">`)
			if p.ExpiresAt != nil {
				h.raw(p.ExpiresAt.Format("2006-01-02"))
			} else {
				h.raw(`<span class="text-gray-400">none</span>`)
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></div>`)
	})
}
