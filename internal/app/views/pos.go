package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

type POSSection struct {
	Key    string
	Label  string
	Href   string
	Active bool
}

type CartLine struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
	Subtotal  float64
}

type CustomerView struct {
	Name  string
	Phone string
}

type PaymentView struct {
	Method      models.PaymentMethod
	Error       string
	Notice      string
	CardEnabled bool
	Card        *CardTerminal
}

// CardTerminal is an open card payment waiting for the customer. The Stripe
// Payment Element confirms it with ClientSecret; only then is the sale booked.
type CardTerminal struct {
	IntentID       string
	Amount         float64
	ClientSecret   string
	PublishableKey string
}

// POSView is the point-of-sale screen. Desktop shows every section side by
// side; mobile shows only the active tab.
type POSView struct {
	Desktop  bool
	Sections []POSSection
	Active   string
	PrevHref string
	NextHref string
	Products []models.Product
	Cart     []CartLine
	Total    float64
	Currency string
	Customer CustomerView
	Payment  PaymentView

	// StateQuery carries tab and viewport width into the section forms.
	StateQuery string
}

func POSPage(v POSView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.render(ctx, POSShell(v))
	})
}

// POSShell is the swappable root of the POS screen.
func POSShell(v POSView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		if v.Desktop {
			h.raw(`<div id="pos-shell" data-layout="desktop" class="grid grid-cols-4 gap-4">`)
			for _, s := range v.Sections {
				h.rawf(`<section id="pos-%s" class="rounded-lg border bg-white p-4"><h2 class="mb-3 font-semibold">`, esc(s.Key))
				h.text(s.Label)
				h.raw(`</h2>`)
				posSection(ctx, h, s.Key, v)
				h.raw(`</section>`)
			}
			h.raw(`</div>`)
			return
		}

		h.raw(`<div id="pos-shell" data-layout="mobile"><div role="tablist" class="mb-3 flex border-b">`)
		for _, s := range v.Sections {
			class := "flex-1 px-2 py-2 text-center text-sm text-gray-600"
			if s.Active {
				class = cx(class, "border-b-2 border-indigo-600 font-semibold text-indigo-600")
			}
			h.rawf(`<a role="tab" aria-selected="%t" href="%s" hx-get="%s" hx-target="#pos-shell" hx-swap="outerHTML" class="%s">`,
				s.Active, esc(s.Href), esc(s.Href), class)
			h.text(s.Label)
			h.raw(`</a>`)
		}
		h.rawf(`</div><section id="pos-%s" role="tabpanel" class="rounded-lg border bg-white p-4">`, esc(v.Active))
		posSection(ctx, h, v.Active, v)
		h.raw(`</section><div class="mt-3 flex justify-between">`)
		h.rawf(`<a href="%s" hx-get="%s" hx-target="#pos-shell" hx-swap="outerHTML" class="text-sm text-indigo-600" data-nav="prev">Previous</a>`, esc(v.PrevHref), esc(v.PrevHref))
		h.rawf(`<a href="%s" hx-get="%s" hx-target="#pos-shell" hx-swap="outerHTML" class="text-sm text-indigo-600" data-nav="next">Next</a>`, esc(v.NextHref), esc(v.NextHref))
		h.raw(`</div></div>`)
	})
}

func posSection(ctx context.Context, h *htmlWriter, key string, v POSView) {
	state := esc(v.StateQuery)
	switch key {
	case "products":
		h.raw(`<ul class="space-y-2">`)
		for _, p := range v.Products {
			h.raw(`<li class="flex items-center justify-between"><span>`)
			h.text(p.Name)
			h.raw(` <span class="text-xs text-gray-500">`, esc(money(p.Price, v.Currency)), `</span></span>`)
			h.rawf(`<button type="button" class="text-sm text-indigo-600" hx-post="/pos/cart?%s" hx-vals='{"product_id":"%s"}' hx-target="#pos-shell" hx-swap="outerHTML">Add</button></li>`,
				state, p.ID.String())
		}
		h.raw(`</ul>`)
	case "cart":
		if len(v.Cart) == 0 {
			h.raw(`<p class="text-sm text-gray-500">Cart is empty</p>`)
			return
		}
		h.raw(`<ul class="space-y-2">`)
		for _, line := range v.Cart {
			h.rawf(`<li class="flex items-center justify-between" data-product="%s"><span>`, esc(line.ProductID))
			h.text(line.Name)
			h.raw(` × `, strconv.Itoa(line.Quantity), `</span><span>`, esc(money(line.Subtotal, v.Currency)), `</span>`)
			h.rawf(`<button type="button" class="text-sm text-red-600" hx-delete="/pos/cart/%s?%s" hx-target="#pos-shell" hx-swap="outerHTML">Remove</button></li>`,
				esc(line.ProductID), state)
		}
		h.raw(`</ul><p class="mt-3 font-semibold" id="cart-total">Total `, esc(money(v.Total, v.Currency)), `</p>`)
	case "customer":
		h.rawf(`<form hx-post="/pos/customer?%s" hx-target="#pos-shell" hx-swap="outerHTML" class="space-y-3">`, state)
		textField(h, "customer_name", "Name", v.Customer.Name, false)
		textField(h, "customer_phone", "Phone", v.Customer.Phone, false)
		h.raw(`<button type="submit" class="`, buttonClass, `">Save customer</button></form>`)
	case "payment":
		h.render(ctx, Banner(BannerError, v.Payment.Error))
		h.render(ctx, Banner(BannerSuccess, v.Payment.Notice))
		if v.Payment.Card != nil {
			cardTerminal(h, v.Payment.Card, v.Currency, state)
			return
		}
		h.rawf(`<form hx-post="/pos/checkout?%s" hx-target="#pos-shell" hx-swap="outerHTML" class="space-y-3">`, state)
		methods := []models.PaymentMethod{models.PaymentCash}
		if v.Payment.CardEnabled {
			methods = append(methods, models.PaymentCard)
		}
		for _, m := range methods {
			h.rawf(`<label class="flex items-center gap-2 text-sm"><input type="radio" name="method" value="%s"%s> %s</label>`,
				m, checked(v.Payment.Method == m || (v.Payment.Method == "" && m == models.PaymentCash)), m)
		}
		h.raw(`<p class="font-semibold">Due `, esc(money(v.Total, v.Currency)), `</p>`,
			`<button type="submit" class="`, buttonClass, `">Charge</button></form>`)
	}
}

// cardTerminal mounts the Stripe Payment Element for an open payment. Once
// Stripe confirms it, the confirm form posts so the server can check the
// payment and book the sale.
func cardTerminal(h *htmlWriter, card *CardTerminal, currency, state string) {
	h.rawf(`<div id="card-terminal" class="space-y-3" data-intent="%s" data-key="%s" data-secret="%s">`,
		esc(card.IntentID), esc(card.PublishableKey), esc(card.ClientSecret))
	h.raw(`<p class="font-semibold">Card payment of `, esc(money(card.Amount, currency)), `</p>`,
		`<div id="payment-element"></div>`,
		`<p id="card-error" role="alert" class="text-sm text-red-600"></p>`,
		`<button type="button" id="card-pay" class="`, buttonClass, `">Pay</button>`)
	h.rawf(`<form id="card-confirm" hx-post="/pos/checkout/confirm?%s" hx-target="#pos-shell" hx-swap="outerHTML">`, state)
	h.raw(`<button type="submit" class="text-sm text-indigo-600">Payment taken, complete sale</button></form>`)
	h.rawf(`<form id="card-cancel" hx-post="/pos/checkout/cancel?%s" hx-target="#pos-shell" hx-swap="outerHTML">`, state)
	h.raw(`<button type="submit" class="text-sm text-red-600">Cancel payment</button></form></div>`)
	h.raw(`<script>(function(){
var el=document.getElementById("card-terminal");
function mount(){
var stripe=Stripe(el.dataset.key);
var elements=stripe.elements({clientSecret:el.dataset.secret});
elements.create("payment").mount("#payment-element");
document.getElementById("card-pay").addEventListener("click",function(){
stripe.confirmPayment({elements:elements,redirect:"if_required"}).then(function(r){
if(r.error){document.getElementById("card-error").textContent=r.error.message;return;}
htmx.trigger("#card-confirm","submit");
});
});
}
if(window.Stripe){mount();return;}
var s=document.createElement("script");s.src="https://js.stripe.com/v3/";s.onload=mount;document.head.appendChild(s);
})();</script>`)
}
