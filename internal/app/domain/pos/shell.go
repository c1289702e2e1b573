// Package pos composes the point-of-sale screen.
package pos

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

type Section string

const (
	SectionProducts Section = "products"
	SectionCart     Section = "cart"
	SectionCustomer Section = "customer"
	SectionPayment  Section = "payment"
)

// Sections is the fixed tab order of the POS screen.
var Sections = []Section{SectionProducts, SectionCart, SectionCustomer, SectionPayment}

var sectionLabels = map[Section]string{
	SectionProducts: "Products",
	SectionCart:     "Cart",
	SectionCustomer: "Customer",
	SectionPayment:  "Payment",
}

func (s Section) Label() string { return sectionLabels[s] }

// ParseSection returns the named section, defaulting to products.
func ParseSection(s string) Section {
	sec := Section(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Sections, sec) {
		return sec
	}
	return SectionProducts
}

// Next returns the tab after s, wrapping from payment to products.
func Next(s Section) Section {
	i := slices.Index(Sections, s)
	if i < 0 {
		return SectionProducts
	}
	return Sections[(i+1)%len(Sections)]
}

// Prev returns the tab before s, wrapping from products to payment.
func Prev(s Section) Section {
	i := slices.Index(Sections, s)
	if i < 0 {
		return SectionProducts
	}
	return Sections[(i-1+len(Sections))%len(Sections)]
}

type Layout string

const (
	LayoutDesktop Layout = "desktop"
	LayoutMobile  Layout = "mobile"
)

const DefaultBreakpoint = 1024

// LayoutFor picks the layout for a viewport width in CSS pixels. A width of
// zero or less means unknown and renders desktop.
func LayoutFor(width, breakpoint int) Layout {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	if width > 0 && width < breakpoint {
		return LayoutMobile
	}
	return LayoutDesktop
}

// ViewportWidth reads the viewport width from the vw query parameter or the
// viewport client hints, in that order. It returns 0 when unknown.
func ViewportWidth(r *http.Request) int {
	candidates := []string{
		r.URL.Query().Get("vw"),
		r.Header.Get("Sec-CH-Viewport-Width"),
		r.Header.Get("Viewport-Width"),
	}
	for _, raw := range candidates {
		if w, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && w > 0 {
			return w
		}
	}
	return 0
}
