package pos

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextPrev_Cycle(t *testing.T) {
	s := SectionProducts
	var seen []Section
	for range Sections {
		seen = append(seen, s)
		s = Next(s)
	}
	assert.Equal(t, Sections, seen)
	assert.Equal(t, SectionProducts, s, "next wraps around to products")

	assert.Equal(t, SectionPayment, Prev(SectionProducts))
	assert.Equal(t, SectionCart, Prev(SectionCustomer))
	for _, sec := range Sections {
		assert.Equal(t, sec, Prev(Next(sec)))
	}
	assert.Equal(t, SectionProducts, Next(Section("bogus")))
}

func TestParseSection(t *testing.T) {
	assert.Equal(t, SectionProducts, ParseSection(""))
	assert.Equal(t, SectionProducts, ParseSection("reports"))
	assert.Equal(t, SectionPayment, ParseSection(" Payment "))
	assert.Equal(t, "Customer", SectionCustomer.Label())
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		breakpoint int
		want       Layout
	}{
		{"unknown width", 0, 1024, LayoutDesktop},
		{"phone", 390, 1024, LayoutMobile},
		{"just below", 1023, 1024, LayoutMobile},
		{"at breakpoint", 1024, 1024, LayoutDesktop},
		{"wide", 1920, 1024, LayoutDesktop},
		{"default breakpoint", 800, 0, LayoutMobile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LayoutFor(tt.width, tt.breakpoint))
		})
	}
}

func TestViewportWidth(t *testing.T) {
	req := httptest.NewRequest("GET", "/pos", nil)
	assert.Equal(t, 0, ViewportWidth(req))

	req.Header.Set("Viewport-Width", "800")
	assert.Equal(t, 800, ViewportWidth(req))

	req.Header.Set("Sec-CH-Viewport-Width", "600")
	assert.Equal(t, 600, ViewportWidth(req))

	req = httptest.NewRequest("GET", "/pos?vw=375", nil)
	req.Header.Set("Sec-CH-Viewport-Width", "1280")
	assert.Equal(t, 375, ViewportWidth(req), "explicit query wins over hints")

	req = httptest.NewRequest("GET", "/pos?vw=abc", nil)
	assert.Equal(t, 0, ViewportWidth(req))
}
