package catalog

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/views"
	"github.com/FACorreiaa/pos-templui/internal/pkg/tablesort"
)

// ProductColumns are the sortable columns of the product table, in display order.
var ProductColumns = []tablesort.Column[models.Product]{
	{Key: "name", Label: "Name", Kind: tablesort.Text, Text: func(p models.Product) string { return p.Name }},
	{Key: "category", Label: "Category", Kind: tablesort.Text, Text: func(p models.Product) string { return p.Category }},
	{Key: "sku", Label: "SKU", Kind: tablesort.Text, Text: func(p models.Product) string { return p.SKU }},
	{Key: "price", Label: "Price", Kind: tablesort.Number, Number: func(p models.Product) float64 { return p.Price }},
	{Key: "stock", Label: "Stock", Kind: tablesort.Number, Number: func(p models.Product) float64 { return p.Stock }},
	{Key: "expires", Label: "Expires", Kind: tablesort.Date, Date: func(p models.Product) *time.Time { return p.ExpiresAt }},
}

type ProductsHandler struct {
	*handlers.BaseHandler
	repo     Repository
	currency string
}

func NewProductsHandler(base *handlers.BaseHandler, repo Repository, currency string) *ProductsHandler {
	return &ProductsHandler{BaseHandler: base, repo: repo, currency: currency}
}

// ShowProducts renders the product table sorted by the sort/dir query
// parameters. htmx header clicks get only the table back.
func (h *ProductsHandler) ShowProducts(c *gin.Context) {
	st := tablesort.Parse(c.Query("sort"), c.Query("dir"))
	view := views.ProductTableView{Headers: SortHeaders(st), Currency: h.currency}

	products, err := h.repo.ListProducts(c.Request.Context(), nil)
	if err != nil {
		h.Logger.Error("Failed to load products", zap.Error(err))
		view.Error = handlers.UserMessage(err)
	} else {
		view.Products = tablesort.Sort(products, ProductColumns, st)
	}

	if handlers.IsHTMX(c) {
		h.Render(c, http.StatusOK, views.ProductTable(view))
		return
	}
	h.RenderPage(c, "Products", "Products", views.ProductsPage(view))
}

// SortHeaders links every column header to the state a click on it produces.
func SortHeaders(st tablesort.State) []views.SortHeader {
	out := make([]views.SortHeader, 0, len(ProductColumns))
	for _, col := range ProductColumns {
		next := st.Toggle(col.Key)
		q := url.Values{"sort": {next.Column}, "dir": {string(next.Direction)}}
		out = append(out, views.SortHeader{
			Key:       col.Key,
			Label:     col.Label,
			Href:      "/products?" + q.Encode(),
			Active:    st.Column == col.Key,
			Direction: string(st.Direction),
		})
	}
	return out
}
