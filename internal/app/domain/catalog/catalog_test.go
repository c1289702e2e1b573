package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/pkg/tablesort"
)

func date(d int) *time.Time {
	t := time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func productRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "category", "sku", "price", "stock", "expires_at", "branch_id"}).
		AddRow(uuid.New(), "Bread", "Bakery", "BRD-1", 2.0, 10.0, (*time.Time)(nil), (*uuid.UUID)(nil)).
		AddRow(uuid.New(), "Cheese", "Dairy", "CHS-1", 7.25, 3.0, date(20), (*uuid.UUID)(nil)).
		AddRow(uuid.New(), "Milk", "Dairy", "MLK-1", 1.5, 24.0, date(5), (*uuid.UUID)(nil))
}

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock, zap.NewNop()), mock
}

func TestRepository_ListProducts(t *testing.T) {
	repo, mock := newMockRepo(t)
	branch := uuid.New()
	mock.ExpectQuery(`SELECT id, name, category, sku, price::float8, stock::float8, expires_at, branch_id FROM products WHERE \(branch_id = \$1 OR branch_id IS NULL\) ORDER BY name`).
		WithArgs(branch.String()).
		WillReturnRows(productRows())

	got, err := repo.ListProducts(context.Background(), &branch)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Nil(t, got[0].ExpiresAt)
	assert.Equal(t, 7.25, got[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetProducts(t *testing.T) {
	repo, mock := newMockRepo(t)
	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(`FROM products WHERE id IN \(\$1,\$2\)`).
		WithArgs(a, b).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "category", "sku", "price", "stock", "expires_at", "branch_id"}).
			AddRow(a, "Milk", "Dairy", "MLK-1", 1.5, 24.0, (*time.Time)(nil), (*uuid.UUID)(nil)))

	got, err := repo.GetProducts(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Contains(t, got, a)
	assert.NotContains(t, got, b)

	empty, err := repo.GetProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_GetBranch(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	mock.ExpectQuery(`SELECT id, name, address FROM branches WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "address"}))

	_, err := repo.GetBranch(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSortHeaders(t *testing.T) {
	headers := SortHeaders(tablesort.State{Column: "price", Direction: tablesort.Asc})
	require.Len(t, headers, len(ProductColumns))
	for _, h := range headers {
		if h.Key == "price" {
			assert.True(t, h.Active)
			assert.Equal(t, "/products?dir=desc&sort=price", h.Href)
			continue
		}
		assert.False(t, h.Active)
		assert.Equal(t, "/products?dir=asc&sort="+h.Key, h.Href)
	}
}

func TestProductsHandler_SortsTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM products ORDER BY name`).WillReturnRows(productRows())
	h := NewProductsHandler(handlers.NewBaseHandler(zap.NewNop(), "30s"), repo, "usd")

	r := gin.New()
	r.GET("/products", h.ShowProducts)

	req := httptest.NewRequest(http.MethodGet, "/products?sort=expires&dir=desc", nil)
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("html head title").Length())

	var names []string
	doc.Find("tbody tr td:first-child").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	assert.Equal(t, []string{"Cheese", "Milk", "Bread"}, names)
	assert.Equal(t, "descending", doc.Find("th[data-column=expires]").AttrOr("aria-sort", ""))
}
