package profiles

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/pkg/cache"
)

func newDirectoryRouter(svc Service, viewer *models.Identity) (*gin.Engine, *cache.UnifiedCache[[]models.Profile]) {
	gin.SetMode(gin.TestMode)
	mounts := cache.NewUnifiedCache[[]models.Profile](time.Minute, "directory", zap.NewNop())
	h := NewHandler(handlers.NewBaseHandler(zap.NewNop(), "30s"), svc, mounts)

	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.Use(func(c *gin.Context) {
		c.Set(session.IdentityContextKey, viewer)
		c.Next()
	})
	r.GET("/admin/users", h.ShowDirectory)
	r.GET("/admin/users/table", h.FilterDirectory)
	r.DELETE("/admin/users/:id", h.Delete)
	return r, mounts
}

func get(t *testing.T, r http.Handler, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return w, doc
}

func TestHandler_DirectoryLoadsOncePerMount(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListProfiles", mock.Anything).Return(directoryFixture(), nil).Once()
	r, _ := newDirectoryRouter(NewService(repo, new(MockAccountDeleter), zap.NewNop()), admin)

	w, doc := get(t, r, "/admin/users")
	require.Equal(t, http.StatusOK, w.Code)
	mount, ok := doc.Find("input[name=mount]").Attr("value")
	require.True(t, ok)
	assert.Equal(t, 5, doc.Find("#directory-table tbody tr").Length())

	_, doc = get(t, r, "/admin/users/table?mount="+mount+"&q=acme&vendor=non_vendor")
	assert.Equal(t, 2, doc.Find("tbody tr").Length())

	_, doc = get(t, r, "/admin/users/table?mount="+mount+"&role=vendor")
	assert.Equal(t, 1, doc.Find("tbody tr").Length())

	repo.AssertNumberOfCalls(t, "ListProfiles", 1)
}

func TestHandler_DirectoryForbiddenForNonAdmin(t *testing.T) {
	repo := new(MockRepository)
	r, _ := newDirectoryRouter(NewService(repo, new(MockAccountDeleter), zap.NewNop()), cashier)

	w, doc := get(t, r, "/admin/users")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, doc.Find("[role=alert]").Text(), "permission")
	assert.Equal(t, 0, doc.Find("table").Length())
	repo.AssertNotCalled(t, "ListProfiles", mock.Anything)
}

func TestHandler_DeleteUpdatesMount(t *testing.T) {
	all := directoryFixture()
	target := all[2]
	repo := new(MockRepository)
	accounts := new(MockAccountDeleter)
	repo.On("GetProfile", mock.Anything, target.ID).Return(target, nil)
	accounts.On("DeleteUser", mock.Anything, "", target.UserID.String()).Return(nil).Once()
	repo.On("DeleteProfile", mock.Anything, target.ID).Return(nil).Once()

	r, mounts := newDirectoryRouter(NewService(repo, accounts, zap.NewNop()), admin)
	mounts.Set("m1", all)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/users/"+target.ID.String()+"?mount=m1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	remaining, ok := mounts.Get("m1")
	require.True(t, ok)
	assert.Len(t, remaining, 4)
	assert.Len(t, all, 5)
}

func TestHandler_DeleteFailureKeepsRow(t *testing.T) {
	target := directoryFixture()[1]
	repo := new(MockRepository)
	accounts := new(MockAccountDeleter)
	repo.On("GetProfile", mock.Anything, target.ID).Return(target, nil)
	accounts.On("DeleteUser", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	r, _ := newDirectoryRouter(NewService(repo, accounts, zap.NewNop()), admin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/users/"+target.ID.String(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#directory-errors", w.Header().Get("HX-Retarget"))
	assert.Contains(t, w.Body.String(), "role=\"alert\"")
	repo.AssertNotCalled(t, "DeleteProfile", mock.Anything, mock.Anything)
}
