package provisioning

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/views"
	"github.com/FACorreiaa/pos-templui/internal/pkg/cache"
)

type BranchLister interface {
	ListBranches(ctx context.Context) ([]models.Branch, error)
}

type Handler struct {
	*handlers.BaseHandler
	service     *Service
	branches    BranchLister
	branchCache *cache.UnifiedCache[[]models.Branch]
}

func NewHandler(base *handlers.BaseHandler, service *Service, branches BranchLister, branchCache *cache.UnifiedCache[[]models.Branch]) *Handler {
	return &Handler{BaseHandler: base, service: service, branches: branches, branchCache: branchCache}
}

const branchCacheKey = "all"

func (h *Handler) loadBranches(ctx context.Context) []models.Branch {
	if list, ok := h.branchCache.Get(branchCacheKey); ok {
		return list
	}
	list, err := h.branches.ListBranches(ctx)
	if err != nil {
		// The form still works without a branch.
		h.Logger.Warn("Failed to load branches", zap.Error(err))
		return nil
	}
	h.branchCache.Set(branchCacheKey, list)
	return list
}

func (h *Handler) freshView(ctx context.Context) views.ProvisionView {
	v := views.ProvisionView{Role: models.RoleCashier, Branches: h.loadBranches(ctx)}
	code, err := NewBusinessCode()
	if err != nil {
		h.Logger.Error("Failed to generate business code", zap.Error(err))
		v.Error = handlers.UserMessage(err)
	}
	v.BusinessCode = code
	return v
}

func (h *Handler) ShowForm(c *gin.Context) {
	h.RenderPage(c, "New user", "Users", views.ProvisionPage(h.freshView(c.Request.Context())))
}

// RegenerateCode swaps in a new business code.
func (h *Handler) RegenerateCode(c *gin.Context) {
	code, err := NewBusinessCode()
	if err != nil {
		h.Logger.Error("Failed to generate business code", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	h.Render(c, http.StatusOK, views.BusinessCodeInput(code))
}

func (h *Handler) Create(c *gin.Context) {
	form := Form{
		Email:        c.PostForm("email"),
		Password:     c.PostForm("password"),
		FullName:     c.PostForm("full_name"),
		Role:         c.PostForm("role"),
		IsVendor:     c.PostForm("is_vendor") == "true",
		BusinessName: c.PostForm("business_name"),
		BusinessCode: c.PostForm("business_code"),
		Phone:        c.PostForm("phone"),
		BranchID:     c.PostForm("branch"),
	}

	var token string
	if blob, ok := session.FromContext(c).AuthBlob(); ok {
		token = blob.AccessToken
	}
	res := h.service.Provision(c.Request.Context(), session.IdentityFromContext(c), token, form)

	if res.OK() {
		if !handlers.IsHTMX(c) {
			c.Redirect(http.StatusSeeOther, "/admin/users?notice=created")
			return
		}
		v := h.freshView(c.Request.Context())
		v.Notice = "User " + res.Profile.Email + " created."
		h.Render(c, http.StatusOK, views.ProvisionForm(v))
		return
	}

	v := views.ProvisionView{
		Email:        form.Email,
		FullName:     form.FullName,
		IsVendor:     form.IsVendor,
		BusinessName: form.BusinessName,
		BusinessCode: form.BusinessCode,
		Phone:        form.Phone,
		BranchID:     form.BranchID,
		Branches:     h.loadBranches(c.Request.Context()),
		Error:        failureMessage(res),
	}
	if role, err := models.ParseRole(form.Role); err == nil {
		v.Role = role
	}
	if handlers.IsHTMX(c) {
		// htmx only swaps 2xx responses by default.
		h.Render(c, http.StatusOK, views.ProvisionForm(v))
		return
	}
	h.Render(c, handlers.StatusFor(res.Err), views.Layout(h.NewLayoutData(c, "New user", "Users", views.ProvisionPage(v))))
}

func failureMessage(res Result) string {
	msg := handlers.UserMessage(res.Err)
	switch {
	case res.RolledBack:
		return msg + " The new account was removed again."
	case res.Orphaned:
		return msg + " The login account was created but has no profile; remove it before retrying."
	}
	return msg
}
