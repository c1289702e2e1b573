package profiles

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/views"
	"github.com/FACorreiaa/pos-templui/internal/pkg/cache"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
	mounts  *cache.UnifiedCache[[]models.Profile]
}

func NewHandler(base *handlers.BaseHandler, service Service, mounts *cache.UnifiedCache[[]models.Profile]) *Handler {
	return &Handler{BaseHandler: base, service: service, mounts: mounts}
}

var notices = map[string]string{
	"updated": "Profile updated.",
	"created": "User created.",
}

// ShowDirectory loads the directory once for this page mount. Later filter
// requests carry the mount id and reuse the cached list.
func (h *Handler) ShowDirectory(c *gin.Context) {
	filter := ParseFilter(c.Query("q"), c.Query("role"), c.Query("vendor"))
	view := h.directoryView(filter)
	view.MountID = uuid.NewString()
	view.Notice = notices[c.Query("notice")]

	all, err := h.service.LoadDirectory(c.Request.Context(), session.IdentityFromContext(c))
	if err != nil {
		view.Error = handlers.UserMessage(err)
		h.Render(c, handlers.StatusFor(err), views.Layout(h.NewLayoutData(c, "Users", "Users", views.DirectoryPage(view))))
		return
	}
	h.mounts.Set(view.MountID, all)
	view.Profiles, view.Total = Apply(all, filter), len(all)
	h.RenderPage(c, "Users", "Users", views.DirectoryPage(view))
}

// FilterDirectory re-renders the table partial from the mount's cached list.
func (h *Handler) FilterDirectory(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "FilterDirectory"))
	filter := ParseFilter(c.Query("q"), c.Query("role"), c.Query("vendor"))
	view := h.directoryView(filter)
	view.MountID = c.Query("mount")

	all, ok := h.mounts.Get(view.MountID)
	if !ok {
		l.Debug("Directory mount expired, reloading", zap.String("mount", view.MountID))
		loaded, err := h.service.LoadDirectory(c.Request.Context(), session.IdentityFromContext(c))
		if err != nil {
			view.Error = handlers.UserMessage(err)
			h.Render(c, http.StatusOK, views.DirectoryTable(view))
			return
		}
		all = loaded
		if view.MountID != "" {
			h.mounts.Set(view.MountID, all)
		}
	}
	view.Profiles, view.Total = Apply(all, filter), len(all)
	h.Render(c, http.StatusOK, views.DirectoryTable(view))
}

func (h *Handler) directoryView(f Filter) views.DirectoryView {
	v := views.DirectoryView{Query: f.Query, Vendor: string(f.Vendor)}
	if f.Role != nil {
		v.Role = string(*f.Role)
	}
	return v
}

func (h *Handler) ShowEdit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.ShowNotFound(c)
		return
	}
	p, err := h.service.GetProfile(c.Request.Context(), session.IdentityFromContext(c), id)
	if err != nil {
		h.Render(c, handlers.StatusFor(err), views.Layout(h.NewLayoutData(c, "Edit user", "Users",
			views.Banner(views.BannerError, handlers.UserMessage(err)))))
		return
	}
	h.RenderPage(c, "Edit user", "Users", views.ProfileEditPage(views.ProfileEditView{Profile: p}))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.ShowNotFound(c)
		return
	}
	params := models.UpdateProfileParams{
		FullName:     c.PostForm("full_name"),
		IsVendor:     c.PostForm("is_vendor") == "true",
		BusinessName: c.PostForm("business_name"),
		Phone:        c.PostForm("phone"),
		Branch:       c.PostForm("branch"),
		Status:       models.ProfileStatus(c.PostForm("status")),
	}
	role, roleErr := models.ParseRole(c.PostForm("role"))
	params.Role = role

	viewer := session.IdentityFromContext(c)
	var p models.Profile
	if roleErr != nil {
		err = roleErr
	} else {
		p, err = h.service.UpdateProfile(c.Request.Context(), viewer, id, params)
	}
	if err != nil {
		// Re-render with what was typed.
		p.ID, p.FullName, p.Role, p.Status = id, params.FullName, params.Role, params.Status
		p.Phone, p.Branch = models.OptionalString(params.Phone), models.OptionalString(params.Branch)
		p.SetBusinessName(params.IsVendor, params.BusinessName)
		h.Render(c, handlers.StatusFor(err), views.Layout(h.NewLayoutData(c, "Edit user", "Users",
			views.ProfileEditPage(views.ProfileEditView{Profile: p, Error: handlers.UserMessage(err)}))))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/users?notice=updated")
}

// Delete removes the account and its profile. An empty 200 drops the row;
// failures keep the row and show a banner above the table.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.deleteFailed(c, models.ErrNotFound)
		return
	}

	var token string
	if blob, ok := session.FromContext(c).AuthBlob(); ok {
		token = blob.AccessToken
	}
	if err := h.service.DeleteProfile(c.Request.Context(), session.IdentityFromContext(c), token, id); err != nil {
		h.deleteFailed(c, err)
		return
	}

	if mount := c.Query("mount"); mount != "" {
		if all, ok := h.mounts.Get(mount); ok {
			h.mounts.Set(mount, slices.DeleteFunc(slices.Clone(all), func(p models.Profile) bool { return p.ID == id }))
		}
	}
	c.Status(http.StatusOK)
}

func (h *Handler) deleteFailed(c *gin.Context, err error) {
	c.Header("HX-Retarget", "#directory-errors")
	c.Header("HX-Reswap", "innerHTML")
	// htmx only swaps 2xx responses by default.
	h.Render(c, http.StatusOK, views.Banner(views.BannerError, handlers.UserMessage(err)))
}
