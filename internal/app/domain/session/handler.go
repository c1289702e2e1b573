package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	guard *Guard
}

func NewHandler(guard *Guard) *Handler {
	return &Handler{guard: guard}
}

// HandleCheck answers the layout's session poll. A live session gets 204 so
// htmx leaves the page alone.
func (h *Handler) HandleCheck(c *gin.Context) {
	st := FromContext(c)
	res := h.guard.Check(c.Request.Context(), st)
	if res.Valid {
		c.Status(http.StatusNoContent)
		return
	}
	h.guard.RedirectToLogin(c, st)
}
