package public

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/followups/internal/service/public"
	"github.com/jwalitptl/followups/pkg/httputil"
)

type Handler struct {
	service public.PublicServicer
}

func NewHandler(service public.PublicServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the unauthenticated patient page on r with any
// extra middleware.
func (h *Handler) RegisterRoutes(r gin.IRoutes, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.View)
	r.GET("/p/:token", handlers...)
}

func (h *Handler) View(c *gin.Context) {
	view, err := h.service.View(c.Request.Context(), c.Param("token"), public.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "", view)
}
