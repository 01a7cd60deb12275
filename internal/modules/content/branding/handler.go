package branding

import (
	"github.com/content-prism/prism-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/brand-assets", authMW)
	g.GET("", h.get)
	g.PUT("", h.update)
}

func (h *Handler) get(c *gin.Context) {
	asset, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, asset)
}

func (h *Handler) update(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	asset, err := h.svc.Update(in)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, asset)
}
