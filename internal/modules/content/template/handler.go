package template

import (
	"errors"

	"github.com/content-prism/prism-core/internal/middleware"
	"github.com/content-prism/prism-core/internal/pkg/pagination"
	"github.com/content-prism/prism-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/templates", authMW)
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tpl, err := h.svc.Create(in, middleware.CurrentUserID(c))
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Created(c, tpl)
}

func (h *Handler) list(c *gin.Context) {
	templates, p, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, templates, p)
}

func (h *Handler) get(c *gin.Context) {
	tpl, err := h.svc.GetByID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, tpl)
}

func (h *Handler) update(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tpl, err := h.svc.Update(c.Param("id"), in)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.OK(c, tpl)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
