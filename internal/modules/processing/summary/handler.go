package summary

import (
	"errors"

	"github.com/content-prism/prism-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/contents/:id/summary", authMW)
	g.GET("", h.get)
	g.POST("", h.create)
	g.GET("/stream", h.stream)
}

func (h *Handler) get(c *gin.Context) {
	summary, err := h.svc.Get(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrEmptySource) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if summary == nil {
		response.NotFoundMsg(c, "No summary generated yet")
		return
	}
	response.OK(c, summary)
}

func (h *Handler) create(c *gin.Context) {
	task, err := h.svc.Enqueue(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrEmptySource) {
		response.NotFound(c)
		return
	}
	if errors.Is(err, ErrSummaryDisabled) {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, task)
}

func (h *Handler) stream(c *gin.Context) {
	h.svc.Stream(c, c.Param("id"))
}
