package source

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
	g := rg.Group("/contents", authMW)
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/duplicate", h.duplicate)
	g.POST("/:id/scrape", h.scrape)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	content, err := h.svc.Create(in, middleware.CurrentUserID(c))
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Created(c, content)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListQuery{
		Search:     c.Query("q"),
		SourceType: c.Query("source_type"),
		Tag:        c.Query("tag"),
	}
	contents, p, err := h.svc.List(pagination.FromContext(c), filter)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, contents, p)
}

func (h *Handler) get(c *gin.Context) {
	content, err := h.svc.GetByID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, content)
}

func (h *Handler) update(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	content, err := h.svc.Update(c.Param("id"), in)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, content)
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

func (h *Handler) duplicate(c *gin.Context) {
	content, err := h.svc.Duplicate(c.Param("id"), middleware.CurrentUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, content)
}

type scrapeInput struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *Handler) scrape(c *gin.Context) {
	var in scrapeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.svc.GetByID(c.Param("id")); errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	} else if err != nil {
		response.InternalError(c, err)
		return
	}

	scraped, err := ScrapeURL(c.Request.Context(), in.URL)
	if err != nil {
		response.UnprocessableEntity(c, "Could not extract content from the webpage")
		return
	}

	content, err := h.svc.ApplyScrape(c.Param("id"), scraped, in.URL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, content)
}
