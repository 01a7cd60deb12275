package spaces

import (
	"errors"
	"io"

	"github.com/content-prism/prism-core/internal/middleware"
	"github.com/content-prism/prism-core/internal/pkg/pagination"
	"github.com/content-prism/prism-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/assets", authMW)
	g.POST("/upload", h.upload)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/:id/download", h.download)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	payload, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	asset, err := h.svc.Upload(c.Request.Context(), UploadInput{
		FileName:        file.Filename,
		ContentType:     file.Header.Get("Content-Type"),
		Payload:         payload,
		SourceContentID: c.PostForm("source_content_id"),
	}, middleware.CurrentUserID(c))
	if errors.Is(err, ErrStorageNotConfigured) {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, asset)
}

func (h *Handler) list(c *gin.Context) {
	assets, p, err := h.svc.List(pagination.FromContext(c), c.Query("source_content_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, assets, p)
}

func (h *Handler) get(c *gin.Context) {
	asset, err := h.svc.GetByID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, asset)
}

func (h *Handler) download(c *gin.Context) {
	url, err := h.svc.PresignDownload(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if errors.Is(err, ErrStorageNotConfigured) {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"url": url})
}

func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
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
