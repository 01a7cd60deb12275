package pipeline

import (
	"errors"
	"io"
	"strconv"

	"github.com/content-prism/prism-core/internal/middleware"
	"github.com/content-prism/prism-core/internal/pkg/response"
	"github.com/content-prism/prism-core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	svc   *Service
	tasks *taskqueue.Service
}

func NewHandler(svc *Service, tasks *taskqueue.Service) *Handler {
	return &Handler{svc: svc, tasks: tasks}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	contents := rg.Group("/contents", authMW)
	contents.POST("/:id/generate-text", h.generateText)
	contents.POST("/:id/generate-captions", h.generateCaptions)
	contents.GET("/:id/strategy", h.strategy)
	contents.GET("/:id/posts", h.listPosts)
	contents.GET("/:id/caption-sets", h.listCaptionSets)

	tasks := rg.Group("/tasks", authMW)
	tasks.GET("", h.listTasks)
	tasks.GET("/:id", h.getTask)
	tasks.POST("/:id/cancel", h.cancelTask)
	tasks.DELETE("/:id", h.deleteTask)
}

type generateTextRequest struct {
	GenerateTextInput
	Async bool `json:"async"`
}

func (h *Handler) generateText(c *gin.Context) {
	var req generateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	contentID := c.Param("id")
	userID := middleware.CurrentUserID(c)

	if req.Async {
		task, err := h.svc.EnqueueGenerateText(c.Request.Context(), contentID, userID, req.GenerateTextInput)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.Created(c, task)
		return
	}

	post, result, err := h.svc.GenerateText(c.Request.Context(), contentID, userID, req.GenerateTextInput)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if errors.Is(err, ErrEmptySource) || errors.Is(err, ErrNoTemplate) || errors.Is(err, ErrNoProvider) {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"post":              post,
		"strategy":          result.Strategy,
		"token_count":       result.TokenCount,
		"extracted_context": result.ExtractedContext,
		"usage":             result.Usage,
		"processing_ms":     result.ProcessingTime.Milliseconds(),
	})
}

func (h *Handler) generateCaptions(c *gin.Context) {
	// An empty body means "caption the latest post".
	var in GenerateCaptionsInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return
	}

	set, err := h.svc.GenerateCaptionSet(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), in)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if errors.Is(err, ErrNoProvider) {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, set)
}

func (h *Handler) strategy(c *gin.Context) {
	info, err := h.svc.Strategy(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, info)
}

func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.svc.ListPosts(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, posts)
}

func (h *Handler) listCaptionSets(c *gin.Context) {
	sets, err := h.svc.ListCaptionSets(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, sets)
}

func (h *Handler) listTasks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	var taskType *string
	if t := c.Query("type"); t != "" {
		taskType = &t
	}
	var status *taskqueue.TaskStatus
	if s := c.Query("status"); s != "" {
		st := taskqueue.TaskStatus(s)
		status = &st
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), page, size, taskType, status)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"tasks": tasks, "total": total})
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

func (h *Handler) cancelTask(c *gin.Context) {
	if err := h.tasks.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.NoContent(c)
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.tasks.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
