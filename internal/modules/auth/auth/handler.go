package auth

import (
	"errors"
	"strings"

	"github.com/content-prism/prism-core/internal/middleware"
	"github.com/content-prism/prism-core/internal/models"
	appconfigs "github.com/content-prism/prism-core/internal/modules/system/core/configs"
	jwtpkg "github.com/content-prism/prism-core/internal/pkg/jwt"
	"github.com/content-prism/prism-core/internal/pkg/response"
	sessionpkg "github.com/content-prism/prism-core/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	svc    *Service
	cfgSvc *appconfigs.Service
}

func NewHandler(svc *Service, cfgSvc *appconfigs.Service) *Handler {
	return &Handler{svc: svc, cfgSvc: cfgSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/login", h.login)
	a.POST("/register", h.register)
	a.POST("/logout", h.logout)
	a.GET("/session", middleware.OptionalAuth(h.svc.db), h.session)
	a.GET("/me", authMW, h.me)
	a.PATCH("/me", authMW, h.updateProfile)
	a.PUT("/password", authMW, h.changePassword)
	a.GET("/sessions", authMW, h.listSessions)
	a.POST("/sessions/revoke", authMW, h.revokeSession)
	a.POST("/sessions/revoke-others", authMW, h.revokeOtherSessions)

	tok := a.Group("/token", authMW)
	tok.GET("", h.listTokens)
	tok.POST("", h.createToken)
	tok.DELETE("", h.deleteTokenByQuery) // legacy compatibility: DELETE /auth/token?id=...
	tok.DELETE("/:id", h.deleteToken)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	disabled, err := h.isPasswordLoginDisabled()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if disabled {
		response.BadRequest(c, "Password login is disabled")
		return
	}
	token, err := h.svc.Login(dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, errAuthUserNotFound) || errors.Is(err, errAuthWrongPassword) {
			response.ForbiddenMsg(c, "Invalid username or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	setAuthTokenCookie(c, token)
	response.OK(c, loginResponse{Token: token})
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		if errors.Is(err, errOwnerAlreadyRegistered) {
			response.BadRequest(c, "The workspace owner is already registered")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"id": u.ID, "username": u.Username})
}

func (h *Handler) logout(c *gin.Context) {
	if token := extractAuthTokenFromRequest(c); token != "" {
		if claims, err := jwtpkg.Parse(token); err == nil {
			sessionID := strings.TrimSpace(claims.SessionID)
			userID := strings.TrimSpace(claims.UserID)
			if sessionID != "" && userID != "" {
				_ = sessionpkg.Revoke(h.svc.db, userID, sessionID)
			}
		}
	}
	clearAuthTokenCookie(c)
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) session(c *gin.Context) {
	if !middleware.IsAuthenticated(c) {
		response.OK(c, nil)
		return
	}
	userID := middleware.CurrentUserID(c)
	sessionID := middleware.CurrentSessionID(c)
	if sessionID == "" {
		response.OK(c, nil)
		return
	}

	user, err := h.svc.Profile(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.OK(c, nil)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	var s models.UserSession
	if err := h.svc.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.OK(c, nil)
			return
		}
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"session": gin.H{
			"id":         s.ID,
			"user_id":    userID,
			"expires_at": s.ExpiresAt,
			"created_at": s.CreatedAt,
			"ip":         s.IP,
			"ua":         s.UA,
		},
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     displayName(user.Name, user.Username),
			"mail":     user.Mail,
			"avatar":   user.Avatar,
		},
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.svc.Profile(middleware.CurrentUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.svc.UpdateProfile(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, user)
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.ChangePassword(middleware.CurrentUserID(c), middleware.CurrentSessionID(c), &dto)
	if errors.Is(err, errAuthWrongPassword) {
		response.ForbiddenMsg(c, "Current password is incorrect")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) listSessions(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	sessions, err := sessionpkg.ListActive(h.svc.db, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	current := middleware.CurrentSessionID(c)
	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, gin.H{
			"id":         s.ID,
			"user_id":    s.UserID,
			"expires_at": s.ExpiresAt,
			"created_at": s.CreatedAt,
			"ip":         s.IP,
			"ua":         s.UA,
			"current":    s.ID == current,
		})
	}
	response.OK(c, items)
}

func (h *Handler) revokeSession(c *gin.Context) {
	var body struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sessionID := resolveSessionIDFromToken(body.Token)
	if sessionID != "" {
		err := sessionpkg.Revoke(h.svc.db, middleware.CurrentUserID(c), sessionID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			response.InternalError(c, err)
			return
		}
	}
	response.OK(c, gin.H{"status": true})
}

func (h *Handler) revokeOtherSessions(c *gin.Context) {
	if err := sessionpkg.RevokeAllExcept(h.svc.db, middleware.CurrentUserID(c), middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"status": true})
}

func (h *Handler) listTokens(c *gin.Context) {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		ok, err := h.svc.VerifyTokenString(token)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, ok)
		return
	}

	if tokenID := strings.TrimSpace(c.Query("id")); tokenID != "" {
		t, err := h.svc.GetToken(middleware.CurrentUserID(c), tokenID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if t == nil {
			response.NotFoundMsg(c, "Token does not exist")
			return
		}
		response.OK(c, tokenResponse{
			ID:      t.ID,
			Name:    t.Name,
			Token:   t.Token,
			Expired: t.ExpiredAt,
			Created: t.CreatedAt,
		})
		return
	}

	tokens, err := h.svc.ListTokens(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]tokenResponse, len(tokens))
	for i, t := range tokens {
		items[i] = tokenResponse{
			ID: t.ID, Name: t.Name, Token: t.Token,
			Expired: t.ExpiredAt, Created: t.CreatedAt,
		}
	}
	response.OK(c, gin.H{"data": items})
}

func (h *Handler) createToken(c *gin.Context) {
	var dto CreateTokenDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.CreateToken(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, tokenResponse{
		ID: t.ID, Name: t.Name, Token: t.Token,
		Expired: t.ExpiredAt, Created: t.CreatedAt,
	})
}

func (h *Handler) deleteToken(c *gin.Context) {
	if err := h.svc.DeleteToken(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	response.NoContent(c)
}

func (h *Handler) isPasswordLoginDisabled() (bool, error) {
	if h.cfgSvc == nil {
		return false, nil
	}
	cfg, err := h.cfgSvc.Get()
	if err != nil {
		return false, err
	}
	if cfg == nil {
		return false, nil
	}
	return cfg.AuthSecurity.DisablePasswordLogin, nil
}

func (h *Handler) deleteTokenByQuery(c *gin.Context) {
	tokenID := c.Query("id")
	if tokenID == "" {
		response.BadRequest(c, "id is required")
		return
	}
	if err := h.svc.DeleteToken(middleware.CurrentUserID(c), tokenID); err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	response.NoContent(c)
}
