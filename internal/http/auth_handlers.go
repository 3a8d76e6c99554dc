package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"web-store/internal/domain"
	"web-store/internal/service"
)

type registerRequest struct {
	Login    string `json:"login" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Login, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateLogin), errors.Is(err, service.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.internalError(c, err)
		}
		return
	}

	if err := h.issueSession(c, user); err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		// Unknown login and wrong password collapse into one response so the
		// endpoint cannot be used to enumerate users.
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			h.unauthorized(c, err)
			return
		}
		h.internalError(c, err)
		return
	}

	if err := h.issueSession(c, user); err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) currentUser(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.unauthorized(c, errTokenCookieMissing)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

// issueSession mints a token for the user and sets the session cookie.
func (h *Handler) issueSession(c *gin.Context, user *domain.User) error {
	token, err := h.tokens.Issue(domain.Principal{
		UserID: user.ID,
		Login:  user.Login,
		Role:   user.Role(),
	})
	if err != nil {
		return err
	}
	h.setSessionCookie(c, token)
	return nil
}
