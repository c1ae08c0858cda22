package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"property-management-backend/internal/mw"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and returns a signed session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Info("login rejected",
			zap.String("username", req.Username),
			zap.String("ip_address", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()))
		h.writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(sess)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("login", zap.String("username", user.Username), zap.String("ip_address", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": sess.ExpiresAt,
		"user":       user,
	})
}

// Logout acknowledges the end of a session. Tokens are stateless, so the
// client discards its copy and it lapses at its expiry.
func (h *Handler) Logout(c *gin.Context) {
	if user, ok := mw.CurrentUser(c); ok {
		h.logger.Info("logout", zap.String("username", user.Username))
	}
	c.Status(http.StatusNoContent)
}

// GetSession describes the caller's session and account.
func (h *Handler) GetSession(c *gin.Context) {
	sess, _ := mw.CurrentSession(c)
	user, _ := mw.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"issued_at":  sess.IssuedAt,
		"expires_at": sess.ExpiresAt,
		"user":       user,
	})
}
