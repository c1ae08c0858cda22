package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"property-management-backend/internal/auth"
	"property-management-backend/internal/model"
	"property-management-backend/internal/mw"
	"property-management-backend/internal/store"
)

var errSelf = errors.New("cannot remove or deactivate your own account")

type createUserRequest struct {
	Username    string   `json:"username" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	IsActive    *bool    `json:"is_active"`
	Permissions []string `json:"permissions"`
}

type updateUserRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

type permissionsRequest struct {
	Permissions []string `json:"permissions"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.Users().List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.store.Users().Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser creates an account and grants the named permissions.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.Users().Create(ctx, store.UserInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		IsActive: req.IsActive == nil || *req.IsActive,
	}, hash)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(req.Permissions) > 0 {
		if user, err = h.store.Users().SetPermissions(ctx, user.ID, req.Permissions); err != nil {
			h.writeError(c, err)
			return
		}
	}

	h.logger.Info("user created", zap.String("username", user.Username), zap.String("by", h.actor(c)))
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.IsActive && h.isSelf(c, id) {
		badRequest(c, errSelf)
		return
	}
	user, err := h.store.Users().Update(c.Request.Context(), id, store.UserInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) SetUserPassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.store.Users().SetPassword(c.Request.Context(), id, hash); err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("password changed", zap.Int64("user_id", id), zap.String("by", h.actor(c)))
	c.Status(http.StatusNoContent)
}

// SetUserPermissions replaces the user's permissions with the named ones.
func (h *Handler) SetUserPermissions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req permissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.store.Users().SetPermissions(c.Request.Context(), id, req.Permissions)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if h.isSelf(c, id) {
		badRequest(c, errSelf)
		return
	}
	user, err := h.store.Users().Deactivate(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if h.isSelf(c, id) {
		badRequest(c, errSelf)
		return
	}
	user, err := h.store.Users().Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("user deleted", zap.String("username", user.Username), zap.String("by", h.actor(c)))
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPermissions(c *gin.Context) {
	perms, err := h.store.Users().ListPermissions(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

type permissionRequest struct {
	Name      string `json:"name" binding:"required"`
	Module    string `json:"module" binding:"required"`
	CanView   bool   `json:"can_view"`
	CanAdd    bool   `json:"can_add"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
}

func (h *Handler) CreatePermission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	perm, err := h.store.Users().CreatePermission(c.Request.Context(), model.Permission{
		Name:      req.Name,
		Module:    req.Module,
		CanView:   req.CanView,
		CanAdd:    req.CanAdd,
		CanEdit:   req.CanEdit,
		CanDelete: req.CanDelete,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, perm)
}

func (h *Handler) isSelf(c *gin.Context, id int64) bool {
	user, ok := mw.CurrentUser(c)
	return ok && user.ID == id
}

func (h *Handler) actor(c *gin.Context) string {
	if user, ok := mw.CurrentUser(c); ok {
		return user.Username
	}
	return ""
}
