package handler

import (
	"fintrack/internal/apperr"
	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

type updateProfileReq struct {
	FirstName       *string `json:"first_name" binding:"omitempty,max=100"`
	LastName        *string `json:"last_name" binding:"omitempty,max=100"`
	DefaultCurrency *string `json:"default_currency" binding:"omitempty,currency"`
}

// UpdateProfile changes names and the default currency. Absent fields are
// kept.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateProfileReq
	if !bindJSON(c, &req) {
		return
	}

	patch := storage.UserPatch{FirstName: req.FirstName, LastName: req.LastName}
	if req.DefaultCurrency != nil {
		cur, err := optionalCurrency("default_currency", req.DefaultCurrency)
		if err != nil {
			util.Error(c, err)
			return
		}
		if cur != "" {
			patch.DefaultCurrency = &cur
		}
	}

	updated, err := h.store.UpdateUserProfile(c.Request.Context(), user.ID, patch)
	if err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntityUser, user.ID, user.ID, events.ActionUpdated)
	util.OK(c, updated, "User profile updated successfully")
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword replaces the password after checking the current one.
// Tokens already issued stay valid until they expire.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req changePasswordReq
	if !bindJSON(c, &req) {
		return
	}

	if !h.hasher.Verify(req.CurrentPassword, user.Password) {
		util.Error(c, apperr.Invalid("Current password is incorrect"))
		return
	}
	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		util.Error(c, passwordError("new_password", err))
		return
	}
	if err := h.store.UpdateUserPassword(c.Request.Context(), user.ID, hash); err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntityUser, user.ID, user.ID, events.ActionUpdated)
	util.OK(c, true, "Password changed successfully")
}
