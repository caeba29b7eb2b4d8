package handler

import (
	"fintrack/internal/events"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	store  *storage.Store
	hasher *util.PasswordHasher
	pub    events.Publisher
}

func NewUserHandler(store *storage.Store, hasher *util.PasswordHasher, pub events.Publisher) *UserHandler {
	return &UserHandler{store: store, hasher: hasher, pub: pub}
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.OK(c, user, "User profile retrieved successfully")
}
