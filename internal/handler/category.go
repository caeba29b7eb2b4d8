package handler

import (
	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	store *storage.Store
	pub   events.Publisher
}

func NewCategoryHandler(store *storage.Store, pub events.Publisher) *CategoryHandler {
	return &CategoryHandler{store: store, pub: pub}
}

type categoryReq struct {
	CategoryName string `json:"category_name" binding:"required,max=100"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	categories, err := h.store.ListCategories(c.Request.Context(), user.ID, page)
	if err != nil {
		util.Error(c, err)
		return
	}
	util.OK(c, categories, "Categories retrieved successfully")
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req categoryReq
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.store.CreateCategory(c.Request.Context(), user.ID, req.CategoryName)
	if err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntityCategory, category.ID, user.ID, events.ActionCreated)
	util.OK(c, category, "Category created successfully")
}

// Delete soft-deletes a category. Spending that references it is unchanged.
func (h *CategoryHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.SoftDeleteCategory(c.Request.Context(), user.ID, id); err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntityCategory, id, user.ID, events.ActionDeleted)
	util.OK(c, true, "Category deleted successfully")
}
