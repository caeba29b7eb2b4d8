package handler

import (
	"strconv"
	"strings"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, apperr.Authentication(util.MsgInvalidCredentials))
		return nil, false
	}
	return user, true
}

type pageQuery struct {
	Skip  *int `form:"skip" binding:"omitempty,min=0"`
	Limit *int `form:"limit" binding:"omitempty,min=1"`
}

// bindPage reads skip/limit. The store applies defaults and the upper cap.
func bindPage(c *gin.Context) (storage.Page, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		util.Error(c, util.BindingError(err))
		return storage.Page{}, false
	}
	var p storage.Page
	if q.Skip != nil {
		p.Skip = *q.Skip
	}
	if q.Limit != nil {
		p.Limit = *q.Limit
	}
	return p, true
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, util.FieldInvalid(name, name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the request body, writing a 422 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.Error(c, util.BindingError(err))
		return false
	}
	return true
}

// optionalCurrency parses a currency field; nil or blank means unset.
func optionalCurrency(field string, s *string) (models.Currency, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "", nil
	}
	cur, err := models.ParseCurrency(*s)
	if err != nil {
		return "", util.FieldInvalid(field, err.Error())
	}
	return cur, nil
}

// optionalDateTime parses a timestamp field; nil or blank means unset.
func optionalDateTime(field string, s *string) (time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return time.Time{}, nil
	}
	t, err := util.ParseDateTime(*s)
	if err != nil {
		return time.Time{}, util.FieldInvalid(field, field+" must be an ISO 8601 date or datetime")
	}
	return t, nil
}

// optionalDate parses a YYYY-MM-DD query value.
func optionalDate(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := util.ParseDate(s)
	if err != nil {
		return nil, util.FieldInvalid(field, field+" must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

// notify publishes a change. A publish failure is logged and never fails the
// request; the row stays unsynced.
func notify(c *gin.Context, pub events.Publisher, entity string, id, userID uint, action events.Action) {
	if pub == nil {
		return
	}
	ctx := c.Request.Context()
	if err := pub.Publish(ctx, events.NewChange(entity, id, userID, action)); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentEvents).WarnContext(ctx, "publish change failed",
			"entity", entity, "id", id, applog.FieldError, err)
	}
}
