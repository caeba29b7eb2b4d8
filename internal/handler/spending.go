package handler

import (
	"time"

	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// SpendingHandler serves spending CRUD, the monthly summary and exports.
type SpendingHandler struct {
	store *storage.Store
	pub   events.Publisher
}

func NewSpendingHandler(store *storage.Store, pub events.Publisher) *SpendingHandler {
	return &SpendingHandler{store: store, pub: pub}
}

type spendingReq struct {
	Amount     *float64 `json:"amount" binding:"required,gt=0"`
	Notes      *string  `json:"notes"`
	ItemName   *string  `json:"item_name" binding:"omitempty,max=255"`
	Currency   *string  `json:"currency" binding:"omitempty,currency"`
	Date       *string  `json:"date"`
	CategoryID *uint    `json:"category_id" binding:"omitempty,min=1"`
}

type spendingUpdateReq struct {
	Amount     *float64 `json:"amount" binding:"omitempty,gt=0"`
	Notes      *string  `json:"notes"`
	ItemName   *string  `json:"item_name" binding:"omitempty,max=255"`
	Currency   *string  `json:"currency" binding:"omitempty,currency"`
	Date       *string  `json:"date"`
	CategoryID *uint    `json:"category_id" binding:"omitempty,min=1"`
}

type spendingQuery struct {
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	CategoryID *uint  `form:"category_id" binding:"omitempty,min=1"`
}

// bindFilter reads the date range and category filter. Missing dates
// default to the last seven days ending today.
func (h *SpendingHandler) bindFilter(c *gin.Context) (storage.SpendingFilter, bool) {
	var q spendingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		util.Error(c, util.BindingError(err))
		return storage.SpendingFilter{}, false
	}
	start, err := optionalDate("start_date", q.StartDate)
	if err != nil {
		util.Error(c, err)
		return storage.SpendingFilter{}, false
	}
	end, err := optionalDate("end_date", q.EndDate)
	if err != nil {
		util.Error(c, err)
		return storage.SpendingFilter{}, false
	}

	f, err := storage.NewSpendingFilter(start, end, h.store.Now())
	if err != nil {
		util.Error(c, err)
		return storage.SpendingFilter{}, false
	}
	f.CategoryID = q.CategoryID
	return f, true
}

func (h *SpendingHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	if f.Page, ok = bindPage(c); !ok {
		return
	}
	spending, err := h.store.ListSpending(c.Request.Context(), user.ID, f)
	if err != nil {
		util.Error(c, err)
		return
	}
	util.OK(c, spending, "Transactions retrieved successfully")
}

func (h *SpendingHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req spendingReq
	if !bindJSON(c, &req) {
		return
	}
	cur, err := optionalCurrency("currency", req.Currency)
	if err != nil {
		util.Error(c, err)
		return
	}
	date, err := optionalDateTime("date", req.Date)
	if err != nil {
		util.Error(c, err)
		return
	}

	sp := &models.Spending{
		Amount:     *req.Amount,
		Notes:      req.Notes,
		ItemName:   req.ItemName,
		Currency:   cur,
		Date:       date,
		CategoryID: req.CategoryID,
	}
	if err := h.store.CreateSpending(c.Request.Context(), user.ID, sp); err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntitySpending, sp.ID, user.ID, events.ActionCreated)
	util.OK(c, sp, "Transaction added successfully")
}

// Update changes the given fields of a live spending row owned by the caller.
func (h *SpendingHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req spendingUpdateReq
	if !bindJSON(c, &req) {
		return
	}

	patch := storage.SpendingPatch{
		Amount:     req.Amount,
		Notes:      req.Notes,
		ItemName:   req.ItemName,
		CategoryID: req.CategoryID,
	}
	if req.Currency != nil {
		cur, err := optionalCurrency("currency", req.Currency)
		if err != nil {
			util.Error(c, err)
			return
		}
		if cur != "" {
			patch.Currency = &cur
		}
	}
	if req.Date != nil {
		date, err := optionalDateTime("date", req.Date)
		if err != nil {
			util.Error(c, err)
			return
		}
		if !date.IsZero() {
			patch.Date = &date
		}
	}

	sp, err := h.store.UpdateSpending(c.Request.Context(), user.ID, id, patch)
	if err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntitySpending, sp.ID, user.ID, events.ActionUpdated)
	util.OK(c, sp, "Transaction updated successfully")
}

// Delete soft-deletes a spending row. Repeating it succeeds.
func (h *SpendingHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.SoftDeleteSpending(c.Request.Context(), user.ID, id); err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntitySpending, id, user.ID, events.ActionDeleted)
	util.OK(c, true, "Transaction deleted successfully")
}

// Summary returns income and spending totals for ?month=YYYY-MM, defaulting
// to the current month.
func (h *SpendingHandler) Summary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	month := h.store.Now()
	if s := c.Query("month"); s != "" {
		t, err := time.ParseInLocation(storage.MonthLayout, s, time.UTC)
		if err != nil {
			util.Error(c, util.FieldInvalid("month", "month must be in YYYY-MM format"))
			return
		}
		month = t
	}
	summary, err := h.store.SpendingSummary(c.Request.Context(), user.ID, month)
	if err != nil {
		util.Error(c, err)
		return
	}
	util.OK(c, summary, "Summary retrieved successfully")
}
