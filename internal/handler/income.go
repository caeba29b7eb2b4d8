package handler

import (
	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

type IncomeHandler struct {
	store *storage.Store
	pub   events.Publisher
}

func NewIncomeHandler(store *storage.Store, pub events.Publisher) *IncomeHandler {
	return &IncomeHandler{store: store, pub: pub}
}

type incomeReq struct {
	Amount   *float64 `json:"amount" binding:"required,gt=0"`
	Source   string   `json:"source" binding:"required,max=255"`
	Type     *string  `json:"type" binding:"omitempty,max=64"`
	Currency *string  `json:"currency" binding:"omitempty,currency"`
	Date     *string  `json:"date"`
}

func (h *IncomeHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	income, err := h.store.ListIncome(c.Request.Context(), user.ID, page)
	if err != nil {
		util.Error(c, err)
		return
	}
	util.OK(c, income, "Incomes retrieved successfully")
}

func (h *IncomeHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req incomeReq
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

	in := &models.Income{
		Amount:   *req.Amount,
		Source:   req.Source,
		Type:     req.Type,
		Currency: cur,
		Date:     date,
	}
	if err := h.store.CreateIncome(c.Request.Context(), user.ID, in); err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntityIncome, in.ID, user.ID, events.ActionCreated)
	util.OK(c, in, "Income added successfully")
}
