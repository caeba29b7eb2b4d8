package handler

import (
	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

type SavingsHandler struct {
	store *storage.Store
	pub   events.Publisher
}

func NewSavingsHandler(store *storage.Store, pub events.Publisher) *SavingsHandler {
	return &SavingsHandler{store: store, pub: pub}
}

type goalReq struct {
	GoalName     string   `json:"goal_name" binding:"required,max=255"`
	TargetAmount *float64 `json:"target_amount" binding:"required,gt=0"`
	Currency     *string  `json:"currency" binding:"omitempty,currency"`
	Deadline     *string  `json:"deadline"`
}

type contributionReq struct {
	Amount   *float64 `json:"amount" binding:"required,gt=0"`
	Currency *string  `json:"currency" binding:"omitempty,currency"`
	Date     *string  `json:"date"`
}

func (h *SavingsHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	goals, err := h.store.ListSavingsGoals(c.Request.Context(), user.ID, page)
	if err != nil {
		util.Error(c, err)
		return
	}
	util.OK(c, goals, "Savings goals retrieved successfully")
}

func (h *SavingsHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req goalReq
	if !bindJSON(c, &req) {
		return
	}
	cur, err := optionalCurrency("currency", req.Currency)
	if err != nil {
		util.Error(c, err)
		return
	}
	deadline, err := optionalDateTime("deadline", req.Deadline)
	if err != nil {
		util.Error(c, err)
		return
	}

	goal := &models.SavingsGoal{
		GoalName:     req.GoalName,
		TargetAmount: *req.TargetAmount,
		Currency:     cur,
	}
	if !deadline.IsZero() {
		goal.Deadline = &deadline
	}
	if err := h.store.CreateSavingsGoal(c.Request.Context(), user.ID, goal); err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntitySavingsGoal, goal.ID, user.ID, events.ActionCreated)
	util.OK(c, goal, "Savings goal created successfully")
}

// Get returns one goal with its contributions and derived progress.
func (h *SavingsHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := idParam(c, "goal_id")
	if !ok {
		return
	}
	progress, err := h.store.GetSavingsGoalProgress(c.Request.Context(), user.ID, goalID)
	if err != nil {
		util.Error(c, err)
		return
	}
	util.OK(c, progress, "Savings goal retrieved successfully")
}

func (h *SavingsHandler) AddContribution(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := idParam(c, "goal_id")
	if !ok {
		return
	}
	var req contributionReq
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

	contribution := &models.SavingsContribution{Amount: *req.Amount, Currency: cur, Date: date}
	if err := h.store.CreateContribution(c.Request.Context(), user.ID, goalID, contribution); err != nil {
		util.Error(c, err)
		return
	}
	notify(c, h.pub, models.EntitySavingsContribution, contribution.ID, user.ID, events.ActionCreated)
	util.OK(c, contribution, "Contribution added successfully")
}
