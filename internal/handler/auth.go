package handler

import (
	"errors"
	"net/http"

	"fintrack/internal/apperr"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/models"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// MsgIncorrectCredentials is returned for an unknown email or a wrong password.
const MsgIncorrectCredentials = "Incorrect email or password"

// AuthHandler serves registration, login and plain user creation.
type AuthHandler struct {
	store  *storage.Store
	hasher *util.PasswordHasher
	tokens *util.TokenService
	pub    events.Publisher
}

func NewAuthHandler(store *storage.Store, hasher *util.PasswordHasher, tokens *util.TokenService, pub events.Publisher) *AuthHandler {
	return &AuthHandler{store: store, hasher: hasher, tokens: tokens, pub: pub}
}

type registerReq struct {
	Email           string  `json:"email" binding:"required,email,max=255"`
	FirstName       string  `json:"first_name" binding:"required,max=100"`
	LastName        string  `json:"last_name" binding:"required,max=100"`
	DefaultCurrency *string `json:"default_currency" binding:"omitempty,currency"`
	Password        string  `json:"password" binding:"required"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authData is the payload of register and login responses.
type authData struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

// passwordError maps a length check failure to a 422 on field.
func passwordError(field string, err error) error {
	if errors.Is(err, util.ErrPasswordEmpty) || errors.Is(err, util.ErrPasswordTooLong) {
		return util.FieldInvalid(field, err.Error())
	}
	return apperr.Internal("hash password", err)
}

// createUser validates req, hashes the password and stores the user.
func (h *AuthHandler) createUser(c *gin.Context) (*models.User, bool) {
	var req registerReq
	if !bindJSON(c, &req) {
		return nil, false
	}
	cur, err := optionalCurrency("default_currency", req.DefaultCurrency)
	if err != nil {
		util.Error(c, err)
		return nil, false
	}
	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		util.Error(c, passwordError("password", err))
		return nil, false
	}

	user := &models.User{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DefaultCurrency: cur,
		Password:        hash,
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		util.Error(c, err)
		return nil, false
	}
	notify(c, h.pub, models.EntityUser, user.ID, user.ID, events.ActionCreated)
	return user, true
}

func (h *AuthHandler) issue(c *gin.Context, user *models.User) (*authData, bool) {
	token, err := h.tokens.Issue(user.Email)
	if err != nil {
		util.Error(c, apperr.Internal("issue token", err))
		return nil, false
	}
	return &authData{User: user, AccessToken: token, TokenType: "bearer"}, true
}

// Register creates a user and returns it with an access token.
func (h *AuthHandler) Register(c *gin.Context) {
	user, ok := h.createUser(c)
	if !ok {
		return
	}
	data, ok := h.issue(c, user)
	if !ok {
		return
	}
	applog.FromContext(c.Request.Context()).WithComponent(applog.ComponentAuth).
		InfoContext(c.Request.Context(), "user registered", applog.FieldUserID, user.ID)
	util.Success(c, http.StatusCreated, data, "User registered successfully")
}

// Login verifies credentials and returns a fresh access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			util.Error(c, apperr.Authentication(MsgIncorrectCredentials))
			return
		}
		util.Error(c, err)
		return
	}
	if !h.hasher.Verify(req.Password, user.Password) {
		util.Error(c, apperr.Authentication(MsgIncorrectCredentials))
		return
	}

	data, ok := h.issue(c, user)
	if !ok {
		return
	}
	util.OK(c, data, "User logged in successfully")
}

// CreateUser creates a user without issuing a token.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	user, ok := h.createUser(c)
	if !ok {
		return
	}
	util.OK(c, user, "User created successfully")
}
