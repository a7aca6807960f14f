package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/issuedesk/issuedesk-backend/internal/authz"
	"github.com/issuedesk/issuedesk-backend/internal/users"
)

// UserStore is what the auth handlers need from the user repository.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	GetByID(ctx context.Context, id string) (*users.User, error)
}

type Handler struct {
	store    UserStore
	limiter  Limiter
	cookies  CookiePolicy
	secret   []byte
	tokenTTL time.Duration
}

func NewHandler(store UserStore, limiter Limiter, cookies CookiePolicy, secret []byte, tokenTTL time.Duration) *Handler {
	return &Handler{
		store:    store,
		limiter:  limiter,
		cookies:  cookies,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Register wires the auth routes. Everything except /me is reachable
// without a session; /me sits behind the gate.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
	rg.GET("/me", RequireAuth(h.secret), h.me)
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email, password and name are required"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		// never log the plaintext, only the failure
		log.Printf("register: hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}

	u, err := h.store.Create(c.Request.Context(), req.Email, hash, req.Name)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "email already registered"})
			return
		}
		log.Printf("register: create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}

	if !h.issueSession(c, u) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": u})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email and password are required"})
		return
	}

	ip := c.ClientIP()
	if retryAfter, err := h.limiter.Locked(c.Request.Context(), ip); err == nil && retryAfter > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many failed attempts"})
		return
	}

	u, err := h.store.GetByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil && !errors.Is(err, authz.ErrNotFound) {
		// Infrastructure failure, not a bad credential: no throttle hit.
		log.Printf("login: get user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}

	// Unknown email and wrong password answer identically.
	if err != nil || !CheckPassword(req.Password, u.PasswordHash) {
		if recErr := h.limiter.RecordFailure(c.Request.Context(), ip); recErr != nil {
			log.Printf("login throttle: %v", recErr)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid credentials"})
		return
	}

	if err := h.limiter.Reset(c.Request.Context(), ip); err != nil {
		log.Printf("login throttle: reset: %v", err)
	}

	if !h.issueSession(c, u) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

// logout is idempotent: it clears the cookie whether or not a session
// exists, with no server-side state to tear down.
func (h *Handler) logout(c *gin.Context) {
	h.cookies.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.store.GetByID(c.Request.Context(), UserID(c))
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
			return
		}
		log.Printf("me: get user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

func (h *Handler) issueSession(c *gin.Context, u *users.User) bool {
	token, err := IssueToken(u.ID, u.Email, h.secret, h.tokenTTL)
	if err != nil {
		log.Printf("issue session token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return false
	}
	h.cookies.SetSessionCookie(c, token)
	return true
}
