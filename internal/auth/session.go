package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/pkg/dto"
)

const (
	CookieName = "session_id"

	ctxSession = "auth.session"
	ctxToken   = "auth.token"
)

// SessionStore persists logins.
type SessionStore interface {
	CreateSession(ctx context.Context, sess *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// Authenticator exchanges credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type Service struct {
	store SessionStore
	authn Authenticator
	ttl   time.Duration
	now   func() time.Time
}

func NewService(store SessionStore, authn Authenticator, ttl time.Duration) *Service {
	return &Service{store: store, authn: authn, ttl: ttl, now: time.Now}
}

// Login authenticates against the backend and persists the session.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest, ip string) (*models.Session, error) {
	resp, err := s.authn.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:        uuid.New(),
		Token:     resp.BearerToken(),
		IP:        ip,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if resp.User != nil {
		sess.User = *resp.User
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteSession(ctx, id)
}

// Resolve loads a live session by its cookie value.
func (s *Service) Resolve(ctx context.Context, raw string) (*models.Session, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, models.ErrNotFound
	}
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, models.ErrNotFound
	}
	return sess, nil
}

func (s *Service) TTL() time.Duration { return s.ttl }

// SessionMiddleware requires a session cookie, or with allowBearer an
// "Authorization: Bearer" header carrying a backend token directly.
func SessionMiddleware(svc *Service, allowBearer bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
			sess, err := svc.Resolve(c.Request.Context(), raw)
			switch {
			case err == nil:
				c.Set(ctxSession, sess)
				c.Set(ctxToken, sess.Token)
				c.Next()
				return
			case !errors.Is(err, models.ErrNotFound):
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
				return
			}
		}

		if allowBearer {
			if token := BearerToken(c.GetHeader("Authorization")); token != "" {
				c.Set(ctxToken, token)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionFrom returns the session resolved by SessionMiddleware, if any.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok
}

// TokenFrom returns the backend token of the request.
func TokenFrom(c *gin.Context) string {
	return c.GetString(ctxToken)
}

func SetSessionCookie(c *gin.Context, sess *models.Session, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sess.ID.String(), int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
