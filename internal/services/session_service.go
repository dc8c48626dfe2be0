package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/security"
	"gorm.io/gorm"
)

const (
	DefaultSessionTTL    = 12 * time.Hour
	RememberedSessionTTL = 30 * 24 * time.Hour
)

type SessionRepository interface {
	Create(session *models.Session) error
	FindByID(sessionID string) (models.Session, error)
	DeleteByID(sessionID string) error
	DeleteExpired(now time.Time) (int64, error)
}

type SessionUserRepository interface {
	FindByID(userID uint) (models.User, error)
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	UserID    uint   `json:"uid"`
	jwt.RegisteredClaims
}

type IssuedSession struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// SessionService signs cookie tokens that point at rows of the sessions
// table. A token is only honoured while its row exists.
type SessionService struct {
	sessions  SessionRepository
	users     SessionUserRepository
	secretKey []byte
	now       func() time.Time
}

func NewSessionService(sessions SessionRepository, users SessionUserRepository, secretKey []byte) *SessionService {
	return &SessionService{
		sessions:  sessions,
		users:     users,
		secretKey: secretKey,
		now:       time.Now,
	}
}

func (service *SessionService) Issue(user models.User, rememberMe bool, clientIP string, userAgent string) (IssuedSession, error) {
	now := service.now().UTC()
	if _, err := service.sessions.DeleteExpired(now); err != nil {
		return IssuedSession{}, fmt.Errorf("prune expired sessions: %w", err)
	}

	ttl := DefaultSessionTTL
	if rememberMe {
		ttl = RememberedSessionTTL
	}

	sessionID, err := security.NewSessionID()
	if err != nil {
		return IssuedSession{}, err
	}
	session := models.Session{
		ID:         sessionID,
		UserID:     user.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		LastSeenIP: truncate(clientIP, 64),
		UserAgent:  truncate(userAgent, 255),
	}
	if err := service.sessions.Create(&session); err != nil {
		return IssuedSession{}, err
	}

	claims := sessionClaims{
		SessionID: session.ID,
		UserID:    user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secretKey)
	if err != nil {
		return IssuedSession{}, err
	}
	return IssuedSession{Token: token, SessionID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate resolves a cookie token to the current identity. The user row
// is reloaded, so a user rejected or deleted after login loses access here.
func (service *SessionService) Authenticate(rawToken string) (Identity, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Identity{}, ErrSessionInvalid
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return service.secretKey, nil
	}, jwt.WithTimeFunc(service.now))
	if err != nil || !token.Valid || claims.SessionID == "" || claims.UserID == 0 {
		return Identity{}, ErrSessionInvalid
	}

	session, err := service.sessions.FindByID(claims.SessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, ErrSessionInvalid
	}
	if err != nil {
		return Identity{}, err
	}
	if session.UserID != claims.UserID || session.Expired(service.now().UTC()) {
		return Identity{}, service.dropSession(session.ID)
	}

	user, err := service.users.FindByID(session.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, service.dropSession(session.ID)
	}
	if err != nil {
		return Identity{}, err
	}
	if user.Status != models.UserStatusApproved {
		return Identity{}, service.dropSession(session.ID)
	}
	return identityFromUser(user, session.ID), nil
}

func (service *SessionService) Revoke(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return service.sessions.DeleteByID(sessionID)
}

// dropSession deletes a session that can no longer be honoured and reports
// the request as unauthenticated.
func (service *SessionService) dropSession(sessionID string) error {
	if err := service.sessions.DeleteByID(sessionID); err != nil {
		return err
	}
	return ErrSessionInvalid
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
