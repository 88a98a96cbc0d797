package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/georgemunganga/catalog-service/internal/modules/audit"
	"github.com/georgemunganga/catalog-service/internal/modules/user"
)

// ErrInvalidToken is returned for malformed, forged, expired or logged-out tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

type service struct {
	users    user.Repository
	audits   audit.Service
	cfg      Config
	sessions *expirable.LRU[string, *Session]
	now      func() time.Time
}

// NewService creates a new auth service. Sessions live for cfg.TokenTTL and at
// most cfg.MaxSessions are kept; the oldest is dropped when the limit is hit.
func NewService(users user.Repository, audits audit.Service, cfg Config) Service {
	return &service{
		users:    users,
		audits:   audits,
		cfg:      cfg,
		sessions: expirable.NewLRU[string, *Session](cfg.MaxSessions, nil, cfg.TokenTTL),
		now:      time.Now,
	}
}

func (s *service) Login(ctx context.Context, login, password string) (string, *user.User, error) {
	sess := NewSession(s.users, s.audits)
	u, err := sess.Login(ctx, login, password)
	if err != nil {
		return "", nil, err
	}

	id := uuid.New().String()
	now := s.now()
	claims := &jwt.StandardClaims{
		Id:        id,
		Subject:   u.Login,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.cfg.TokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	s.sessions.Add(id, sess)
	return token, u, nil
}

func (s *service) Resolve(token string) (*Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	sess, ok := s.sessions.Get(claims.Id)
	if !ok {
		return nil, ErrInvalidToken
	}
	if _, ok := sess.CurrentUser(); !ok {
		return nil, ErrInvalidToken
	}
	return sess, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	sess, ok := s.sessions.Peek(claims.Id)
	if !ok {
		return nil
	}
	s.sessions.Remove(claims.Id)
	return sess.Logout(ctx)
}

func (s *service) parse(token string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid || claims.Id == "" {
		return nil, ErrInvalidToken
	}
	if s.cfg.Issuer != "" && !claims.VerifyIssuer(s.cfg.Issuer, true) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
