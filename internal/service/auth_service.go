package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/mailer"
	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/session"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrEmailNotConfirmed    = errors.New("email not confirmed")
	ErrInvalidCredentials   = errors.New("a valid email and a password of at least 6 characters are required")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrMailUnavailable      = errors.New("the confirmation email could not be sent, request a new one later")
)

const (
	minPasswordLength = 6
	tokenIssuer       = "liftlog"
	confirmAudience   = "email-confirm"
	confirmTTL        = 48 * time.Hour
)

// Claims is the JWT payload of a session token.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// SignUpResult tells the caller whether a session was issued right away.
type SignUpResult struct {
	User                 *domain.User
	Token                string // empty when confirmation is required
	ConfirmationRequired bool
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	SignOut(ctx context.Context, token string) error
	ConfirmEmail(ctx context.Context, confirmationToken string) (token string, user *domain.User, err error)
	// ResendConfirmation mails a new confirmation link to an unconfirmed account.
	ResendConfirmation(ctx context.Context, email string) error
	// Authenticate validates a session token, including revocation.
	Authenticate(ctx context.Context, token string) (*Claims, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	TokenTTL() time.Duration
}

// AuthOptions configures NewAuthService.
type AuthOptions struct {
	JWTSecret                string
	JWTExpiration            time.Duration
	RequireEmailConfirmation bool

	// Mailer delivers confirmation links; required with RequireEmailConfirmation.
	Mailer    mailer.Sender
	PublicURL string // prefix of emailed links
}

// authService implements the AuthService interface.
type authService struct {
	userRepo repository.UserRepository
	sessions session.Store
	broker   *session.Broker
	opts     AuthOptions
	now      func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, sessions session.Store, broker *session.Broker, opts AuthOptions) AuthService {
	if opts.JWTSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if opts.RequireEmailConfirmation && opts.Mailer == nil {
		panic("email confirmation requires a mailer")
	}
	if opts.JWTExpiration <= 0 {
		opts.JWTExpiration = time.Hour
	}
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
		broker:   broker,
		opts:     opts,
		now:      time.Now,
	}
}

func normalizeCredentials(email, password string) (string, string, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if _, err := mail.ParseAddress(email); err != nil || len(password) < minPasswordLength {
		return "", "", ErrInvalidCredentials
	}
	return email, password, nil
}

// SignUp registers a user. Without required confirmation the user is
// signed in right away.
func (s *authService) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	email, password, err := normalizeCredentials(email, password)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Email:          email,
		PasswordHash:   string(hashedPassword),
		EmailConfirmed: !s.opts.RequireEmailConfirmation,
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.PasswordHash = ""

	result := &SignUpResult{User: user}
	if s.opts.RequireEmailConfirmation {
		result.ConfirmationRequired = true
		if err := s.sendConfirmation(ctx, user.ID, user.Email); err != nil {
			return nil, err
		}
		log.WithField("userID", user.ID).Info("user signed up, awaiting email confirmation")
		return result, nil
	}

	result.Token, err = s.issueSession(user.ID)
	if err != nil {
		return nil, err
	}
	log.WithField("userID", user.ID).Info("user signed up")
	return result, nil
}

// SignIn handles user authentication and JWT generation.
func (s *authService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	if !user.EmailConfirmed {
		return "", nil, ErrEmailNotConfirmed
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		return "", nil, err
	}
	user.PasswordHash = ""
	return token, user, nil
}

// ConfirmEmail marks the account confirmed and signs the user in.
func (s *authService) ConfirmEmail(ctx context.Context, confirmationToken string) (string, *domain.User, error) {
	claims, err := s.parse(confirmationToken, confirmAudience)
	if err != nil {
		return "", nil, err
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidToken
		}
		return "", nil, err
	}
	if !user.EmailConfirmed {
		if err := s.userRepo.Confirm(ctx, user.ID); err != nil {
			return "", nil, err
		}
		user.EmailConfirmed = true
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		return "", nil, err
	}
	user.PasswordHash = ""
	return token, user, nil
}

// ResendConfirmation ignores unknown and already confirmed addresses, so the
// outcome reveals nothing about which accounts exist.
func (s *authService) ResendConfirmation(ctx context.Context, email string) error {
	if !s.opts.RequireEmailConfirmation {
		return nil
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.EmailConfirmed {
		return nil
	}
	return s.sendConfirmation(ctx, user.ID, user.Email)
}

// sendConfirmation mails a fresh confirmation link.
func (s *authService) sendConfirmation(ctx context.Context, userID, email string) error {
	token, err := s.sign(userID, confirmAudience, confirmTTL)
	if err != nil {
		return ErrTokenGeneration
	}
	link := strings.TrimSuffix(s.opts.PublicURL, "/") + "/login?confirm=" + url.QueryEscape(token)
	if _, err := s.opts.Mailer.Send(ctx, mailer.Confirmation(email, link)); err != nil {
		log.WithError(err).WithField("userID", userID).Error("sending confirmation email failed")
		return fmt.Errorf("%w: %v", ErrMailUnavailable, err)
	}
	return nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token, "")
	if err != nil {
		// an expired or foreign token grants nothing, so there is nothing to revoke
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl > 0 {
		if err := s.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
			return fmt.Errorf("revoking session: %w", err)
		}
	}
	s.broker.Publish(session.Event{Type: session.SignedOut, UserID: claims.UserID})
	log.WithField("userID", claims.UserID).Info("user signed out")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.parse(token, "")
	if err != nil {
		return nil, err
	}
	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) TokenTTL() time.Duration {
	return s.opts.JWTExpiration
}

func (s *authService) issueSession(userID string) (string, error) {
	token, err := s.sign(userID, "", s.opts.JWTExpiration)
	if err != nil {
		return "", ErrTokenGeneration
	}
	s.broker.Publish(session.Event{Type: session.SignedIn, UserID: userID})
	return token, nil
}

func (s *authService) sign(userID, audience string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
}

// parse validates signature and expiry. An empty audience accepts only
// session tokens, which carry none.
func (s *authService) parse(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil || !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return nil, ErrInvalidToken
	}
	if audience == "" && len(claims.Audience) > 0 {
		return nil, ErrInvalidToken
	}
	if audience != "" && !claims.VerifyAudience(audience, true) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
