package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetCodeDigits = 6
	DefaultResetTTL = 10 * time.Minute
)

var errInvalidResetCode = apperrors.Validation("otp", "invalid or expired reset code")

// AuthResult is returned by every flow that signs a user in.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService owns credentials, reset codes and session epochs.
type AuthService struct {
	users    repositories.UserRepository
	tokens   *TokenManager
	firebase FirebaseVerifier
	mailer   Mailer
	resetTTL time.Duration
	opts     serviceOptions
}

// NewAuthService builds the service. firebase may be nil, in which case
// FirebaseLogin is rejected.
func NewAuthService(
	users repositories.UserRepository,
	tokens *TokenManager,
	firebase FirebaseVerifier,
	mailer Mailer,
	opts ...Option,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		firebase: firebase,
		mailer:   mailer,
		resetTTL: DefaultResetTTL,
		opts:     applyOptions(opts),
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("email is already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		if _, err := s.users.GetUserByPhone(ctx, p); err == nil {
			return nil, apperrors.Conflict("phone is already registered")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
		phone = &p
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    phone,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, apperrors.Conflict("email or phone is already registered")
		}
		return nil, apperrors.Internal(err)
	}
	return s.signIn(user)
}

// Login accepts an email address or a phone number as identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetUserByEmail(ctx, normalizeEmail(identifier))
	} else {
		user, err = s.users.GetUserByPhone(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.Internal(err)
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	return s.signIn(user)
}

// FirebaseLogin exchanges a Firebase ID token for a local token. Users are
// matched by Firebase UID, then by email, and created when neither matches.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.firebase == nil {
		return nil, apperrors.Unauthorized("firebase login is not enabled")
	}

	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.opts.log.Debug("firebase token rejected", zap.Error(err))
		return nil, apperrors.Unauthorized("invalid firebase id token")
	}

	email, _ := token.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.Validation("idToken", "firebase account has no email")
	}
	name, _ := token.Claims["name"].(string)
	uid := token.UID

	user, err := s.users.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
		if name != "" && name != user.Name {
			user.Name = name
			if err := s.users.UpdateProfile(ctx, user); err != nil {
				return nil, apperrors.Internal(err)
			}
		}
		return s.signIn(user)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperrors.Internal(err)
	}

	user, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.FirebaseUID = &uid
		if err := s.users.UpdateProfile(ctx, user); err != nil {
			return nil, apperrors.Internal(err)
		}
		return s.signIn(user)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperrors.Internal(err)
	}

	user = &models.User{
		Name:        name,
		Email:       email,
		FirebaseUID: &uid,
		Role:        models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, apperrors.Conflict("account is already registered")
		}
		return nil, apperrors.Internal(err)
	}
	return s.signIn(user)
}

// ChangePassword verifies the current password, stores the new one and returns
// a token for the new session epoch. Tokens issued before the change stop
// working.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) (*AuthResult, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthorized("user no longer exists")
		}
		return nil, apperrors.Internal(err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return nil, apperrors.Validation("current_password", "current password is incorrect")
	}

	epoch, err := s.storePassword(ctx, user.ID, next)
	if err != nil {
		return nil, err
	}
	user.SessionEpoch = epoch
	return s.signIn(user)
}

// ForgotPassword mails a one-time reset code. Unknown emails are ignored so
// that the response does not reveal which addresses are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "services/auth/ForgotPassword"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.opts.log.Debug("reset requested for unknown email", zap.String("op", op))
			return nil
		}
		return apperrors.Internal(err)
	}

	code, err := generateResetCode()
	if err != nil {
		return apperrors.Internal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.users.SetResetOTP(ctx, user.ID, string(hash), s.opts.now().Add(s.resetTTL)); err != nil {
		return apperrors.Internal(err)
	}
	if err := s.mailer.SendPasswordResetCode(ctx, user.Email, code, s.resetTTL); err != nil {
		return apperrors.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// ResetPassword consumes a reset code and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, next string) error {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errInvalidResetCode
		}
		return apperrors.Internal(err)
	}

	if user.ResetOTPHash == "" || user.ResetOTPExp == nil || s.opts.now().After(*user.ResetOTPExp) {
		return errInvalidResetCode
	}
	if bcrypt.CompareHashAndPassword([]byte(user.ResetOTPHash), []byte(code)) != nil {
		return errInvalidResetCode
	}

	_, err = s.storePassword(ctx, user.ID, next)
	return err
}

// ValidateSession rejects tokens minted for an older session epoch.
func (s *AuthService) ValidateSession(ctx context.Context, userID uint, epoch int) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.Unauthorized("user no longer exists")
		}
		return apperrors.Internal(err)
	}
	if user.SessionEpoch != epoch {
		return apperrors.Unauthorized("session has expired, please sign in again")
	}
	return nil
}

func (s *AuthService) storePassword(ctx context.Context, userID uint, password string) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	epoch, err := s.users.UpdatePassword(ctx, userID, string(hash))
	if err != nil {
		return 0, notFoundOr(err, "user")
	}
	return epoch, nil
}

func (s *AuthService) signIn(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateResetCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n.Int64()), nil
}
