package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"peerlearn.app/server/internal/config"
	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/repository"
	"peerlearn.app/server/internal/session"
	"peerlearn.app/server/pkg/apperror"
)

type CreateAccountInput struct {
	Email    string
	Phone    string
	Password string
	FullName string
}

// CreatedAccount carries the new account plus the verification token that
// would normally only travel by email.
type CreatedAccount struct {
	Account     *model.Account
	VerifyToken string
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	SessionToken string         `json:"-"`
	Account      *model.Account `json:"account"`
}

type AuthService interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (*CreatedAccount, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	VerifyEmail(ctx context.Context, token string) error
	CurrentAccount(ctx context.Context, accountID string) (*model.Account, error)
	GoogleLoginURL() string
	GoogleCallback(ctx context.Context, state, code string) (*AuthResponse, error)
}

type authService struct {
	accounts     repository.AccountRepository
	profiles     repository.ProfileRepository
	sessions     *session.Manager
	search       SearchService
	googleConfig *oauth2.Config
	stateKey     []byte
	verifyTTL    time.Duration
}

func NewAuthService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	sessions *session.Manager,
	search SearchService,
	cfg *config.Config,
) AuthService {
	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &authService{
		accounts:     accounts,
		profiles:     profiles,
		sessions:     sessions,
		search:       search,
		googleConfig: googleConfig,
		stateKey:     []byte(cfg.OAuthStateSecret),
		verifyTTL:    cfg.VerifyTTL,
	}
}

// CreateAccount registers the identity half of a signup. The caller inserts
// the profile afterwards; nothing here assumes that insert will succeed.
func (s *authService) CreateAccount(ctx context.Context, input CreateAccountInput) (*CreatedAccount, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Email:        email,
		Phone:        normalizeOptional(&input.Phone),
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(input.FullName),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	verifyToken := newOpaqueToken()
	if err := s.accounts.CreateEmailToken(ctx, &model.EmailToken{
		AccountID: account.ID,
		Token:     verifyToken,
		Purpose:   "verify",
		ExpiresAt: time.Now().Add(s.verifyTTL),
	}); err != nil {
		return nil, err
	}

	return &CreatedAccount{Account: account, VerifyToken: verifyToken}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	account, err := s.accounts.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(ctx, account)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	et, err := s.accounts.ConsumeEmailToken(ctx, token, "verify")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("verification link is invalid or expired: %w", apperror.ErrBadRequest)
		}
		return err
	}

	accountID := et.AccountID.String()
	if err := s.accounts.MarkVerified(ctx, accountID); err != nil {
		return err
	}

	// the profile may not exist if the signup commit half-failed
	if err := s.profiles.MarkVerified(ctx, accountID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

func (s *authService) CurrentAccount(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	account.PasswordHash = ""
	return account, nil
}

// GoogleLoginURL builds the provider redirect with an HMAC-signed state.
func (s *authService) GoogleLoginURL() string {
	return s.googleConfig.AuthCodeURL(s.makeState(uuid.NewString()), oauth2.AccessTypeOffline)
}

func (s *authService) GoogleCallback(ctx context.Context, state, code string) (*AuthResponse, error) {
	if !s.verifyState(state) {
		return nil, fmt.Errorf("oauth state mismatch: %w", apperror.ErrBadRequest)
	}

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, errors.New("failed to exchange token: " + err.Error())
	}

	client := s.googleConfig.Client(ctx, token)
	userInfoResp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, errors.New("failed to get user info: " + err.Error())
	}
	defer userInfoResp.Body.Close()

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}

	if err := json.NewDecoder(userInfoResp.Body).Decode(&googleUser); err != nil {
		return nil, errors.New("failed to decode user info: " + err.Error())
	}

	if googleUser.Email == "" || googleUser.ID == "" {
		return nil, errors.New("google userinfo is missing email")
	}

	account, err := s.findOrCreateGoogleAccount(ctx, googleUser.ID, googleUser.Email, googleUser.Name, googleUser.Picture)
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(ctx, account)
}

func (s *authService) findOrCreateGoogleAccount(ctx context.Context, googleID, email, name, picture string) (*model.Account, error) {
	email = strings.ToLower(email)

	account, err := s.accounts.FindByGoogleID(ctx, googleID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account, err = s.accounts.FindByEmail(ctx, email)
	if err == nil {
		// existing password account, link the Google identity
		account.GoogleID = &googleID
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, err
		}
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// first visit through Google: provision both halves
	randomPassword := uuid.NewString()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account = &model.Account{
		Email:         email,
		PasswordHash:  string(hashedPassword),
		FullName:      name,
		EmailVerified: true,
		GoogleID:      &googleID,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, errors.New("failed to create account: " + err.Error())
	}

	profile := &model.Profile{
		AccountID: account.ID,
		Email:     email,
		FullName:  name,
		AvatarURL: normalizeOptional(&picture),
		Subjects:  pq.StringArray{},
		Interests: pq.StringArray{},
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, errors.New("failed to create profile: " + err.Error())
	}

	if s.search != nil {
		if err := s.search.IndexProfile(profile); err != nil {
			logIndexFailure(profile.AccountID, err)
		}
	}

	return account, nil
}

func (s *authService) buildAuthResponse(ctx context.Context, account *model.Account) (*AuthResponse, error) {
	token, err := s.sessions.Issue(ctx, account.ID.String(), account.Email)
	if err != nil {
		return nil, err
	}

	_ = s.profiles.TouchLastActive(ctx, account.ID.String())

	account.PasswordHash = ""
	return &AuthResponse{
		SessionToken: token,
		Account:      account,
	}, nil
}

// makeState signs a nonce so the callback can reject forged states.
func (s *authService) makeState(raw string) string {
	mac := hmac.New(sha256.New, s.stateKey)
	mac.Write([]byte(raw))
	return raw + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *authService) verifyState(got string) bool {
	i := strings.LastIndexByte(got, '.')
	if i < 0 {
		return false
	}

	sig, err := base64.RawURLEncoding.DecodeString(got[i+1:])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, s.stateKey)
	mac.Write([]byte(got[:i]))
	return hmac.Equal(mac.Sum(nil), sig)
}

func newOpaqueToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
