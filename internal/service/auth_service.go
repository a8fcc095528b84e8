package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	minPasswordLength = 8
)

var (
	ErrEncryptionFailed = errors.New("failed to encrypt token")
	ErrDecryptionFailed = errors.New("failed to decrypt token")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(user *domain.User, ttl time.Duration, tokenType string) (string, error)

	GoogleEnabled() bool
	GetGoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (*dto.TokenResponse, error)

	EncryptToken(token string) (string, error)
	DecryptToken(encryptedToken string) (string, error)
}

type authServiceImpl struct {
	userRepo      domain.UserRepository
	oauth2Config  *oauth2.Config
	appConfig     *config.Config
	encryptionKey []byte
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, appConfig *config.Config) (AuthService, error) {
	key := []byte(appConfig.Auth.EncryptionKey)
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, errors.New("auth.encryption_key must be 16, 24 or 32 bytes")
	}

	return &authServiceImpl{
		userRepo: userRepo,
		oauth2Config: &oauth2.Config{
			ClientID:     appConfig.Google.ClientID,
			ClientSecret: appConfig.Google.ClientSecret,
			RedirectURL:  appConfig.Google.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		appConfig:     appConfig,
		encryptionKey: key,
	}, nil
}

// Register creates a password account with the default user role and returns
// a fresh token pair.
func (s *authServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("failed to check existing user", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	user := domain.NewUser(email, string(hash), strings.TrimSpace(req.FullName))
	user.Qualification = strings.TrimSpace(req.Qualification)
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, domain.NewValidationError("date_of_birth must be a YYYY-MM-DD date")
		}
		user.DateOfBirth = &dob
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("failed to create user", err)
	}

	logger.Get().Info("User registered", zap.String("userID", user.ID), zap.String("email", user.Email))
	return s.issueTokenPair(user)
}

// Login verifies a password credential and returns a fresh token pair.
func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, domain.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.NewInvalidCredentialsError()
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return s.issueTokenPair(user)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.ValidateJWT(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, domain.NewInvalidTokenError("not a refresh token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.NewInvalidTokenError("token subject no longer exists")
	}

	logger.Get().Info("JWT token refreshed", zap.String("userID", user.ID))
	return s.issueTokenPair(user)
}

// CreateJWT signs a token carrying the user's identity and role.
func (s *authServiceImpl) CreateJWT(user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.appConfig.Auth.JWTSecret))
}

// ValidateJWT parses and verifies a token, returning its claims.
func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.Auth.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.NewExpiredTokenError()
		}
		return nil, domain.NewInvalidTokenError("invalid token")
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, domain.NewInvalidTokenError("invalid token claims")
}

func (s *authServiceImpl) issueTokenPair(user *domain.User) (*dto.TokenResponse, error) {
	accessToken, err := s.CreateJWT(user, s.appConfig.Auth.AccessTokenTTL, TokenTypeAccess)
	if err != nil {
		return nil, domain.NewInternalError("failed to create access token", err)
	}
	refreshToken, err := s.CreateJWT(user, s.appConfig.Auth.RefreshTokenTTL, TokenTypeRefresh)
	if err != nil {
		return nil, domain.NewInternalError("failed to create refresh token", err)
	}
	return &dto.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// GoogleEnabled reports whether OAuth credentials are configured.
func (s *authServiceImpl) GoogleEnabled() bool {
	return s.appConfig.Google.Enabled()
}

func (s *authServiceImpl) GetGoogleLoginURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// HandleGoogleCallback finishes the OAuth flow: it exchanges the code, loads
// the Google profile, provisions or links the account and returns a token
// pair. Provider tokens are stored encrypted.
func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (*dto.TokenResponse, error) {
	appLogger := logger.Get()
	if receivedState == "" || receivedState != expectedState {
		return nil, domain.NewUnauthorizedError("oauth state mismatch")
	}

	googleToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, domain.NewUnauthorizedError("failed to exchange oauth code")
	}

	client := s.oauth2Config.Client(ctx, googleToken)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, domain.NewServiceUnavailableError("failed to fetch google user info")
	}
	defer resp.Body.Close()

	var userInfo dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, domain.NewInternalError("failed to decode google user info", err)
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		return nil, domain.NewUnauthorizedError("google user info is incomplete")
	}

	encryptedAccessToken, err := s.EncryptToken(googleToken.AccessToken)
	if err != nil {
		return nil, domain.NewInternalError("failed to encrypt access token", err)
	}
	encryptedRefreshToken, err := s.EncryptToken(googleToken.RefreshToken)
	if err != nil {
		return nil, domain.NewInternalError("failed to encrypt refresh token", err)
	}

	user, err := s.userRepo.GetUserByGoogleID(ctx, userInfo.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user by google id", err)
	}
	if user == nil {
		// Link an existing password account with the same email.
		user, err = s.userRepo.GetUserByEmail(ctx, strings.ToLower(userInfo.Email))
		if err != nil {
			return nil, domain.NewInternalError("failed to look up user by email", err)
		}
	}

	if user == nil {
		user = domain.NewGoogleUser(userInfo.ID, strings.ToLower(userInfo.Email), userInfo.Name)
		user.AccessToken = encryptedAccessToken
		user.RefreshToken = encryptedRefreshToken
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return nil, domain.NewInternalError("failed to create user", err)
		}
		appLogger.Info("New user created via Google OAuth", zap.String("userID", user.ID), zap.String("email", user.Email))
	} else {
		user.GoogleID = userInfo.ID
		if user.FullName == "" {
			user.FullName = userInfo.Name
		}
		user.AccessToken = encryptedAccessToken
		if encryptedRefreshToken != "" {
			user.RefreshToken = encryptedRefreshToken
		}
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return nil, domain.NewInternalError("failed to update user", err)
		}
		appLogger.Info("User logged in via Google OAuth", zap.String("userID", user.ID))
	}

	return s.issueTokenPair(user)
}

// EncryptToken encrypts a token using AES-GCM.
func (s *authServiceImpl) EncryptToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptToken decrypts a token using AES-GCM.
func (s *authServiceImpl) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(encryptedToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}
