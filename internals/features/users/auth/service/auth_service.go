package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	googleVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	dto "kampusku_backend/internals/features/users/auth/dto"
	model "kampusku_backend/internals/features/users/auth/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidGoogleToken = errors.New("google token rejected")
	ErrInvalidRefresh     = errors.New("refresh token rejected")
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type AuthService struct {
	DB *gorm.DB

	JWTSecret        string
	JWTRefreshSecret string
	GoogleClientID   string
}

func NewAuthService(db *gorm.DB, jwtSecret, refreshSecret, googleClientID string) *AuthService {
	return &AuthService{
		DB:               db,
		JWTSecret:        jwtSecret,
		JWTRefreshSecret: refreshSecret,
		GoogleClientID:   googleClientID,
	}
}

/* =========================
   Registration & login
   ========================= */

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var taken int64
	if err := s.DB.WithContext(ctx).Model(&model.User{}).
		Where("user_email = ?", email).
		Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashed := string(hash)

	u := model.User{
		UserName:     strings.TrimSpace(req.Name),
		UserEmail:    email,
		UserPassword: &hashed,
		UserRole:     model.RoleStudent,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*model.User, dto.TokenPairResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var u model.User
	if err := s.DB.WithContext(ctx).
		First(&u, "user_email = ? AND user_deleted_at IS NULL", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dto.TokenPairResponse{}, ErrInvalidCredentials
		}
		return nil, dto.TokenPairResponse{}, err
	}
	if u.UserPassword == nil {
		return nil, dto.TokenPairResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.UserPassword), []byte(req.Password)); err != nil {
		return nil, dto.TokenPairResponse{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(&u)
	if err != nil {
		return nil, dto.TokenPairResponse{}, err
	}
	return &u, pair, nil
}

// GoogleLogin verifies the Google ID token against our client id and
// signs the matching user in, creating the account on first contact.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*model.User, dto.TokenPairResponse, error) {
	v := googleVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{s.GoogleClientID}); err != nil {
		return nil, dto.TokenPairResponse{}, ErrInvalidGoogleToken
	}
	claims, err := googleVerifier.Decode(idToken)
	if err != nil || claims.Email == "" {
		return nil, dto.TokenPairResponse{}, ErrInvalidGoogleToken
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	googleID := claims.Sub

	var u model.User
	err = s.DB.WithContext(ctx).
		First(&u, "(user_google_id = ? OR user_email = ?) AND user_deleted_at IS NULL", googleID, email).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = model.User{
			UserName:     strings.TrimSpace(claims.Name),
			UserEmail:    email,
			UserGoogleID: &googleID,
			UserRole:     model.RoleStudent,
		}
		if u.UserName == "" {
			u.UserName = email
		}
		if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, dto.TokenPairResponse{}, err
		}
	case err != nil:
		return nil, dto.TokenPairResponse{}, err
	default:
		if u.UserGoogleID == nil {
			u.UserGoogleID = &googleID
			if err := s.DB.WithContext(ctx).Save(&u).Error; err != nil {
				return nil, dto.TokenPairResponse{}, err
			}
		}
	}

	pair, err := s.issueTokens(&u)
	if err != nil {
		return nil, dto.TokenPairResponse{}, err
	}
	return &u, pair, nil
}

/* =========================
   Refresh & revocation
   ========================= */

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (dto.TokenPairResponse, error) {
	tok, err := jwt.Parse(refreshToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidRefresh
		}
		return []byte(s.JWTRefreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return dto.TokenPairResponse{}, ErrInvalidRefresh
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != "refresh" {
		return dto.TokenPairResponse{}, ErrInvalidRefresh
	}
	userID, _ := claims["id"].(string)
	if userID == "" {
		return dto.TokenPairResponse{}, ErrInvalidRefresh
	}

	if black, err := s.IsBlacklisted(ctx, refreshToken); err == nil && black {
		return dto.TokenPairResponse{}, ErrInvalidRefresh
	}

	var u model.User
	if err := s.DB.WithContext(ctx).
		First(&u, "user_id = ? AND user_deleted_at IS NULL", userID).Error; err != nil {
		return dto.TokenPairResponse{}, ErrInvalidRefresh
	}
	return s.issueTokens(&u)
}

// Logout blacklists the raw token until its own expiry.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	exp := time.Now().Add(accessTokenTTL)
	if claims := unsafeClaims(rawToken); claims != nil {
		if v, ok := claims["exp"].(float64); ok {
			exp = time.Unix(int64(v), 0)
		}
	}

	row := model.TokenBlacklist{
		BlacklistToken:     rawToken,
		BlacklistExpiresAt: exp,
	}
	err := s.DB.WithContext(ctx).Create(&row).Error
	if err != nil && strings.Contains(err.Error(), "23505") {
		return nil // already revoked
	}
	return err
}

func (s *AuthService) IsBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.TokenBlacklist{}).
		Where("blacklist_token = ? AND blacklist_expires_at > NOW()", rawToken).
		Count(&n).Error
	return n > 0, err
}

/* =========================
   Token minting
   ========================= */

func (s *AuthService) issueTokens(u *model.User) (dto.TokenPairResponse, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"id":   u.UserID.String(),
		"role": u.UserRole,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}
	if u.UserStudentID != nil {
		accessClaims["student_id"] = u.UserStudentID.String()
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.JWTSecret))
	if err != nil {
		return dto.TokenPairResponse{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshClaims := jwt.MapClaims{
		"id":  u.UserID.String(),
		"typ": "refresh",
		"iat": now.Unix(),
		"exp": now.Add(refreshTokenTTL).Unix(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.JWTRefreshSecret))
	if err != nil {
		return dto.TokenPairResponse{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

// unsafeClaims decodes without verifying. Only used to read exp for
// blacklist retention, never for auth decisions.
func unsafeClaims(raw string) jwt.MapClaims {
	parser := jwt.NewParser()
	tok, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	return claims
}
