package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

const tokenTTL = 24 * time.Hour

// TokenClaims holds the identity carried by a bearer token.
type TokenClaims struct {
	UserID uint
}

// AuthService issues and validates tokens and handles registration. The
// redis client backs the logout denylist and may be nil.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
	}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register validates the input, stores the user with a hashed password and
// returns the created record.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	ve := &ValidationError{}

	if _, err := mail.ParseAddress(in.Email); err != nil {
		ve.Add("email", "must be a valid email address")
	}
	username, err := validateUsername(in.Username)
	if err != nil {
		ve.Add("username", err.Error())
	}
	if strings.TrimSpace(in.FirstName) == "" {
		ve.Add("first_name", "must not be empty")
	}
	if strings.TrimSpace(in.LastName) == "" {
		ve.Add("last_name", "must not be empty")
	}
	if len(in.Password) < 8 {
		ve.Add("password", "must be at least 8 characters")
	}
	if !ve.Empty() {
		return nil, ve
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewValidationError("email", "user with this email already exists")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewValidationError("username", "user with this username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        in.Email,
		Username:     username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.generateToken(user.ID)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, denylistKey(token), "1", tokenTTL).Err()
}

// SetPassword changes a user's password after verifying the current one.
func (s *AuthService) SetPassword(ctx context.Context, userID uint, current, newPassword string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return NewValidationError("current_password", "wrong password")
	}
	if len(newPassword) < 8 {
		return NewValidationError("new_password", "must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hashed)).Error
}

func (s *AuthService) generateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": float64(userID),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses a bearer token, rejecting revoked ones.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	if s.redis != nil {
		revoked, err := s.redis.Exists(ctx, denylistKey(tokenString)).Result()
		if err == nil && revoked > 0 {
			return nil, errors.New("token has been revoked")
		}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return nil, errors.New("invalid token claims")
	}
	return &TokenClaims{UserID: uint(userID)}, nil
}

func denylistKey(token string) string {
	return "auth:denylist:" + token
}

// validateUsername enforces the alphabetic, length >= 3 rule and returns the
// capitalized form used for storage.
func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len([]rune(username)) < 3 {
		return "", fmt.Errorf("must be at least 3 letters")
	}
	for _, r := range username {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("allows only letters")
		}
	}
	runes := []rune(strings.ToLower(username))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes), nil
}
