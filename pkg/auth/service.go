package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = bcrypt.DefaultCost
	// TokenExpiry is how long JWT tokens are valid.
	TokenExpiry = 7 * 24 * time.Hour // 7 days
)

// JWTClaims represents the claims in a JWT token.
type JWTClaims struct {
	AccountID int `json:"account_id"`
	jwt.RegisteredClaims
}

// Service handles authentication operations.
type Service struct {
	db        *bun.DB
	jwtSecret []byte
}

// NewService creates a new auth service.
func NewService(db *bun.DB, jwtSecret string) *Service {
	return &Service{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a registered reader account.
func (s *Service) Register(ctx context.Context, payload RegisterPayload) (*models.Account, error) {
	email := strings.ToLower(payload.Email)

	exists, err := s.db.NewSelect().
		Model((*models.Account)(nil)).
		Where("email = ? COLLATE NOCASE", email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.ValidationError("An account with this email already exists.")
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &models.Account{
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        email,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		PasswordHash: hash,
		Role:         models.RoleRegisteredReader,
	}
	_, err = s.db.NewInsert().Model(account).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return account, nil
}

// Authenticate validates credentials and returns the account if valid.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.NewSelect().
		Model(account).
		Where("a.email = ? COLLATE NOCASE", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.Unauthorized("Invalid email or password.")
		}
		return nil, errors.WithStack(err)
	}

	if !CheckPassword(password, account.PasswordHash) {
		return nil, errcodes.Unauthorized("Invalid email or password.")
	}

	return account, nil
}

// GenerateToken creates a new JWT token for the account.
func (s *Service) GenerateToken(account *models.Account) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		AccountID: account.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// GetAccountByID retrieves an account by ID.
func (s *Service) GetAccountByID(ctx context.Context, id int) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.NewSelect().
		Model(account).
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return account, nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
