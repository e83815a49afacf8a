package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Roles carried in the roles claim
const (
	RoleCandidate = "candidate"
	RoleCompany   = "company"
	RoleAdmin     = "admin"
)

// Claims are the JWT claims issued by the identity service
type Claims struct {
	Roles     []string `json:"roles"`
	CompanyID string   `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller. CompanyID is the company a
// company-role caller reviews for.
type Principal struct {
	UserID    uuid.UUID
	Roles     []string
	CompanyID uuid.UUID
}

// HasRole reports whether the principal carries role
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// Service validates and, for tooling and tests, issues tokens
type Service struct {
	secret   []byte
	issuer   string
	audience string
}

// NewService creates a new authentication service
func NewService(cfg *config.JWTConfig) *Service {
	return &Service{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// ValidateToken validates a JWT token and returns the caller
func (s *Service) ValidateToken(tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	principal := &Principal{UserID: userID, Roles: claims.Roles}
	switch {
	case claims.CompanyID != "":
		companyID, err := uuid.Parse(claims.CompanyID)
		if err != nil || companyID == uuid.Nil {
			return nil, fmt.Errorf("%w: company_id is not a company id", ErrInvalidToken)
		}
		principal.CompanyID = companyID
	case principal.HasRole(RoleCompany):
		// Company accounts without the claim are the company itself
		principal.CompanyID = userID
	}

	return principal, nil
}

// GenerateToken signs a token for userID with the given roles
func (s *Service) GenerateToken(userID uuid.UUID, roles []string, expiration time.Duration) (string, error) {
	return s.GenerateCompanyToken(userID, uuid.Nil, roles, expiration)
}

// GenerateCompanyToken is GenerateToken with a company_id claim when companyID is set
func (s *Service) GenerateCompanyToken(userID, companyID uuid.UUID, roles []string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if s.issuer != "" {
		claims.Issuer = s.issuer
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}
	if companyID != uuid.Nil {
		claims.CompanyID = companyID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
