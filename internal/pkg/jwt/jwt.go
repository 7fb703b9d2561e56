package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies tokens issued by the identity service and exposes
// the claims the engine cares about. This module never issues tokens.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	ClaimsFromContext(ctx context.Context) (Claims, error)
}

// Claims are the engine-relevant token claims.
type Claims struct {
	CompanyID  string
	EmployeeID string
	Role       string
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// ClaimsFromContext extracts and validates the claims set by the
// jwtauth verifier middleware. company_id is mandatory: every query in
// the engine is tenant-scoped.
func (j *JWTService) ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := raw["company_id"].(string)
	if !ok || companyID == "" {
		return Claims{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	claims := Claims{CompanyID: companyID}
	if employeeID, ok := raw["employee_id"].(string); ok {
		claims.EmployeeID = employeeID
	}
	if role, ok := raw["role"].(string); ok {
		claims.Role = role
	}
	return claims, nil
}
