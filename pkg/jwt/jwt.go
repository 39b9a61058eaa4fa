package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired la firma es válida pero el token venció.
	ErrExpired = errors.New("jwt: token expirado")
	// ErrInvalid firma incorrecta, formato corrupto o claims incompletos.
	ErrInvalid = errors.New("jwt: token inválido")
)

// AccessClaims claims de la credencial de acceso. Role viaja en el token para que el
// middleware RBAC pueda decidir sin consultar la DB.
type AccessClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
	Role     string `json:"role"`
}

// RefreshClaims claims de la credencial de refresco; no lleva rol, se vuelve a resolver al canjear.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
}

// Issued token firmado con su identificador único y su vencimiento.
type Issued struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

func registered(issuer, subject string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(secret string, claims jwt.Claims) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GenerateAccess firma una credencial de acceso con tenantId, userId y role.
func GenerateAccess(secret, issuer string, ttl time.Duration, tenantID, userID, role string) (Issued, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: registered(issuer, userID, ttl, now),
		TenantID:         tenantID,
		UserID:           userID,
		Role:             role,
	}
	tok, err := sign(secret, claims)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: tok, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// GenerateRefresh firma una credencial de refresco con userId y tenantId.
func GenerateRefresh(secret, issuer string, ttl time.Duration, tenantID, userID string) (Issued, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: registered(issuer, userID, ttl, now),
		UserID:           userID,
		TenantID:         tenantID,
	}
	tok, err := sign(secret, claims)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: tok, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ParseAccess valida firma y vigencia. Devuelve ErrExpired o ErrInvalid según el caso.
func ParseAccess(secret, tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(secret, tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TenantID == "" || claims.UserID == "" || claims.Role == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

// ParseAccessIgnoringExpiry valida solo la firma; sirve para cerrar sesión con un acceso vencido.
func ParseAccessIgnoringExpiry(secret, tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(secret, tokenString, claims, jwt.WithoutClaimsValidation()); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh valida firma y vigencia de una credencial de refresco.
func ParseRefresh(secret, tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(secret, tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TenantID == "" || claims.UserID == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

func parse(secret, tokenString string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	if secret == "" {
		return fmt.Errorf("jwt: secret vacío")
	}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !token.Valid {
		return ErrInvalid
	}
	return nil
}
