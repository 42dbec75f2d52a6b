package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every token this service signs
const Issuer = "membership-portal"

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims represents the access token claims. Role and Mandalam are a hint for
// clients only; authorization always reloads the role row.
type Claims struct {
	MemberID uint   `json:"member_id"`
	RegNo    string `json:"reg_no"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Mandalam string `json:"mandalam,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims represents the refresh token claims
type RefreshClaims struct {
	MemberID uint   `json:"member_id"`
	TokenID  string `json:"token_id"` // unique per issued refresh token
	jwt.RegisteredClaims
}

// AccessInput carries the identity baked into an access token
type AccessInput struct {
	MemberID uint
	RegNo    string
	Email    string
	Role     string
	Mandalam string
}

// GenerateAccessToken generates a new access token
func GenerateAccessToken(in AccessInput, secret string, expiryMinutes int) (string, error) {
	now := time.Now()
	claims := Claims{
		MemberID: in.MemberID,
		RegNo:    in.RegNo,
		Email:    in.Email,
		Role:     in.Role,
		Mandalam: in.Mandalam,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiryMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
			Subject:   in.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateRefreshToken generates a new refresh token
func GenerateRefreshToken(memberID uint, tokenID, secret string, expiryDays int) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		MemberID: memberID,
		TokenID:  tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiryDays) * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse[C jwt.Claims](tokenString, secret string, claims C) (C, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer))

	var zero C
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return zero, ErrTokenExpired
		}
		return zero, ErrTokenInvalid
	}
	if !token.Valid {
		return zero, ErrTokenInvalid
	}
	return claims, nil
}

// ValidateAccessToken validates an access token and returns claims
func ValidateAccessToken(tokenString, secret string) (*Claims, error) {
	return parse(tokenString, secret, &Claims{})
}

// ValidateRefreshToken validates a refresh token and returns claims
func ValidateRefreshToken(tokenString, secret string) (*RefreshClaims, error) {
	return parse(tokenString, secret, &RefreshClaims{})
}

// GetExpiryTime returns expiry time for refresh token
func GetExpiryTime(days int) time.Time {
	return time.Now().Add(time.Duration(days) * 24 * time.Hour)
}
