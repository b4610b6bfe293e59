package jwthandling

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSubject = errors.New("token has no subject")

// Information a token enocodes about an authenticated staff member. Subject is the uid.
type ReporterClaims struct {
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

func (c *ReporterClaims) UID() string {
	return c.Subject
}

// DisplayName returns the name or, if missing, the email.
func (c *ReporterClaims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}

func GenerateNewReporterToken(expiresIn time.Duration, uid string, email string, name string, avatar string, secretKey string) (tokenString string, err error) {
	if uid == "" {
		return "", ErrMissingSubject
	}
	claims := ReporterClaims{
		email,
		name,
		avatar,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   uid,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidateReporterToken(tokenString string, secretKey string) (claims *ReporterClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &ReporterClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*ReporterClaims)
	valid = valid && token.Valid
	if valid && claims.Subject == "" {
		valid = false
		err = ErrMissingSubject
	}
	return
}
