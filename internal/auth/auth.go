package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cvforge/gateway/internal/plans"
)

// Identity is the authenticated caller as the guards see it. Requests with
// no identity are anonymous and bypass both guards; anonymous traffic is
// governed upstream.
type Identity struct {
	UserID string
	Plan   plans.Tier
}

// Validator checks session tokens issued elsewhere. This package never
// issues tokens.
type Validator struct {
	secret []byte
}

func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

// Validate parses an HS256 token and extracts the identity claims.
func (v *Validator) Validate(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, errors.New("token missing user_id claim")
	}

	plan, _ := claims["plan"].(string)
	if plan == "" {
		plan = string(plans.TierFree)
	}

	return &Identity{
		UserID: userID,
		Plan:   plans.Tier(plan),
	}, nil
}
