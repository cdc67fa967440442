// Package session holds the signed-in identity: Google sign-in, ID-token
// decoding and persistence of the result.
package session

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
)

// Claims are the ID-token claims the client reads.
type Claims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	GivenName string `json:"given_name"`
	Picture   string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// DecodeIDToken extracts the identity from a Google ID token. The signature is
// not checked; the token is only trusted as far as the identity provider that
// handed it over.
func DecodeIDToken(raw string) (model.Identity, *Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Identity{}, nil, fmt.Errorf("%w: empty token", common.ErrInvalidToken)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return model.Identity{}, nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return model.Identity{}, nil, fmt.Errorf("%w: token has no email claim", common.ErrInvalidToken)
	}

	return model.Identity{
		Email: claims.Email,
		Name:  model.DisplayName(claims.GivenName, claims.Name, claims.Email),
	}, claims, nil
}
