package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type assertionClaims struct {
	jwt.RegisteredClaims
	UID   string   `json:"uid"`
	Roles []string `json:"roles"`
	Role  string   `json:"role"`
}

func (m *Middleware) validateAssertion(raw string) (User, error) {
	if m.assertKey == nil && len(m.assertHMAC) == 0 {
		return User{}, errors.New("assertion key not configured")
	}

	var methods []string
	if m.assertKey != nil {
		methods = append(methods, "RS256")
	}
	if len(m.assertHMAC) > 0 {
		methods = append(methods, "HS256")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods(methods),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.assertLeeway),
	)

	var claims assertionClaims
	tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
			return m.assertHMAC, nil
		}
		return m.assertKey, nil
	})
	if err != nil || !tok.Valid {
		return User{}, errors.New("invalid assertion")
	}

	if m.assertIssuer != "" && claims.Issuer != m.assertIssuer {
		return User{}, errors.New("bad issuer")
	}

	if m.assertAudience != "" {
		found := false
		for _, a := range claims.Audience {
			if a == m.assertAudience {
				found = true
				break
			}
		}
		if !found {
			return User{}, errors.New("bad audience")
		}
	}

	username := firstNonEmpty(claims.UID, claims.Subject)
	if username == "" {
		return User{}, errors.New("missing uid")
	}

	return User{
		Username:             username,
		AuthenticationSource: AuthenticationSource{Provider: "assert"},
		Role:                 Role{Name: firstNonEmpty(append([]string{claims.Role}, claims.Roles...)...)},
	}, nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
