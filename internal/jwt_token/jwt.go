// Package jwttoken decodes bearer tokens WITHOUT verifying their signature.
//
// This service holds no signing keys. Trust in a token comes only from the
// authorization server's introspection endpoint; DecodeUnverified and
// ValidateLifetime give structural and expiry information and must never be
// treated as verification on their own.
package jwttoken

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"menuapi/pkg/domain"
)

var (
	ErrMalformed   = errors.New("token is malformed")
	ErrExpired     = errors.New("token has expired")
	ErrNotYetValid = errors.New("token is not valid yet")
)

// Token is a structurally decoded JWT.
type Token struct {
	Raw    string
	Claims jwt.MapClaims
}

// DecodeUnverified parses the compact serialization and its payload claims.
// The signature is NOT checked.
func DecodeUnverified(raw string) (*Token, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &Token{Raw: raw, Claims: claims}, nil
}

// ValidateLifetime checks exp and nbf against now, tolerating leeway of clock
// skew. A token without exp passes.
func (t *Token) ValidateLifetime(now time.Time, leeway time.Duration) error {
	v := jwt.NewValidator(
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	err := v.Validate(t.Claims)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// Subject returns the sub claim, empty if absent.
func (t *Token) Subject() string {
	sub, _ := t.Claims.GetSubject()
	return sub
}

// inboundClaimTypes renames registered JWT claims onto principal claim types.
var inboundClaimTypes = map[string]string{
	"sub":         domain.ClaimNameIdentifier,
	"name":        domain.ClaimName,
	"unique_name": domain.ClaimName,
}

// PrincipalClaims flattens the payload into principal claims. Keys are
// emitted in sorted order; arrays produce one claim per element; null values
// are dropped.
func (t *Token) PrincipalClaims() []domain.Claim {
	keys := make([]string, 0, len(t.Claims))
	for k := range t.Claims {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out []domain.Claim
	for _, k := range keys {
		claimType := k
		if mapped, ok := inboundClaimTypes[k]; ok {
			claimType = mapped
		}
		switch v := t.Claims[k].(type) {
		case nil:
		case []any:
			for _, item := range v {
				if s, ok := claimValue(item); ok {
					out = append(out, domain.Claim{Type: claimType, Value: s})
				}
			}
		default:
			if s, ok := claimValue(v); ok {
				out = append(out, domain.Claim{Type: claimType, Value: s})
			}
		}
	}
	return out
}

func claimValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return strconv.FormatInt(int64(val), 10), true
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
