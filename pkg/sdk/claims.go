package sdk

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpirySkew is subtracted from a token's exp claim before comparing with the
// current time, so a token about to expire is not used for a multi-step operation.
const ExpirySkew = 5 * time.Minute

// userIDClaims lists the claim names that have carried the user identifier,
// in lookup order.
var userIDClaims = []string{"sub", "id", "userId"}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Claims is the decoded payload of an access token. It is derived on demand
// from the token and never cached separately.
type Claims jwt.MapClaims

// Decode splits token into its three segments and decodes the payload.
// Any failure yields (nil, false). The signature is never verified.
func Decode(token string) (Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, false
	}

	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var claims map[string]any
	if err := dec.Decode(&claims); err != nil || claims == nil {
		return nil, false
	}
	return Claims(claims), true
}

// UserID returns the first present identifier claim among sub, id and userId.
// Integral numbers and numeric strings are accepted.
func (c Claims) UserID() (int64, bool) {
	for _, name := range userIDClaims {
		raw, ok := c[name]
		if !ok || raw == nil {
			continue
		}
		return parseUserID(raw)
	}
	return 0, false
}

func parseUserID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		if id, err := v.Int64(); err == nil {
			return id, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatID(f)
	case float64:
		return floatID(v)
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

func floatID(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Username returns the username claim.
func (c Claims) Username() (string, bool) {
	return c.stringClaim("username")
}

// Role returns the role claim, if any.
func (c Claims) Role() (string, bool) {
	return c.stringClaim("role")
}

func (c Claims) stringClaim(name string) (string, bool) {
	v, ok := c[name].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// ExpiresAt returns the exp claim as a time.
func (c Claims) ExpiresAt() (time.Time, bool) {
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired reports whether token is unusable at now. Undecodable tokens and
// tokens without an exp claim are treated as expired.
func IsExpired(token string, now time.Time) bool {
	claims, ok := Decode(token)
	if !ok {
		return true
	}
	exp, ok := claims.ExpiresAt()
	if !ok {
		return true
	}
	return !now.Before(exp.Add(-ExpirySkew))
}
