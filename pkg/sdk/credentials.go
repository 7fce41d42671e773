package sdk

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenPair is the access/refresh token pair issued by the server on
// verify-email, login, refresh and OAuth callback.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are present.
func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// OAuth2Token converts the pair into an oauth2.Token. The expiry is taken
// from the access token's exp claim when it can be decoded.
func (p TokenPair) OAuth2Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  p.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: p.RefreshToken,
	}
	if claims, ok := Decode(p.AccessToken); ok {
		if exp, ok := claims.ExpiresAt(); ok {
			token.Expiry = exp
		}
	}
	return token
}

// IsExpired reports whether the access token is unusable at now, applying ExpirySkew.
func (p TokenPair) IsExpired(now time.Time) bool {
	return IsExpired(p.AccessToken, now)
}
