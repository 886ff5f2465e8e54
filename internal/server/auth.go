package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned when a caller cannot be tied to a player.
var ErrUnauthenticated = errors.New("unauthenticated")

const tokenIssuer = "landlord-server"

// SeatClaims binds a bearer token to one player seat in one game.
type SeatClaims struct {
	GameID string `json:"game_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies seat tokens. A nil issuer disables
// authentication and trusts the player id supplied by the client.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns nil when secret is empty.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if secret == "" {
		return nil
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for playerID seated in gameID.
func (t *TokenIssuer) Issue(gameID, playerID string) (string, error) {
	if t == nil {
		return "", nil
	}
	now := t.now()
	claims := SeatClaims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims.
func (t *TokenIssuer) Verify(token string) (*SeatClaims, error) {
	var claims SeatClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return &claims, nil
}

// Resolve returns the player acting in gameID. With authentication enabled
// the token decides and claimed is ignored.
func (t *TokenIssuer) Resolve(token, gameID, claimed string) (string, error) {
	if t == nil {
		if claimed == "" {
			return "", fmt.Errorf("%w: player id is required", ErrUnauthenticated)
		}
		return claimed, nil
	}
	if token == "" {
		return "", fmt.Errorf("%w: token is required", ErrUnauthenticated)
	}
	claims, err := t.Verify(token)
	if err != nil {
		return "", err
	}
	if claims.GameID != gameID {
		return "", fmt.Errorf("%w: token is for another game", ErrUnauthenticated)
	}
	return claims.Subject, nil
}

// bearerToken strips the Bearer scheme from an Authorization value.
func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
