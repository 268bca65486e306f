package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess = "access"
	TypeReset  = "reset"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs access tokens and password reset tokens with separate
// keys so one can never be replayed as the other.
type TokenManager struct {
	accessSecret []byte
	resetSecret  []byte
	issuer       string
	accessTTL    time.Duration
	resetTTL     time.Duration
}

func NewTokenManager(secret, issuer string, accessTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret: []byte(secret),
		resetSecret:  []byte(secret + ":" + TypeReset),
		issuer:       issuer,
		accessTTL:    accessTTL,
		resetTTL:     resetTTL,
	}
}

type Claims struct {
	UserID      string `json:"uid"`
	Username    string `json:"usr,omitempty"`
	Type        string `json:"typ"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

func (tm *TokenManager) sign(c Claims, ttl time.Duration, secret []byte) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    tm.issuer,
		Subject:   c.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

func (tm *TokenManager) parse(tokenStr, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.Type != typ || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (tm *TokenManager) IssueAccess(userID, username string) (string, time.Time, error) {
	return tm.sign(Claims{UserID: userID, Username: username, Type: TypeAccess}, tm.accessTTL, tm.accessSecret)
}

func (tm *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, TypeAccess, tm.accessSecret)
}

// IssueReset binds the token to the current password hash; once the
// password changes the fingerprint no longer matches and the token is dead.
func (tm *TokenManager) IssueReset(userID, passwordHash string) (string, time.Time, error) {
	return tm.sign(Claims{UserID: userID, Type: TypeReset, Fingerprint: Fingerprint(passwordHash)}, tm.resetTTL, tm.resetSecret)
}

func (tm *TokenManager) ParseReset(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, TypeReset, tm.resetSecret)
}

func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
