package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid authentication token")

var signingMethod = jwt.SigningMethodHS256

// Identity is what a verified token tells us about its bearer.
type Identity struct {
	ID   string
	Role string
}

func (id Identity) Caller() core.Caller { return core.Caller{ID: id.ID, Role: id.Role} }

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenService issues and verifies stateless bearer tokens.
type TokenService struct {
	key     []byte
	ttl     time.Duration
	issuer  string
	NowFunc func() time.Time // mockable
}

func NewTokenService(conf *core.Config) *TokenService {
	return &TokenService{
		key:     []byte(conf.SecretKey),
		ttl:     conf.JWTExpirationDelta,
		issuer:  conf.AppName,
		NowFunc: time.Now,
	}
}

// Issue signs a token binding subjectID and role, valid for the configured window.
func (ts *TokenService) Issue(subjectID, role string) (string, error) {
	now := ts.NowFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		Role: role,
	}

	ss, err := jwt.NewWithClaims(signingMethod, claims).SignedString(ts.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify checks the signature & expiry of token and returns its bearer's Identity.
func (ts *TokenService) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return ts.key, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.NowFunc),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Role == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: claims.Subject, Role: claims.Role}, nil
}
