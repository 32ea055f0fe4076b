package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validation failures are collapsed into three classes. Callers that surface
// them over HTTP should not distinguish between them externally.
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
)

// Claims carries the subject identity only. Roles and the active flag are
// re-resolved from the store on every request, never trusted from the token.
type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewManager creates a JWT manager. Supported algorithms are HS256 (default),
// HS384 and HS512. The secret is fixed for the process lifetime.
func NewManager(secret, algorithm, issuer string, expiry time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	method, err := signingMethod(algorithm)
	if err != nil {
		return nil, err
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "studenthub"
	}
	return &Manager{
		secret: []byte(trimmed),
		method: method,
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

func signingMethod(algorithm string) (jwt.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "", jwt.SigningMethodHS256.Alg():
		return jwt.SigningMethodHS256, nil
	case jwt.SigningMethodHS384.Alg():
		return jwt.SigningMethodHS384, nil
	case jwt.SigningMethodHS512.Alg():
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm: %s", algorithm)
	}
}

// Issue signs a token asserting the given subject, expiring after the
// configured TTL.
func (m *Manager) Issue(subjectID uint) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if subjectID == 0 {
		return "", time.Time{}, errors.New("invalid subject for token generation")
	}
	now := m.now().UTC()
	expiry := now.Add(m.expiry)

	claims := Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", subjectID),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(m.method, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// Validate checks the signature and expiry and returns the subject id. The
// caller must still confirm the subject exists and is active; a token alone
// never authenticates a deleted or deactivated account.
func (m *Manager) Validate(tokenString string) (uint, error) {
	if m == nil {
		return 0, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return 0, classifyTokenError(err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrTokenMalformed
	}
	if claims.UserID == 0 || claims.ExpiresAt == nil {
		return 0, ErrTokenMalformed
	}
	return claims.UserID, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
