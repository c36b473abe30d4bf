package attempt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/gema-tutor-api/internal/quiz"
)

const tokenIssuer = "gema-tutor/attempt"

type attemptClaims struct {
	AssignmentID uint           `json:"aid"`
	Fingerprint  string         `json:"fp"`
	Variables    quiz.Variables `json:"vars"`
	jwt.RegisteredClaims
}

// TokenStore keeps nothing server-side: the attempt travels to the client as
// an HMAC-signed token and comes back with the submission.
type TokenStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenStore builds a stateless store signing attempts with secret.
func NewTokenStore(secret string, ttl time.Duration) (*TokenStore, error) {
	if secret == "" {
		return nil, errors.New("attempt token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = defaultAttemptTTL
	}
	return &TokenStore{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *TokenStore) Save(_ context.Context, attempt Attempt) (string, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	issued := attempt.IssuedAt
	if issued.IsZero() {
		issued = s.now()
	}

	claims := attemptClaims{
		AssignmentID: attempt.AssignmentID,
		Fingerprint:  attempt.Fingerprint,
		Variables:    attempt.Variables,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        attempt.ID,
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(attempt.StudentID), 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign attempt: %w", err)
	}
	return signed, nil
}

func (s *TokenStore) Load(_ context.Context, handle string) (Attempt, error) {
	var claims attemptClaims
	token, err := jwt.ParseWithClaims(handle, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Attempt{}, ErrNotFound
	}

	studentID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return Attempt{}, ErrNotFound
	}

	attempt := Attempt{
		ID:           claims.ID,
		AssignmentID: claims.AssignmentID,
		StudentID:    uint(studentID),
		Fingerprint:  claims.Fingerprint,
		Variables:    claims.Variables,
	}
	if claims.IssuedAt != nil {
		attempt.IssuedAt = claims.IssuedAt.Time
	}
	if attempt.Variables == nil {
		attempt.Variables = quiz.Variables{}
	}
	return attempt, nil
}

// Discard is a no-op; the unique submission constraint prevents replay.
func (s *TokenStore) Discard(context.Context, string) error {
	return nil
}
