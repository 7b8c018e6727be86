// Package session implements the optional session-resume channel
// spec.md §6 allows: a signed token carrying a seat's identity and its
// current-selection Hand, sent to a (re)joining client after the match
// has replayed its seat snapshot (spec.md §5).
//
// This is not general persistence (a Non-goal, spec.md §1) — the token
// is meaningless without a live Match holding the matching seat state;
// it only survives a single reconnect round trip.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"github.com/alexstennet/presidents/internal/card"
)

// ErrExpired/ErrInvalid mirror the teacher's VivoxService failure
// shape: a missing/garbled/expired token is user-correctable, not a
// programmer error (spec.md §7) — the client just re-authenticates.
var (
	ErrExpired = errors.New("session: resume token expired")
	ErrInvalid = errors.New("session: resume token invalid")
)

// Signer signs and verifies resume tokens for one match.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner returns a Signer using secret to sign HS256 tokens valid
// for ttl (a non-positive ttl defaults to 10 minutes).
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Signer{secret: secret, ttl: ttl}
}

// Token is the resumable state for one seat. Handle is an opaque
// per-issuance identifier (internal/transport/nakama mints one per
// reconnect) that has no meaning to Verify beyond round-tripping —
// it lets a client or operator correlate which reconnect produced
// which token without the token itself being guessable from the match
// id and seat alone.
type Token struct {
	MatchID   string
	Seat      int
	Selection [5]int // canonical Hand slots, card ids (0 = empty)
	Handle    string
}

// Sign produces a signed resume token for t.
func (s *Signer) Sign(t Token) (string, error) {
	claims := jwt.MapClaims{
		"match":  t.MatchID,
		"seat":   t.Seat,
		"sel":    t.Selection[:],
		"handle": t.Handle,
		"exp":    time.Now().Add(s.ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses and validates a resume token, returning the seat
// identity and selection it carries.
func (s *Signer) Verify(tokenString string) (Token, error) {
	parsed, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("session: unexpected signing method %v", tok.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return Token{}, ErrExpired
		}
		return Token{}, ErrInvalid
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Token{}, ErrInvalid
	}

	out := Token{}
	if m, ok := claims["match"].(string); ok {
		out.MatchID = m
	}
	if seat, ok := claims["seat"].(float64); ok {
		out.Seat = int(seat)
	}
	if sel, ok := claims["sel"].([]interface{}); ok {
		for i := 0; i < len(sel) && i < 5; i++ {
			if v, ok := sel[i].(float64); ok {
				out.Selection[i] = int(v)
			}
		}
	}
	if handle, ok := claims["handle"].(string); ok {
		out.Handle = handle
	}
	return out, nil
}

// Cards returns t.Selection as card ids, skipping empty slots.
func (t Token) Cards() []card.ID {
	out := make([]card.ID, 0, 5)
	for _, v := range t.Selection {
		if v != 0 {
			out = append(out, card.ID(v))
		}
	}
	return out
}
