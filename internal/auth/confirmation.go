// Package auth holds the signup confirmation-code scheme.
//
// A code is "<timestamp base36>-<mac>", where mac is a truncated HMAC-SHA256
// over the user's identity, email, last login and the timestamp. Nothing is
// stored: a code verifies only while the user's state is unchanged, the
// timestamp is inside the validity window and the key matches the current or
// a fallback secret. Stamping last_login on a successful exchange therefore
// burns the code.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

const (
	keySalt = "yamdb.auth.confirmation-code"
	macLen  = 20
)

// CodeState is the part of a user that a confirmation code is bound to.
type CodeState struct {
	UserID    string
	Email     string
	LastLogin *time.Time
}

// DeriveKey turns a configured secret into the HMAC key for confirmation codes.
func DeriveKey(secret string) []byte {
	r := hkdf.New(sha256.New, []byte(secret), []byte(keySalt), nil)
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255*hash-size bytes
		panic(fmt.Sprintf("hkdf: %v", err))
	}
	return key
}

// MakeCode returns the code for state at instant ts under key.
func MakeCode(state CodeState, key []byte, ts time.Time) string {
	unix := ts.Unix()
	return strconv.FormatInt(unix, 36) + "-" + mac(state, key, unix)
}

// CheckCode reports whether code was made for state under one of keys and is
// no older than ttl at now.
func CheckCode(state CodeState, code string, keys [][]byte, now time.Time, ttl time.Duration) bool {
	tsPart, sig, ok := strings.Cut(code, "-")
	if !ok || len(sig) != macLen {
		return false
	}
	unix, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	age := now.Unix() - unix
	if age < 0 || time.Duration(age)*time.Second > ttl {
		return false
	}

	for _, key := range keys {
		if hmac.Equal([]byte(sig), []byte(mac(state, key, unix))) {
			return true
		}
	}
	return false
}

func mac(state CodeState, key []byte, unix int64) string {
	var login string
	if state.LastLogin != nil {
		// second precision survives every database round trip
		login = strconv.FormatInt(state.LastLogin.Unix(), 10)
	}
	h := hmac.New(sha256.New, key)
	fmt.Fprintf(h, "%s|%s|%s|%d", state.UserID, state.Email, login, unix)
	return hex.EncodeToString(h.Sum(nil))[:macLen]
}

// CodeGenerator binds the code functions to configured secrets and a clock.
type CodeGenerator struct {
	keys [][]byte
	ttl  time.Duration
	now  func() time.Time
}

// NewCodeGenerator makes codes with the first secret and accepts any of them.
func NewCodeGenerator(secrets []string, ttl time.Duration) *CodeGenerator {
	keys := make([][]byte, 0, len(secrets))
	for _, s := range secrets {
		keys = append(keys, DeriveKey(s))
	}
	return &CodeGenerator{keys: keys, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, used by tests.
func (g *CodeGenerator) WithClock(now func() time.Time) *CodeGenerator {
	g.now = now
	return g
}

func (g *CodeGenerator) Make(state CodeState) string {
	return MakeCode(state, g.keys[0], g.now())
}

func (g *CodeGenerator) Check(state CodeState, code string) bool {
	return CheckCode(state, code, g.keys, g.now(), g.ttl)
}
