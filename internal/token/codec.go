package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"boxmgr/internal/model"
)

// DefaultTTL is the session validity window.
const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrMalformed    = errors.New("token malformed")
	ErrBadSignature = errors.New("token signature mismatch")
	ErrExpired      = errors.New("token expired")
)

// payload is the signed session state. Field names and the bare unix
// `exp` are part of the wire contract; tokens held by existing clients
// must keep verifying.
type payload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	Exp      int64  `json:"exp"`
}

// Codec mints and verifies session tokens of the form
// base64(json payload) + "." + base64(hmac-sha256 signature).
// The token is the entire session state; nothing is stored server-side.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue snapshots the identity into a signed token. Privilege changes
// after issuance take effect only when the token is reissued.
func (c *Codec) Issue(identity model.Identity) (string, error) {
	raw, err := json.Marshal(payload{
		ID:       identity.ID,
		Username: identity.Username,
		IsAdmin:  identity.IsAdmin,
		Exp:      c.now().Add(c.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}

	payloadB64 := base64.StdEncoding.EncodeToString(raw)
	return payloadB64 + "." + c.sign(payloadB64), nil
}

// Verify checks the signature in constant time, then the expiry, and
// returns the embedded identity.
func (c *Codec) Verify(token string) (model.Identity, error) {
	payloadB64, sigB64, found := strings.Cut(token, ".")
	if !found || payloadB64 == "" || sigB64 == "" {
		return model.Identity{}, ErrMalformed
	}

	receivedSig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return model.Identity{}, ErrMalformed
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payloadB64))
	if !hmac.Equal(receivedSig, mac.Sum(nil)) {
		return model.Identity{}, ErrBadSignature
	}

	raw, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		return model.Identity{}, ErrMalformed
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Identity{}, ErrMalformed
	}

	if p.Exp < c.now().Unix() {
		return model.Identity{}, ErrExpired
	}

	return model.Identity{ID: p.ID, Username: p.Username, IsAdmin: p.IsAdmin}, nil
}

func (c *Codec) sign(payloadB64 string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payloadB64))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
