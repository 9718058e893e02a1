package sessions

import (
	"crypto/sha256"
	"io"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	keyInfo = "csv-sheet-sync session signing key"
	keySize = 32
)

// HMACsigner signs session tokens with HMAC-SHA256 using a key derived from
// the configured secret
type HMACsigner struct {
	key []byte
}

// NewHMACSigner derives the signing key from secret
func NewHMACSigner(secret string) (*HMACsigner, error) {
	if secret == "" {
		return nil, apperrors.ErrMissingSecret
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, errors.Wrap(err, "failed to derive session key")
	}
	return &HMACsigner{key: key}, nil
}

func (h *HMACsigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(h.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session with HMAC")
	}
	return signedToken, nil
}

func (h *HMACsigner) GetVerificationKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.key, nil
}

func (h *HMACsigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}
