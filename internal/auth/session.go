// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// privateKey and publicKey are used for signing and verifying JWT tokens.
var (
	mu         sync.RWMutex
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long a token stays valid (0 => never expires).
	tokenTTL time.Duration
)

// ParseTokenExpireTime reads a TOKEN_EXPIRE_TIME value. "never", "0" and empty mean no expiry.
func ParseTokenExpireTime(s string) (time.Duration, error) {
	if s == "never" || s == "0" || s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, eris.Wrap(err, "failed to parse token expire time")
	}
	return d, nil
}

// Init generates a fresh ed25519 key pair at runtime and sets the token expiration.
func Init(expire string) error {
	ttl, err := ParseTokenExpireTime(expire)
	if err != nil {
		return err
	}
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return eris.Wrap(err, "failed to generate ed25519 key pair")
	}
	setKeys(priv, pub, ttl)
	return nil
}

// InitFromPath reads ed25519 private/public keys from file and sets the token expiration.
func InitFromPath(privatePath, publicPath, expire string) error {
	ttl, err := ParseTokenExpireTime(expire)
	if err != nil {
		return err
	}
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return eris.Wrap(err, "failed to read private key file")
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return eris.Wrap(err, "failed to read public key file")
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return eris.New("key files are not raw ed25519 keys")
	}

	setKeys(ed25519.PrivateKey(privateKeyData), ed25519.PublicKey(publicKeyData), ttl)
	return nil
}

func setKeys(priv ed25519.PrivateKey, pub ed25519.PublicKey, ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	privateKey, publicKey, tokenTTL = priv, pub, ttl
}

// CreateJWT creates a signed JWT token with "sub" = userID and an exp claim
// unless tokens are configured to never expire.
func CreateJWT(userID uuid.UUID) (string, error) {
	mu.RLock()
	key, ttl := privateKey, tokenTTL
	mu.RUnlock()
	if key == nil {
		return "", eris.New("signing key not initialized")
	}

	claims := jwt.MapClaims{
		"sub": userID.String(),
	}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(key)
}

// AuthenticateJWT verifies a JWT string and returns the user id in its "sub" claim.
func AuthenticateJWT(tokenString string) (uuid.UUID, error) {
	mu.RLock()
	key := publicKey
	mu.RUnlock()

	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, eris.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "jwt parse error")
	}
	if !t.Valid {
		return uuid.Nil, eris.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, eris.New("invalid jwt claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, eris.New("missing sub in jwt")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "sub is not a user id")
	}
	return userID, nil
}
