package signature

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"modelsagent/internal/core"
)

// Verifier checks that a request body was signed by the calling platform.
type Verifier struct {
	keys     KeySource
	keyCache core.KeyCache
	ttl      time.Duration
	logger   core.Logger
	metrics  core.MetricsCollector
}

// VerifierConfig holds the Verifier collaborators. KeyCache is optional.
type VerifierConfig struct {
	Keys     KeySource
	KeyCache core.KeyCache
	TTL      time.Duration
	Logger   core.Logger
	Metrics  core.MetricsCollector
}

// NewVerifier creates a Verifier. Without a key cache every verification fetches the key set.
func NewVerifier(cfg VerifierConfig) *Verifier {
	if cfg.TTL <= 0 {
		cfg.TTL = core.DefaultKeyCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = &core.NopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &core.NopMetrics{}
	}
	return &Verifier{
		keys:     cfg.Keys,
		keyCache: cfg.KeyCache,
		ttl:      cfg.TTL,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// Verify reports whether signature is a valid signature of body by the key
// named keyID. A well-formed signature that does not match returns false
// with a nil error. Malformed input, a missing key or a failed key fetch
// return an error.
func (v *Verifier) Verify(ctx context.Context, body []byte, signature, keyID, token string) (bool, error) {
	if len(body) == 0 {
		return false, core.NewAuthError("empty payload", nil)
	}
	if strings.TrimSpace(signature) == "" {
		return false, core.NewAuthError("missing signature", nil)
	}
	if strings.TrimSpace(keyID) == "" {
		return false, core.NewAuthError("missing key identifier", nil)
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, core.NewAuthError("signature is not valid base64", err)
	}

	key, err := v.lookupKey(ctx, keyID, token)
	if err != nil {
		return false, err
	}

	pub, err := parsePublicKey(key.Key)
	if err != nil {
		return false, core.NewAuthError(fmt.Sprintf("public key %q is unusable", keyID), err)
	}

	digest := sha256.Sum256(body)
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(k, digest[:], sig), nil
	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(k, crypto.SHA256, digest[:], sig) == nil, nil
	default:
		return false, core.NewAuthError(fmt.Sprintf("unsupported key type %T", pub), nil)
	}
}

// lookupKey resolves keyID from the cached key set, refetching once when the
// cache misses or does not know keyID.
func (v *Verifier) lookupKey(ctx context.Context, keyID, token string) (core.PublicKey, error) {
	if v.keyCache != nil {
		if keys, ok := v.keyCache.GetKeys(ctx); ok {
			if key, found := findKey(keys, keyID); found {
				v.metrics.RecordKeyCacheHit()
				return key, nil
			}
			v.logger.Debug("Key %s not in cached key set, refetching", keyID)
		}
		v.metrics.RecordKeyCacheMiss()
	}

	keys, err := v.keys.Fetch(ctx, token)
	if err != nil {
		return core.PublicKey{}, core.NewAuthError("could not fetch public keys", err)
	}

	if v.keyCache != nil {
		if err := v.keyCache.SetKeys(ctx, keys, v.ttl); err != nil {
			v.logger.Warn("Failed to cache public keys: %v", err)
		}
	}

	key, found := findKey(keys, keyID)
	if !found {
		return core.PublicKey{}, core.NewAuthError(fmt.Sprintf("key %q", keyID), core.ErrMissingKey)
	}
	return key, nil
}

func parsePublicKey(pemText string) (crypto.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	return x509.ParsePKIXPublicKey(block.Bytes)
}
