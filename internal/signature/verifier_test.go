package signature

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"modelsagent/internal/core"
	"modelsagent/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeys struct {
	keys  []core.PublicKey
	err   error
	calls atomic.Int32
}

func (s *staticKeys) Fetch(context.Context, string) ([]core.PublicKey, error) {
	s.calls.Add(1)
	return s.keys, s.err
}

func encodePEM(t *testing.T, pub crypto.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func newECDSAKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return priv, encodePEM(t, &priv.PublicKey)
}

func signECDSA(t *testing.T, priv *ecdsa.PrivateKey, body []byte) []byte {
	t.Helper()
	digest := sha256.Sum256(body)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	require.NoError(t, err)
	return sig
}

func TestVerify_ECDSA(t *testing.T) {
	priv, pemText := newECDSAKey(t)
	body := []byte(`{"messages":[{"role":"user","content":"hi"}]}`)
	sig := signECDSA(t, priv, body)

	v := NewVerifier(VerifierConfig{Keys: &staticKeys{keys: []core.PublicKey{
		{Key: "unrelated", KeyIdentifier: "old"},
		{Key: pemText, KeyIdentifier: "k1", IsCurrent: true},
	}}})

	ok, err := v.Verify(context.Background(), body, base64.StdEncoding.EncodeToString(sig), "k1", "tok")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_SingleBitMutations(t *testing.T) {
	priv, pemText := newECDSAKey(t)
	body := []byte(`{"messages":[{"role":"user","content":"list models"}]}`)
	sig := signECDSA(t, priv, body)
	v := NewVerifier(VerifierConfig{Keys: &staticKeys{keys: []core.PublicKey{{Key: pemText, KeyIdentifier: "k1"}}}})
	ctx := context.Background()

	for i := 0; i < len(body)*8; i += 7 {
		mutated := append([]byte(nil), body...)
		mutated[i/8] ^= 1 << (i % 8)
		ok, err := v.Verify(ctx, mutated, base64.StdEncoding.EncodeToString(sig), "k1", "tok")
		require.NoError(t, err)
		assert.False(t, ok, "body bit %d flipped should not verify", i)
	}

	for i := 0; i < len(sig)*8; i += 5 {
		mutated := append([]byte(nil), sig...)
		mutated[i/8] ^= 1 << (i % 8)
		ok, err := v.Verify(ctx, body, base64.StdEncoding.EncodeToString(mutated), "k1", "tok")
		require.NoError(t, err)
		assert.False(t, ok, "signature bit %d flipped should not verify", i)
	}
}

func TestVerify_RSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	body := []byte(`{"messages":[]}`)
	digest := sha256.Sum256(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	require.NoError(t, err)

	v := NewVerifier(VerifierConfig{Keys: &staticKeys{keys: []core.PublicKey{{Key: encodePEM(t, &priv.PublicKey), KeyIdentifier: "rsa"}}}})
	ok, err := v.Verify(context.Background(), body, base64.StdEncoding.EncodeToString(sig), "rsa", "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(context.Background(), []byte(`{"messages":[1]}`), base64.StdEncoding.EncodeToString(sig), "rsa", "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedInput(t *testing.T) {
	_, pemText := newECDSAKey(t)
	keys := &staticKeys{keys: []core.PublicKey{{Key: pemText, KeyIdentifier: "k1"}, {Key: "garbage", KeyIdentifier: "bad"}}}
	v := NewVerifier(VerifierConfig{Keys: keys})

	tests := []struct {
		name  string
		body  []byte
		sig   string
		keyID string
	}{
		{"empty body", nil, "c2ln", "k1"},
		{"empty signature", []byte("{}"), "", "k1"},
		{"empty key id", []byte("{}"), "c2ln", " "},
		{"not base64", []byte("{}"), "%%%", "k1"},
		{"unknown key", []byte("{}"), "c2ln", "missing"},
		{"unparseable key", []byte("{}"), "c2ln", "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := v.Verify(context.Background(), tt.body, tt.sig, tt.keyID, "tok")
			assert.False(t, ok)
			assert.ErrorIs(t, err, core.ErrAuth)
		})
	}

	_, err := v.Verify(context.Background(), []byte("{}"), "c2ln", "missing", "tok")
	assert.ErrorIs(t, err, core.ErrMissingKey)
}

func TestVerify_FetchFailureIsAuthError(t *testing.T) {
	v := NewVerifier(VerifierConfig{Keys: &staticKeys{err: core.NewUpstreamError("key endpoint", errors.New("boom"))}})
	_, err := v.Verify(context.Background(), []byte("{}"), "c2ln", "k1", "tok")
	assert.ErrorIs(t, err, core.ErrAuth)
	assert.ErrorIs(t, err, core.ErrUpstream)
}

func TestVerify_KeyCache(t *testing.T) {
	priv, pemText := newECDSAKey(t)
	body := []byte(`{"messages":[]}`)
	sig := base64.StdEncoding.EncodeToString(signECDSA(t, priv, body))
	ctx := context.Background()

	keys := &staticKeys{keys: []core.PublicKey{{Key: pemText, KeyIdentifier: "k1"}}}
	kc := storage.NewMemoryKeyCache("http://keys.test")
	defer kc.Close()
	v := NewVerifier(VerifierConfig{Keys: keys, KeyCache: kc, TTL: time.Hour})

	for i := 0; i < 3; i++ {
		ok, err := v.Verify(ctx, body, sig, "k1", "tok")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, int32(1), keys.calls.Load(), "cached key set should be reused")
}

func TestVerify_KeyRotationRefetches(t *testing.T) {
	_, oldPEM := newECDSAKey(t)
	newPriv, newPEM := newECDSAKey(t)
	body := []byte(`{"messages":[]}`)
	ctx := context.Background()

	kc := storage.NewMemoryKeyCache("http://keys.test")
	defer kc.Close()
	require.NoError(t, kc.SetKeys(ctx, []core.PublicKey{{Key: oldPEM, KeyIdentifier: "old"}}, time.Hour))

	keys := &staticKeys{keys: []core.PublicKey{{Key: newPEM, KeyIdentifier: "new", IsCurrent: true}}}
	v := NewVerifier(VerifierConfig{Keys: keys, KeyCache: kc})

	sig := base64.StdEncoding.EncodeToString(signECDSA(t, newPriv, body))
	ok, err := v.Verify(ctx, body, sig, "new", "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), keys.calls.Load(), "key id miss in cache should trigger one refetch")

	cached, found := kc.GetKeys(ctx)
	require.True(t, found)
	assert.Equal(t, "new", cached[0].KeyIdentifier, "refetched set should replace the cached one")
}

func TestKeyFetcher(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(core.HeaderAuthorization)
		w.Header().Set(core.HeaderContentType, core.ContentTypeJSON)
		_, _ = w.Write([]byte(`{"public_keys":[{"key":"pem","key_identifier":"k1","is_current":true}]}`))
	}))
	defer srv.Close()

	keys, err := NewKeyFetcher(srv.Client(), srv.URL, time.Second, nil).Fetch(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, []core.PublicKey{{Key: "pem", KeyIdentifier: "k1", IsCurrent: true}}, keys)
}

func TestKeyFetcher_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>")) }},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewKeyFetcher(srv.Client(), srv.URL, 50*time.Millisecond, nil).Fetch(context.Background(), "tok")
			assert.ErrorIs(t, err, core.ErrUpstream)
		})
	}
}
