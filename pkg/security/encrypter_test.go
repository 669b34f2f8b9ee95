package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSAEncrypterRoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	enc := NewRSAEncrypter(&priv.PublicKey)
	ciphertext, err := enc.Encrypt([]byte("hunter2"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("hunter2"), ciphertext)

	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, priv, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(plaintext))
}

func TestRSAEncrypterWithoutKey(t *testing.T) {
	var enc *RSAEncrypter
	_, err := enc.Encrypt([]byte("x"))
	assert.Error(t, err)
}

func TestLoadPublicKeyFormats(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	pkix, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		block *pem.Block
	}{
		{name: "pkix", block: &pem.Block{Type: "PUBLIC KEY", Bytes: pkix}},
		{name: "pkcs1", block: &pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&priv.PublicKey)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "public.pem")
			require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(tt.block), 0o600))

			key, err := LoadPublicKey(path)
			require.NoError(t, err)
			assert.Zero(t, priv.PublicKey.N.Cmp(key.N))
		})
	}
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	_, err := ParsePublicKey([]byte("not pem"))
	assert.Error(t, err)
}
