// Package security provides the credential encryption used before a password is
// stored in the settings file. Only the launch server can decrypt the result.
package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
)

// Encrypter turns a plaintext password into opaque bytes.
type Encrypter interface {
	Encrypt(plaintext []byte) ([]byte, error)
}

// EncrypterFunc adapts a function to Encrypter.
type EncrypterFunc func(plaintext []byte) ([]byte, error)

// Encrypt calls f.
func (f EncrypterFunc) Encrypt(plaintext []byte) ([]byte, error) {
	return f(plaintext)
}

// RSAEncrypter encrypts with the launch server's RSA public key (PKCS#1 v1.5).
type RSAEncrypter struct {
	key    *rsa.PublicKey
	random io.Reader
}

// NewRSAEncrypter wraps an existing public key.
func NewRSAEncrypter(key *rsa.PublicKey) *RSAEncrypter {
	return &RSAEncrypter{key: key, random: rand.Reader}
}

// Encrypt implements Encrypter.
func (e *RSAEncrypter) Encrypt(plaintext []byte) ([]byte, error) {
	if e == nil || e.key == nil {
		return nil, errors.New("no public key configured")
	}
	out, err := rsa.EncryptPKCS1v15(e.random, e.key, plaintext)
	if err != nil {
		return nil, fmt.Errorf("rsa encrypt: %w", err)
	}
	return out, nil
}

// LoadPublicKey reads an RSA public key from a PEM file (PKIX or PKCS#1).
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	return ParsePublicKey(data)
}

// ParsePublicKey decodes a PEM encoded RSA public key.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode public key PEM")
	}

	// Try to parse as PKIX first
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key is not RSA")
		}
		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("unable to parse public key: %w", err)
	}
	return key, nil
}
