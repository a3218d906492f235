package tokenstore

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
)

// sealMagic prefixes sealed credential files so plaintext and sealed
// stores can be told apart.
var sealMagic = []byte("RHSEAL1")

const sealSaltSize = 16

// Sealer encrypts credentials at rest with XChaCha20-Poly1305 under a
// scrypt-derived key. Opt-in; the default store is plaintext like the
// browser's localStorage the format descends from.
type Sealer struct {
	passphrase []byte
}

// NewSealer creates a sealer from a non-empty passphrase
func NewSealer(passphrase []byte) (*Sealer, error) {
	if len(passphrase) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeCredentialsSeal, "seal passphrase is empty").
			WithSuggestion("Set the REFHUB_SEAL_KEY environment variable")
	}
	return &Sealer{passphrase: passphrase}, nil
}

func (s *Sealer) key(salt []byte) ([]byte, error) {
	return scrypt.Key(s.passphrase, salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
}

// Seal encrypts plaintext into the sealed file format:
// magic || salt || nonce || ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, sealSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := s.key(salt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCredentialsSeal, "key derivation failed", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCredentialsSeal, "cipher init failed", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+len(salt)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts a sealed credentials file
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	header := len(sealMagic) + sealSaltSize + chacha20poly1305.NonceSizeX
	if len(sealed) < header || string(sealed[:len(sealMagic)]) != string(sealMagic) {
		return nil, apperrors.New(apperrors.ErrCodeCredentialsSeal, "credentials file is not sealed or is corrupt")
	}

	salt := sealed[len(sealMagic) : len(sealMagic)+sealSaltSize]
	nonce := sealed[len(sealMagic)+sealSaltSize : header]
	ciphertext := sealed[header:]

	key, err := s.key(salt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCredentialsSeal, "key derivation failed", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCredentialsSeal, "cipher init failed", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCredentialsSeal, "failed to open sealed credentials", err).
			WithSuggestion("Check that REFHUB_SEAL_KEY matches the key used when logging in")
	}

	return plaintext, nil
}
