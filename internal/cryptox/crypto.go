// Package cryptox seals small JSON values with a key derived from a
// passphrase. The client uses it to keep the saved provider session
// unreadable in the local store.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
)

var ErrMalformed = errors.New("sealed value is malformed")

func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// EncryptEntry serializes entry to JSON and encrypts it with AES-GCM under
// key, which must be 16, 24 or 32 bytes long. A fresh 12-byte nonce is
// generated for each call.
func EncryptEntry(entry any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// DecryptEntry reverses EncryptEntry and unmarshals the JSON into v.
func DecryptEntry(ciphertext, nonce, key []byte, v any) error {
	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Sealer encrypts values under a passphrase. Every sealed value carries its
// own random salt, laid out as salt || nonce || ciphertext.
type Sealer struct {
	passphrase []byte
}

func NewSealer(passphrase string) *Sealer {
	return &Sealer{passphrase: []byte(passphrase)}
}

func (s *Sealer) Seal(v any) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	ct, nonce, err := EncryptEntry(v, DeriveKey(s.passphrase, salt))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(ct))
	out = append(out, salt...)
	out = append(out, nonce...)
	return append(out, ct...), nil
}

func (s *Sealer) Open(b []byte, v any) error {
	if len(b) <= saltSize+nonceSize {
		return ErrMalformed
	}
	salt, nonce, ct := b[:saltSize], b[saltSize:saltSize+nonceSize], b[saltSize+nonceSize:]
	return DecryptEntry(ct, nonce, DeriveKey(s.passphrase, salt), v)
}
