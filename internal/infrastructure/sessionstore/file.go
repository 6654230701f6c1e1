package sessionstore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/portal-hub/student-portal/internal/application/session"
)

// Verify interface compliance.
var _ session.Store = (*File)(nil)

// The current version of the encrypted blob format stored on disk.
const fileFormatVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// stored session file has been modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted session file")

// File persists the session as an encrypted JSON blob on disk, so a token
// cached between CLI runs is never written in the clear.
type File struct {
	path       string
	passphrase string
}

// NewFile creates a file-backed store at path, sealed with passphrase.
func NewFile(path, passphrase string) *File {
	return &File{path: path, passphrase: passphrase}
}

// blob is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// Save seals the session and writes it with owner-only permissions.
func (f *File) Save(_ context.Context, s *session.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	sealed, err := seal(f.passphrase, raw)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, sealed, 0o600)
}

// Load opens and decrypts the stored session. A missing file means no
// session is stored.
func (f *File) Load(_ context.Context) (*session.Session, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	raw, err := open(f.passphrase, data)
	if err != nil {
		return nil, err
	}

	var s session.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Clear removes the session file.
func (f *File) Clear(_ context.Context) error {
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// seal derives a key from the passphrase and encrypts raw into a JSON blob.
// The nonce is always zero: every Save draws a fresh random salt, so each
// encryption uses a distinct derived key and the (key, nonce) pair never
// repeats. Binding the salt as AAD ties the ciphertext to its KDF inputs.
func seal(passphrase string, raw []byte) ([]byte, error) {
	N, r, p := scryptParamsDefault()

	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	var nonce [12]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(blob{V: fileFormatVersion, Salt: salt[:], N: N, R: r, P: p, Cipher: ct})
}

// open decrypts a JSON blob using a key derived from the passphrase.
func open(passphrase string, data []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(data, &bl); err != nil {
		return nil, ErrWrongPassphrase
	}
	if bl.V > fileFormatVersion {
		return nil, fmt.Errorf("unsupported session file version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
