package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"liftbox/internal/config"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()

	dir := t.TempDir()
	return NewAgeEncryptor(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "liftbox.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "liftbox.key"),
	})
}

func TestAgeEncryptor_Setup(t *testing.T) {
	e := newTestAgeEncryptor(t)

	if e.IsConfigured() {
		t.Error("IsConfigured() = true before Setup")
	}

	if err := e.Setup("test-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup")
	}

	pubData, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		t.Fatalf("reading public key: %v", err)
	}
	if !strings.HasPrefix(string(pubData), "age1") {
		t.Errorf("public key does not look like an age recipient: %q", pubData)
	}

	// The private key file must not contain the identity in plaintext.
	privData, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		t.Fatalf("reading private key: %v", err)
	}
	if strings.Contains(string(privData), "AGE-SECRET-KEY-") {
		t.Error("private key stored in plaintext")
	}
}

func TestAgeEncryptor_EncryptDecryptRoundTrip(t *testing.T) {
	e := newTestAgeEncryptor(t)
	if err := e.Setup("correct horse"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	plaintext := []byte("archive bytes to protect")

	var ciphertext bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(plaintext), &ciphertext); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Contains(ciphertext.Bytes(), plaintext) {
		t.Error("ciphertext contains the plaintext")
	}

	ctx, err := e.Unlock("correct horse")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	var decrypted bytes.Buffer
	if err := ctx.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Errorf("Decrypt() = %q, want %q", decrypted.Bytes(), plaintext)
	}
}

func TestAgeEncryptor_UnlockWrongPassphrase(t *testing.T) {
	e := newTestAgeEncryptor(t)
	if err := e.Setup("right"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if _, err := e.Unlock("wrong"); err == nil {
		t.Error("Unlock() succeeded with the wrong passphrase")
	}
}

func TestAgeEncryptor_EncryptWithoutKeys(t *testing.T) {
	e := newTestAgeEncryptor(t)

	var out bytes.Buffer
	if err := e.Encrypt(strings.NewReader("data"), &out); err == nil {
		t.Error("Encrypt() succeeded without keys configured")
	}
}
