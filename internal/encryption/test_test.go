package encryption

import (
	"bytes"
	"testing"

	"liftbox/internal/config"
)

func TestTestEncryptor_RoundTrip(t *testing.T) {
	e := NewTestEncryptor()

	plaintext := []byte("archive data")

	var encrypted bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(plaintext), &encrypted); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Equal(encrypted.Bytes(), plaintext) {
		t.Error("encrypted output identical to plaintext")
	}

	ctx, err := e.Unlock("any")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	var decrypted bytes.Buffer
	if err := ctx.Decrypt(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Errorf("Decrypt() = %q, want %q", decrypted.Bytes(), plaintext)
	}
}

func TestTestDecryptionContext_RejectsPlaintext(t *testing.T) {
	ctx := &TestDecryptionContext{}

	var out bytes.Buffer
	if err := ctx.Decrypt(bytes.NewReader([]byte("not encrypted data")), &out); err == nil {
		t.Error("Decrypt() accepted data without the header")
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		typ     string
		wantErr bool
	}{
		{"age", false},
		{"", false},
		{"test", false},
		{"gpg", true},
	}

	for _, tt := range tests {
		name := tt.typ
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			_, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEncryptorFromConfig(%q) error = %v, wantErr %v", tt.typ, err, tt.wantErr)
			}
		})
	}
}
