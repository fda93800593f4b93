package keygen

import (
	"bytes"
	"crypto/ed25519"
	"encoding/pem"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestGenerateEd25519KeyPair(t *testing.T) {
	t.Parallel()
	keyPair, err := GenerateEd25519KeyPair("node")
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair failed: %v", err)
	}

	if keyPair == nil {
		t.Fatal("expected non-nil KeyPair")
	}

	if len(keyPair.PrivateKey) == 0 { //nolint:staticcheck // t.Fatal above ensures keyPair is not nil
		t.Error("expected non-empty private key")
	}

	if len(keyPair.PublicKey) == 0 {
		t.Error("expected non-empty public key")
	}
}

func TestKeyPair_PrivateKeyPEMFormat(t *testing.T) {
	t.Parallel()
	keyPair, err := GenerateEd25519KeyPair("node")
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair failed: %v", err)
	}

	block, rest := pem.Decode(keyPair.PrivateKey)
	if block == nil {
		t.Fatal("failed to decode PEM block")
	}

	if len(rest) > 0 && len(bytes.TrimSpace(rest)) > 0 {
		t.Error("unexpected data after PEM block")
	}

	if block.Type != "OPENSSH PRIVATE KEY" { //nolint:staticcheck // t.Fatal above ensures block is not nil
		t.Errorf("expected PEM type 'OPENSSH PRIVATE KEY', got %q", block.Type)
	}

	// Verify it parses back as a usable SSH signer
	_, err = ssh.ParsePrivateKey(keyPair.PrivateKey)
	if err != nil {
		t.Errorf("failed to parse private key: %v", err)
	}
}

func TestKeyPair_PublicKeySSHFormat(t *testing.T) {
	t.Parallel()
	keyPair, err := GenerateEd25519KeyPair("node")
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair failed: %v", err)
	}

	pubKeyStr := string(keyPair.PublicKey)

	if !strings.HasPrefix(pubKeyStr, "ssh-ed25519 ") {
		t.Errorf("public key should start with 'ssh-ed25519 ', got %q", pubKeyStr[:min(20, len(pubKeyStr))])
	}

	if !strings.HasSuffix(pubKeyStr, "\n") {
		t.Error("public key should end with newline")
	}

	_, _, _, _, err = ssh.ParseAuthorizedKey(keyPair.PublicKey)
	if err != nil {
		t.Errorf("failed to parse public key as authorized key: %v", err)
	}
}

func TestGenerateEd25519KeyPair_Uniqueness(t *testing.T) {
	t.Parallel()
	keyPair1, err := GenerateEd25519KeyPair("node")
	if err != nil {
		t.Fatalf("first GenerateEd25519KeyPair failed: %v", err)
	}

	keyPair2, err := GenerateEd25519KeyPair("node")
	if err != nil {
		t.Fatalf("second GenerateEd25519KeyPair failed: %v", err)
	}

	if bytes.Equal(keyPair1.PrivateKey, keyPair2.PrivateKey) {
		t.Error("two generated key pairs should have different private keys")
	}

	if bytes.Equal(keyPair1.PublicKey, keyPair2.PublicKey) {
		t.Error("two generated key pairs should have different public keys")
	}
}

func TestGenerateEd25519KeyPair_KeyPairCorrespondence(t *testing.T) {
	t.Parallel()
	keyPair, err := GenerateEd25519KeyPair("node")
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair failed: %v", err)
	}

	signer, err := ssh.ParsePrivateKey(keyPair.PrivateKey)
	if err != nil {
		t.Fatalf("failed to parse private key: %v", err)
	}

	parsedPubKey, _, _, _, err := ssh.ParseAuthorizedKey(keyPair.PublicKey)
	if err != nil {
		t.Fatalf("failed to parse public key: %v", err)
	}

	if !bytes.Equal(parsedPubKey.Marshal(), signer.PublicKey().Marshal()) {
		t.Error("public key does not correspond to private key")
	}

	cryptoPub, ok := parsedPubKey.(ssh.CryptoPublicKey)
	if !ok {
		t.Fatal("parsed public key does not expose the underlying crypto key")
	}
	if _, ok := cryptoPub.CryptoPublicKey().(ed25519.PublicKey); !ok {
		t.Error("expected an Ed25519 public key")
	}
}
