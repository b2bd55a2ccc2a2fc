package cryptor

import (
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	t.Setenv(EnvKey, "test-passphrase")
	sealed, err := Encrypt("-----BEGIN CERTIFICATE-----")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sealed, "enc$") {
		t.Fatalf("sealed value %q lacks the marker prefix", sealed)
	}
	plain, err := Decrypt(sealed)
	if err != nil {
		t.Fatal(err)
	}
	if plain != "-----BEGIN CERTIFICATE-----" {
		t.Fatalf("round trip produced %q", plain)
	}
}

func TestNoncesDiffer(t *testing.T) {
	t.Setenv(EnvKey, "test-passphrase")
	a, err := Encrypt("token")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt("token")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same value must not be identical")
	}
}

func TestPlaintextPassThrough(t *testing.T) {
	t.Setenv(EnvKey, "")
	sealed, err := Encrypt("token")
	if err != nil {
		t.Fatal(err)
	}
	if sealed != "token" {
		t.Fatalf("keyless encrypt changed the value to %q", sealed)
	}
	plain, err := Decrypt("token")
	if err != nil {
		t.Fatal(err)
	}
	if plain != "token" {
		t.Fatalf("plaintext decrypt changed the value to %q", plain)
	}
}

func TestEmptyValue(t *testing.T) {
	t.Setenv(EnvKey, "test-passphrase")
	sealed, err := Encrypt("")
	if err != nil || sealed != "" {
		t.Fatalf("Encrypt(\"\") = (%q, %v)", sealed, err)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Setenv(EnvKey, "test-passphrase")
	if _, err := Decrypt("enc$not-base64!!"); err == nil {
		t.Error("garbage payload must fail")
	}
	if _, err := Decrypt("enc$YWJj"); err == nil {
		t.Error("truncated payload must fail")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	t.Setenv(EnvKey, "key-one")
	sealed, err := Encrypt("token")
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvKey, "key-two")
	if _, err := Decrypt(sealed); err == nil {
		t.Error("decrypting under a different key must fail")
	}
}
