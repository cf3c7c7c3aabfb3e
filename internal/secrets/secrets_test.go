package secrets

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetTraySecret(t *testing.T) {
	gokeyring.MockInit()

	if err := SetTraySecret("s3cret"); err != nil {
		t.Fatalf("SetTraySecret() failed: %v", err)
	}

	got, err := GetTraySecret()
	if err != nil {
		t.Fatalf("GetTraySecret() failed: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("GetTraySecret() = %q, want %q", got, "s3cret")
	}
}

func TestSetTraySecretEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetTraySecret(""); err == nil {
		t.Error("SetTraySecret(\"\") succeeded, want error")
	}
}

func TestDeleteTraySecret(t *testing.T) {
	gokeyring.MockInit()

	if err := SetTraySecret("s3cret"); err != nil {
		t.Fatalf("SetTraySecret() failed: %v", err)
	}
	if err := DeleteTraySecret(); err != nil {
		t.Fatalf("DeleteTraySecret() failed: %v", err)
	}

	if _, err := GetTraySecret(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTraySecret() after delete = %v, want ErrNotFound", err)
	}

	if err := DeleteTraySecret(); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTraySecret() on empty keyring = %v, want ErrNotFound", err)
	}
}
