package gate

import (
	"errors"
	"testing"
)

func TestGrantAndCheck(t *testing.T) {
	g := NewSharedSecret("open sesame")

	token, err := g.Grant("open sesame")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
	if !g.Check(token) {
		t.Fatalf("fresh token rejected")
	}

	second, err := g.Grant("open sesame")
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if second == token {
		t.Fatalf("tokens are not unique per grant")
	}
}

func TestGrantRejectsWrongPassphrase(t *testing.T) {
	g := NewSharedSecret("open sesame")
	for _, attempt := range []string{"", "OPEN SESAME", "open sesame "} {
		if _, err := g.Grant(attempt); !errors.Is(err, ErrDenied) {
			t.Errorf("passphrase %q: err = %v, want ErrDenied", attempt, err)
		}
	}
}

func TestEmptyPassphraseDisablesGate(t *testing.T) {
	g := NewSharedSecret("")
	if _, err := g.Grant(""); !errors.Is(err, ErrDenied) {
		t.Fatalf("disabled gate granted access: %v", err)
	}
}

func TestRevokeEndsSession(t *testing.T) {
	g := NewSharedSecret("open sesame")
	token, err := g.Grant("open sesame")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	g.Revoke(token)
	if g.Check(token) {
		t.Fatalf("revoked token still accepted")
	}
	g.Revoke(token) // second revoke is a no-op
	if g.Check("") {
		t.Fatalf("empty token accepted")
	}
}
