package credential

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatic(t *testing.T) {
	if tok, ok := Static("abc").Obtain(); !ok || tok != "abc" {
		t.Errorf("Obtain = (%q, %v)", tok, ok)
	}
	if _, ok := Static("").Obtain(); ok {
		t.Error("empty static should not provide")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	f := File{Path: path}

	if _, ok := f.Obtain(); ok {
		t.Error("missing file should not provide")
	}
	if err := f.Store("sekret"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	tok, ok := f.Obtain()
	if !ok || tok != "sekret" {
		t.Errorf("Obtain = (%q, %v)", tok, ok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}
}

func TestPrompt(t *testing.T) {
	var out strings.Builder
	p := Prompt{In: strings.NewReader("  typed-token  \n"), Out: &out}
	tok, ok := p.Obtain()
	if !ok || tok != "typed-token" {
		t.Errorf("Obtain = (%q, %v)", tok, ok)
	}
	if !strings.Contains(out.String(), "access token") {
		t.Errorf("prompt text = %q", out.String())
	}

	p = Prompt{In: strings.NewReader("\n"), Out: &out}
	if _, ok := p.Obtain(); ok {
		t.Error("empty line should mean declined")
	}
}

func TestChainOrder(t *testing.T) {
	c := Chain{Static(""), Static("first"), Static("second")}
	tok, ok := c.Obtain()
	if !ok || tok != "first" {
		t.Errorf("Obtain = (%q, %v), want first", tok, ok)
	}

	if _, ok := (Chain{Static(""), File{}}).Obtain(); ok {
		t.Error("empty chain should not provide")
	}
}
