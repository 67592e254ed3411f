package sector

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassify(t *testing.T) {
	c := New()

	if sector, ok := c.Classify("NVDA"); !ok || sector != "Technology" {
		t.Errorf("Classify(NVDA) = (%q, %v), want (Technology, true)", sector, ok)
	}

	// Case and whitespace insensitive.
	if sector, ok := c.Classify(" xom "); !ok || sector != "Energy" {
		t.Errorf("Classify(' xom ') = (%q, %v), want (Energy, true)", sector, ok)
	}

	if _, ok := c.Classify("ZZZZZZ"); ok {
		t.Error("Classify(ZZZZZZ) resolved, want unresolved")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors.yaml")
	content := "zzzz: Shipping\nnvda: Semiconductors\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	if err := c.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}

	if sector, ok := c.Classify("ZZZZ"); !ok || sector != "Shipping" {
		t.Errorf("Classify(ZZZZ) = (%q, %v), want (Shipping, true)", sector, ok)
	}
	// Overrides win over the builtin table.
	if sector, _ := c.Classify("NVDA"); sector != "Semiconductors" {
		t.Errorf("Classify(NVDA) = %q, want override Semiconductors", sector)
	}
}

func TestLoadOverrides_MissingFile(t *testing.T) {
	c := New()
	if err := c.LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadOverrides() on missing file succeeded, want error")
	}
}
