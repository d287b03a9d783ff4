package zombiezen

import (
	"bytes"
	"testing"
)

func TestLatestAndInsertConfig(t *testing.T) {
	d := newTestDB(t)

	content, err := d.LatestConfig("application")
	if err != nil {
		t.Fatalf("LatestConfig from empty table failed: %v", err)
	}
	if content != nil {
		t.Fatalf("expected nil content, got %q", content)
	}

	first := []byte{0x00, 0x01, 0xfe}
	if err := d.InsertConfig("application", first, "toml", "first"); err != nil {
		t.Fatalf("InsertConfig failed: %v", err)
	}
	second := []byte("second")
	if err := d.InsertConfig("application", second, "toml", "second"); err != nil {
		t.Fatalf("InsertConfig failed: %v", err)
	}
	if err := d.InsertConfig("other", []byte("other"), "toml", ""); err != nil {
		t.Fatalf("InsertConfig failed: %v", err)
	}

	content, err = d.LatestConfig("application")
	if err != nil {
		t.Fatalf("LatestConfig failed: %v", err)
	}
	if !bytes.Equal(content, second) {
		t.Errorf("LatestConfig() = %q, want %q", content, second)
	}
}
