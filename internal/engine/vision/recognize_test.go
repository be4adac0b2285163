package vision

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCharset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charset.txt")
	if err := os.WriteFile(path, []byte("a\nb\n\nあ\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	charset, err := loadCharset(path)
	if err != nil {
		t.Fatalf("loadCharset: %v", err)
	}
	// Class 0 is the CTC blank; the empty line maps to a space.
	want := []rune{0, 'a', 'b', ' ', 'あ'}
	if len(charset) != len(want) {
		t.Fatalf("got %d classes, want %d", len(charset), len(want))
	}
	for i, r := range want {
		if charset[i] != r {
			t.Errorf("charset[%d] = %q, want %q", i, charset[i], r)
		}
	}
}

func TestLoadCharset_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charset.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCharset(path); err == nil {
		t.Error("empty charset should fail")
	}
}

func TestScaleToHeight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	out := scaleToHeight(img, lineHeight)
	if got := out.Bounds().Dy(); got != lineHeight {
		t.Errorf("height = %d, want %d", got, lineHeight)
	}
	if got := out.Bounds().Dx(); got != 96 {
		t.Errorf("width = %d, want aspect-preserving 96", got)
	}

	same := image.NewRGBA(image.Rect(0, 0, 10, lineHeight))
	if scaleToHeight(same, lineHeight) != same {
		t.Error("image already at target height should be returned as-is")
	}
}
