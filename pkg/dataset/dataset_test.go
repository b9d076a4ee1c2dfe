package dataset

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/faceaug/pkg/augment"
	"github.com/matzehuels/faceaug/pkg/errors"
)

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
}

// lfwTree builds root/{Alice,Bob}/*.jpg plus a stray text file.
func lfwTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeJPEG(t, filepath.Join(root, "Bob", "Bob_0001.jpg"), 20, 20)
	writeJPEG(t, filepath.Join(root, "Alice", "Alice_0002.jpg"), 20, 20)
	writeJPEG(t, filepath.Join(root, "Alice", "Alice_0001.JPG"), 20, 20)
	writeJPEG(t, filepath.Join(root, "top.jpg"), 20, 20)
	if err := os.WriteFile(filepath.Join(root, "Alice", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestNewDirSource(t *testing.T) {
	root := lfwTree(t)
	src, err := NewDirSource([]string{root}, SourceOptions{})
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}

	want := []string{
		filepath.Join(root, "Alice", "Alice_0001.JPG"),
		filepath.Join(root, "Alice", "Alice_0002.jpg"),
		filepath.Join(root, "Bob", "Bob_0001.jpg"),
		filepath.Join(root, "top.jpg"),
	}
	if src.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d: %v", src.Len(), len(want), src.Paths())
	}
	for i, p := range src.Paths() {
		if p != want[i] {
			t.Errorf("Paths()[%d] = %s, want %s", i, p, want[i])
		}
	}
}

func TestNewDirSourceErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.jpg")
	writeJPEG(t, file, 4, 4)

	tests := []struct {
		name string
		dirs []string
		opts SourceOptions
		code errors.Code
	}{
		{"missing", []string{filepath.Join(root, "nope")}, SourceOptions{}, errors.ErrCodeFileNotFound},
		{"file", []string{file}, SourceOptions{}, errors.ErrCodeInvalidPath},
		{"extension", []string{root}, SourceOptions{Extensions: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDirSource(tt.dirs, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	src := &DirSource{paths: []string{"a", "b", "c", "d", "e"}}
	tests := []struct {
		start, count int
		wantS, wantE int
	}{
		{0, 0, 0, 5},
		{1, 2, 1, 3},
		{3, 10, 3, 5},
		{7, 1, 5, 5},
	}
	for _, tt := range tests {
		s, e, err := src.Window(tt.start, tt.count)
		if err != nil {
			t.Fatal(err)
		}
		if s != tt.wantS || e != tt.wantE {
			t.Errorf("Window(%d, %d) = [%d, %d), want [%d, %d)", tt.start, tt.count, s, e, tt.wantS, tt.wantE)
		}
	}
	if _, _, err := src.Window(-1, 0); err == nil {
		t.Error("negative start should fail")
	}
}

func TestEach(t *testing.T) {
	root := lfwTree(t)
	src, _ := NewDirSource([]string{root}, SourceOptions{})

	var seen []int
	err := src.Each(context.Background(), 1, 2, func(i int, path string, img *augment.Image) error {
		seen = append(seen, i)
		if img.Width != 20 || img.Height != 20 || img.Channels != 3 {
			t.Errorf("image %d: %dx%dx%d", i, img.Width, img.Height, img.Channels)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("visited %v, want [1 2]", seen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := src.Each(ctx, 0, 0, func(int, string, *augment.Image) error { return nil }); err != context.Canceled {
		t.Errorf("cancelled Each: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "bad.jpg")
	if err := os.WriteFile(bad, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(bad); !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("corrupt file: %v", err)
	}
	if _, err := LoadImage(filepath.Join(root, "missing.jpg")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
	if _, err := DecodeImage(strings.NewReader("junk")); !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("junk bytes: %v", err)
	}

	src := &DirSource{}
	if _, err := src.Load(0); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("out of range: %v", err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		img, variant int
		ext, want    string
	}{
		{0, 0, "jpg", "000000_000.jpg"},
		{12, 7, ".png", "000012_007.png"},
		{123456, 19, "jpg", "123456_019.jpg"},
	}
	for _, tt := range tests {
		if got := FileName(tt.img, tt.variant, tt.ext); got != tt.want {
			t.Errorf("FileName(%d, %d, %q) = %s, want %s", tt.img, tt.variant, tt.ext, got, tt.want)
		}
	}
}

func testSet(n, w, h int) []*augment.Image {
	set := make([]*augment.Image, n)
	for i := range set {
		set[i] = augment.NewImage(w, h, 3)
	}
	return set
}

func TestSinkWrite(t *testing.T) {
	root := t.TempDir()
	sink := &Sink{
		AugDir:     filepath.Join(root, "aug"),
		UnaugDir:   filepath.Join(root, "unaug"),
		WriteAug:   true,
		WriteUnaug: true,
		Crop:       DefaultCrop,
		Size:       DefaultSize,
	}
	if err := sink.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	paths, err := sink.Write(7, testSet(3, 250, 250))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []string{
		filepath.Join(root, "unaug", "000007_000.jpg"),
		filepath.Join(root, "aug", "000007_000.jpg"),
		filepath.Join(root, "aug", "000007_001.jpg"),
		filepath.Join(root, "aug", "000007_002.jpg"),
	}
	if len(paths) != len(want) {
		t.Fatalf("wrote %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}

	img, err := imaging.Open(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("output size %v, want 64x64", b.Size())
	}
}

func TestSinkWriteAugOnly(t *testing.T) {
	root := t.TempDir()
	sink := &Sink{AugDir: root, WriteAug: true, Format: "png"}
	if err := sink.Prepare(); err != nil {
		t.Fatal(err)
	}
	paths, err := sink.Write(0, testSet(2, 10, 8))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || filepath.Ext(paths[0]) != ".png" {
		t.Fatalf("wrote %v", paths)
	}
	img, err := imaging.Open(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 8 {
		t.Errorf("uncropped output is %v, want 10x8", b.Size())
	}
}

func TestSinkPrepareErrors(t *testing.T) {
	tests := []struct {
		name string
		sink Sink
	}{
		{"no aug dir", Sink{WriteAug: true}},
		{"no unaug dir", Sink{WriteUnaug: true}},
		{"format", Sink{Format: "gif"}},
		{"size", Sink{Size: -1}},
		{"quality", Sink{Quality: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sink.Prepare(); !errors.IsInvalid(err) {
				t.Errorf("Prepare() = %v, want invalid error", err)
			}
		})
	}
}

func TestProcessClipsCrop(t *testing.T) {
	sink := &Sink{Crop: CropRect(5, 5, 100, 100)}
	out := sink.Process(augment.NewImage(20, 10, 1))
	if got := out.Bounds().Size(); got != image.Pt(15, 5) {
		t.Errorf("clipped crop size %v, want (15,5)", got)
	}
}

func TestEncodeImage(t *testing.T) {
	img := augment.NewImage(4, 4, 3).ToImage()
	data, err := EncodeImage(img, "jpg", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeImage(bytes.NewReader(data)); err != nil {
		t.Errorf("decode encoded jpeg: %v", err)
	}
	if _, err := EncodeImage(img, "bmp2", 0); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown format: %v", err)
	}
}
