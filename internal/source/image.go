package source

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/animchat/internal/system"
)

// UploadBaseName is the fixed name every upload is stored under.
const UploadBaseName = "uploaded_image"

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

func IsImageExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range imageExts {
		if e == ext {
			return true
		}
	}
	return false
}

type ImageSource struct {
	path string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &ImageSource{path: path}, nil
}

func (s *ImageSource) Render(dpi int) (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

// LoadStill opens path and renders its still image.
func LoadStill(path string, dpi int) (image.Image, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Render(dpi)
}

// Fit letterboxes img onto a black width x height canvas, keeping its aspect ratio.
// The canvas comes from the shared pool; hand it back with system.PutImage.
func Fit(img image.Image, width, height int) *image.RGBA {
	dst := system.GetImage(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	b := img.Bounds()
	if b.Empty() {
		return dst
	}
	scale := min(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	x := (width - w) / 2
	y := (height - h) / 2

	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+w, y+h), img, b, draw.Src, nil)
	return dst
}

// SaveUpload stores an uploaded file under dir as uploaded_image<ext>,
// replacing any previous upload.
func SaveUpload(r io.Reader, filename, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if !IsImageExt(ext) && ext != ".pdf" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, UploadBaseName+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
