package source

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Source provides the single still every scene is rendered against.
type Source interface {
	Render(dpi int) (image.Image, error)
	Close() error
}

// Open picks a source implementation by file extension.
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return NewFitzPDFSource(path)
	case IsImageExt(ext):
		return NewImageSource(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// FitzPDFSource uses the first page of a PDF as the still.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, fmt.Errorf("%s has no pages", path)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) Render(dpi int) (image.Image, error) {
	return f.doc.ImageDPI(0, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
