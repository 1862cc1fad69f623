package limits

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Watermarker stamps rendered PDFs with a configured watermark image. Each
// distinct image path is read from disk once per process — repeat calls
// against the same path reuse the cached bytes rather than re-reading the
// file. The image is decoded again on every Apply.
type Watermarker struct {
	mu    sync.Mutex
	cache map[string][]byte
}

// NewWatermarker returns an empty Watermarker ready for concurrent use.
func NewWatermarker() *Watermarker {
	return &Watermarker{cache: make(map[string][]byte)}
}

// Apply stamps every page of pdfContent with the image at path,
// centred at the top of the page and moved down by top points. An empty path returns
// pdfContent unmodified — watermarking is opt-in per whether a path is
// configured, with no separate enable switch.
func (w *Watermarker) Apply(pdfContent []byte, path string, top float64) ([]byte, error) {
	if path == "" {
		return pdfContent, nil
	}

	imgData, err := w.loadImage(path)
	if err != nil {
		return nil, fmt.Errorf("loading watermark image %q: %w", path, err)
	}

	description := fmt.Sprintf("scale:0.5, pos:tc, offset:0 -%f", top)
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(imgData), description, true, false, model.POINTS)
	if err != nil {
		return nil, fmt.Errorf("building watermark descriptor: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdfContent), &out, nil, wm, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("applying watermark: %w", err)
	}
	return out.Bytes(), nil
}

// loadImage returns path's bytes, reading from disk only the first time a
// given path is requested.
func (w *Watermarker) loadImage(path string) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if data, ok := w.cache[path]; ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w.cache[path] = data
	return data, nil
}
