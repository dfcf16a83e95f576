package resize

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/z1media/bannerpost/pkg/util"
)

// Dimension is a single target banner size.
type Dimension struct {
	Width  int `json:"width" yaml:"width" validate:"required,gt=0"`
	Height int `json:"height" yaml:"height" validate:"required,gt=0"`
}

// Label is the map key used for this dimension in results,
// e.g. "300x250".
func (d Dimension) Label() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Decode parses uploaded image bytes. PNG, JPEG and GIF are accepted.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// RenderAll resizes img to every requested dimension concurrently and
// returns a map from dimension label to a PNG data URI. The join is
// all-or-nothing: if any single resize fails, the whole batch fails
// and no partial results are returned.
func RenderAll(img image.Image, dims []Dimension) (map[string]string, error) {
	results := make([]string, len(dims))
	errs := make([]error, len(dims))

	var wg sync.WaitGroup
	for i, dim := range dims {
		wg.Add(1)
		go func(i int, dim Dimension) {
			defer wg.Done()
			results[i], errs[i] = renderOne(img, dim)
		}(i, dim)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("resizing to %s: %w", dims[i].Label(), err)
		}
	}

	out := make(map[string]string, len(dims))
	for i, dim := range dims {
		out[dim.Label()] = results[i]
	}
	return out, nil
}

func renderOne(img image.Image, dim Dimension) (string, error) {
	resized := Contain(img, dim.Width, dim.Height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	return util.PNGDataURI(buf.Bytes()), nil
}
