package blockart

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes any registered raster format. The header is read first
// so images above maxPixels are rejected before their pixels are allocated.
func DecodeImage(r io.Reader, maxPixels int) (image.Image, error) {
	const op = "DecodeImage"
	var header bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, WrapError(KindInvalidImage, op, err, "read image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, NewError(KindInvalidImage, op, "%s image has empty bounds %dx%d", format, cfg.Width, cfg.Height)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, NewError(KindInvalidImage, op, "%s image %dx%d exceeds %d pixels", format, cfg.Width, cfg.Height, maxPixels)
	}
	img, _, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return nil, WrapError(KindInvalidImage, op, err, "decode %s image", format)
	}
	return img, nil
}
