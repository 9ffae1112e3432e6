package media

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"

	"github.com/disintegration/imaging"
)

// raster resizes a still image into a temp file with extension ext; the
// extension picks the encoder.
func (g *Generator) raster(path, ext string) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %w", ErrUnsupportedMediaType, path, err)
	}

	thumb := imaging.Fit(img, g.size(), g.size(), imaging.Lanczos)

	out, err := g.tempFile(ext)
	if err != nil {
		return "", err
	}

	err = imaging.Save(thumb, out)
	if err != nil {
		_ = os.Remove(out)

		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	return out, nil
}

// animated resizes every frame of a GIF. Frames are composited onto a full
// canvas first (honouring disposal) so the output frames are self-contained.
func (g *Generator) animated(ctx context.Context, path string) (string, error) {
	src, err := decodeGIF(path)
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %w", ErrUnsupportedMediaType, path, err)
	}

	if len(src.Image) <= 1 {
		return g.raster(path, ".gif")
	}

	width, height := src.Config.Width, src.Config.Height
	if width == 0 || height == 0 {
		b := src.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	out := &gif.GIF{LoopCount: src.LoopCount}

	for i, frame := range src.Image {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var disposal byte
		if i < len(src.Disposal) {
			disposal = src.Disposal[i]
		}

		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = imaging.Clone(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		resized := imaging.Fit(canvas, g.size(), g.size(), imaging.Lanczos)
		paletted := image.NewPaletted(resized.Bounds(), frame.Palette)
		draw.FloydSteinberg.Draw(paletted, paletted.Bounds(), resized, image.Point{})

		delay := 0
		if i < len(src.Delay) {
			delay = src.Delay[i]
		}

		out.Image = append(out.Image, paletted)
		out.Delay = append(out.Delay, delay)
		out.Disposal = append(out.Disposal, gif.DisposalNone)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	name, err := g.tempFile(".gif")
	if err != nil {
		return "", err
	}

	err = encodeGIF(name, out)
	if err != nil {
		_ = os.Remove(name)

		return "", err
	}

	return name, nil
}

func decodeGIF(path string) (*gif.GIF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return gif.DecodeAll(f)
}

func encodeGIF(path string, g *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif thumbnail: %w", err)
	}

	err = gif.EncodeAll(f, g)
	if err != nil {
		_ = f.Close()

		return fmt.Errorf("encode gif thumbnail: %w", err)
	}

	return f.Close()
}
