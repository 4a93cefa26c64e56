package postprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// CropAndCenter crops to the bounding box of non-transparent pixels, then
// scales the crop to fillRatio of the canvas and centers it.
func CropAndCenter(img *image.NRGBA, width, height int, fillRatio float64) *image.NRGBA {
	cropped, ok := cropAlpha(img)
	if !ok {
		return image.NewNRGBA(image.Rect(0, 0, width, height))
	}
	return scaleAndCenter(cropped, width, height, fillRatio)
}

// cropAlpha returns the opaque bounding box of img. ok is false for a fully
// transparent image.
func cropAlpha(img *image.NRGBA) (*image.NRGBA, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return nil, false
	}

	cropW := maxX - minX + 1
	cropH := maxY - minY + 1
	cropped := image.NewNRGBA(image.Rect(0, 0, cropW, cropH))
	for y := 0; y < cropH; y++ {
		srcOff := (minY+y)*img.Stride + minX*4
		dstOff := y * cropped.Stride
		copy(cropped.Pix[dstOff:dstOff+cropW*4], img.Pix[srcOff:srcOff+cropW*4])
	}
	return cropped, true
}

func scaleAndCenter(img *image.NRGBA, width, height int, fillRatio float64) *image.NRGBA {
	b := img.Bounds()
	srcW, srcH := float64(b.Dx()), float64(b.Dy())

	scale := math.Min(float64(width)*fillRatio/srcW, float64(height)*fillRatio/srcH)
	newW := max(int(srcW*scale+0.5), 1)
	newH := max(int(srcH*scale+0.5), 1)

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	offX := (width - newW) / 2
	offY := (height - newH) / 2
	dst := image.Rect(offX, offY, offX+newW, offY+newH)
	draw.CatmullRom.Scale(canvas, dst, img, b, draw.Src, nil)
	return canvas
}
