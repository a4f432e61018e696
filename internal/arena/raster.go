package arena

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/geom"
	"github.com/banshee-data/shieldball/internal/occlusion"
)

// Raster is the frame buffer the pixel classifier samples. Barriers are
// filled in a single flat colour over a flat background.
type Raster struct {
	img        *image.RGBA
	background color.RGBA
	barrier    color.RGBA
}

// NewRaster allocates a w×h buffer.
func NewRaster(w, h int, background, barrier color.RGBA) *Raster {
	r := &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, w, h)),
		background: background,
		barrier:    barrier,
	}
	r.clear()
	return r
}

func (r *Raster) clear() {
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{C: r.background}, image.Point{}, draw.Src)
}

// Draw clears the buffer and fills each polygon. A pixel is filled when
// its centre lies inside the polygon.
func (r *Raster) Draw(polys []*geom.Polygon) {
	r.clear()
	bounds := r.img.Bounds()
	for _, p := range polys {
		box := p.Bounds()
		rect := image.Rect(
			int(math.Floor(box.Min.X)), int(math.Floor(box.Min.Y)),
			int(math.Ceil(box.Max.X))+1, int(math.Ceil(box.Max.Y))+1,
		).Intersect(bounds)
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				if p.ContainsPoint(r2.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5}) {
					r.img.SetRGBA(x, y, r.barrier)
				}
			}
		}
	}
}

// Region implements occlusion.PixelSampler.
func (r *Raster) Region(rect image.Rectangle) (image.Image, error) {
	return occlusion.ImageSampler{Image: r.img}.Region(rect)
}

// Image returns the underlying buffer. Callers must not modify it.
func (r *Raster) Image() *image.RGBA { return r.img }

// Bounds returns the buffer bounds.
func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }
