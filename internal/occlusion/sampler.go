package occlusion

import (
	"errors"
	"image"
)

// ErrRegionUnavailable is returned by a PixelSampler that cannot serve the
// requested region.
var ErrRegionUnavailable = errors.New("occlusion: pixel region unavailable")

// PixelSampler provides read access to the rasterised frame, scoped to a
// bounding box. The returned image must not be modified by the caller and
// may extend beyond the requested rectangle.
type PixelSampler interface {
	Region(r image.Rectangle) (image.Image, error)
}

// ImageSampler adapts an image.Image to PixelSampler.
type ImageSampler struct {
	Image image.Image
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Region returns the part of the image overlapping r. Images that support
// SubImage are cropped without copying.
func (s ImageSampler) Region(r image.Rectangle) (image.Image, error) {
	if s.Image == nil {
		return nil, ErrRegionUnavailable
	}
	clipped := r.Intersect(s.Image.Bounds())
	if clipped.Empty() {
		return nil, ErrRegionUnavailable
	}
	if si, ok := s.Image.(subImager); ok {
		return si.SubImage(clipped), nil
	}
	return s.Image, nil
}

// SamplerFunc adapts an ordinary function to PixelSampler.
type SamplerFunc func(r image.Rectangle) (image.Image, error)

// Region calls f(r).
func (f SamplerFunc) Region(r image.Rectangle) (image.Image, error) {
	return f(r)
}
