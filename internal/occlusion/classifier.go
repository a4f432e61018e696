package occlusion

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/geom"
	"github.com/banshee-data/shieldball/internal/monitoring"
)

// Classifier fuses the geometric and pixel methods. It keeps only the most
// recent result. A Classifier is not safe for concurrent use.
type Classifier struct {
	cfg    Config
	ring   []r2.Vec // unit-radius sample offsets
	dist   []float64
	latest ClassificationResult
}

// NewClassifier returns a Classifier using cfg.
func NewClassifier(cfg Config) *Classifier {
	n := cfg.SampleCount
	if n <= 0 {
		n = 1
	}
	ring := make([]r2.Vec, n)
	for i := range ring {
		ring[i] = geom.Polar(r2.Vec{}, 2*math.Pi*float64(i)/float64(n), 1)
	}
	return &Classifier{cfg: cfg, ring: ring}
}

// Config returns the classifier configuration.
func (c *Classifier) Config() Config { return c.cfg }

// Latest returns the result of the most recent Classify call.
func (c *Classifier) Latest() ClassificationResult { return c.latest }

// Classify evaluates both methods for pos and returns the fused result.
// The anchor slices and the sampler are only read. A nil sampler leaves the
// pixel method Undetermined.
func (c *Classifier) Classify(pos r2.Vec, exposed, shielded []r2.Vec, sampler PixelSampler) ClassificationResult {
	res := ClassificationResult{
		Math:  c.classifyGeometric(pos, exposed, shielded),
		Pixel: c.classifyPixels(pos, sampler),
	}
	res.Final = fuse(res.Math, res.Pixel)
	c.latest = res
	return res
}

func (c *Classifier) classifyGeometric(pos r2.Vec, exposed, shielded []r2.Vec) State {
	if c.minDistance(pos, exposed) < c.cfg.ExposedMargin {
		return Exposed
	}
	if c.minDistance(pos, shielded) < c.cfg.ShieldedMargin {
		return Shielded
	}
	return Undetermined
}

// minDistance returns the distance from pos to the nearest point, or +Inf
// for an empty set.
func (c *Classifier) minDistance(pos r2.Vec, pts []r2.Vec) float64 {
	if len(pts) == 0 {
		return math.Inf(1)
	}
	c.dist = c.dist[:0]
	for _, p := range pts {
		c.dist = append(c.dist, geom.Dist(pos, p))
	}
	return floats.Min(c.dist)
}

// ringBounds returns the pixel rectangle covering every ring sample.
func (c *Classifier) ringBounds(pos r2.Vec) image.Rectangle {
	r := c.cfg.SampleRadius
	return image.Rect(
		int(math.Floor(pos.X-r)), int(math.Floor(pos.Y-r)),
		int(math.Floor(pos.X+r))+1, int(math.Floor(pos.Y+r))+1,
	)
}

func (c *Classifier) classifyPixels(pos r2.Vec, sampler PixelSampler) (state State) {
	if sampler == nil {
		return Undetermined
	}
	defer func() {
		if r := recover(); r != nil {
			monitoring.Recoverablef("pixel", "sampling at (%.1f, %.1f) panicked: %v", pos.X, pos.Y, r)
			state = Undetermined
		}
	}()

	img, err := sampler.Region(c.ringBounds(pos))
	if err != nil {
		monitoring.Recoverablef("pixel", "region at (%.1f, %.1f): %v", pos.X, pos.Y, err)
		return Undetermined
	}
	if img == nil {
		monitoring.Recoverablef("pixel", "region at (%.1f, %.1f): nil image", pos.X, pos.Y)
		return Undetermined
	}

	bounds := img.Bounds()
	sampled, matched := 0, 0
	for _, u := range c.ring {
		p := r2.Add(pos, r2.Scale(c.cfg.SampleRadius, u))
		pt := image.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y)))
		if !pt.In(bounds) {
			continue
		}
		sampled++
		if c.matchesBarrier(img, pt) {
			matched++
		}
	}
	if sampled == 0 {
		monitoring.Recoverablef("pixel", "no ring samples inside region at (%.1f, %.1f)", pos.X, pos.Y)
		return Undetermined
	}
	if float64(matched)/float64(sampled) > c.cfg.ShieldedRatio {
		return Shielded
	}
	return Exposed
}

func (c *Classifier) matchesBarrier(img image.Image, pt image.Point) bool {
	r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
	want := c.cfg.BarrierColor
	tol := c.cfg.ColorTolerance
	return within(r>>8, want.R, tol) && within(g>>8, want.G, tol) && within(b>>8, want.B, tol)
}

func within(got uint32, want uint8, tol int) bool {
	d := int(got) - int(want)
	if d < 0 {
		d = -d
	}
	return d <= tol
}
