package arena

import (
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/banshee-data/shieldball/internal/config"
	"github.com/banshee-data/shieldball/internal/motion"
	"github.com/banshee-data/shieldball/internal/occlusion"
)

// Background is the raster colour of open ground.
var Background = color.RGBA{R: 0xf4, G: 0xf1, B: 0xe8, A: 0xff}

// NewSessionFromTuning builds a complete session from a tuning config: a
// random barrier layout drawn from rng, a raster sized to the lattice, and
// a ball starting at the lattice centre.
func NewSessionFromTuning(tc *config.TuningConfig, clock Clock, rng *rand.Rand) (*Session, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	lc := LatticeConfigFromTuning(tc)
	lattice, err := NewLattice(lc, RandomBarriers(lc.Rows, lc.Cols, tc.GetBarrierDensity(), rng))
	if err != nil {
		return nil, fmt.Errorf("lattice: %w", err)
	}

	occCfg := occlusion.ConfigFromTuning(tc)
	if err := occCfg.Validate(); err != nil {
		return nil, fmt.Errorf("occlusion config: %w", err)
	}
	motCfg := motion.ConfigFromTuning(tc)
	if err := motCfg.Validate(); err != nil {
		return nil, fmt.Errorf("motion config: %w", err)
	}

	w, h := lc.Extent()
	raster := NewRaster(w, h, Background, occCfg.BarrierColor)
	ctrl := motion.NewController(motCfg, lattice.center(), rng)
	return NewSession(SessionConfigFromTuning(tc), clock, lattice, raster, ctrl, occlusion.NewClassifier(occCfg))
}
