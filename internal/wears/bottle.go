package wears

// BottleFillFractions spreads the remaining volume over the open bottle and
// its backups, filling the open bottle first. The result has backups+1 entries
// in [0, 1].
func BottleFillFractions(remaining, perUnit float64, backups int) []float64 {
	if backups < 0 {
		backups = 0
	}
	fills := make([]float64, backups+1)
	if perUnit <= 0 {
		return fills
	}
	for i := range fills {
		f := remaining / perUnit
		switch {
		case f > 1:
			f = 1
		case f < 0:
			f = 0
		}
		fills[i] = f
		remaining -= perUnit
	}
	return fills
}

// Default bottle range used to scale the fill glyph.
const (
	DefaultMinVolume = 30.0
	DefaultMaxVolume = 600.0
)

// BottleScale normalises a bottle volume against [minVol, maxVol] for glyph
// sizing. The result is clamped to [0.1, 1].
func BottleScale(volume, minVol, maxVol float64) float64 {
	if maxVol <= minVol {
		minVol, maxVol = DefaultMinVolume, DefaultMaxVolume
	}
	s := (volume - minVol) / (maxVol - minVol)
	if s < 0.1 {
		return 0.1
	}
	if s > 1 {
		return 1
	}
	return s
}
