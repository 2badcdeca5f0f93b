package l1segment

import "math"

// RGBToHLS converts an 8-bit RGB pixel to 8-bit HLS using the OpenCV
// convention: H in [0, 180), L and S in [0, 255].
func RGBToHLS(r, g, b uint8) (h, l, s uint8) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	vmax := math.Max(rf, math.Max(gf, bf))
	vmin := math.Min(rf, math.Min(gf, bf))
	diff := vmax - vmin
	lf := (vmax + vmin) / 2

	var hf, sf float64
	if diff > math.SmallestNonzeroFloat32 {
		if lf < 0.5 {
			sf = diff / (vmax + vmin)
		} else {
			sf = diff / (2 - vmax - vmin)
		}

		switch vmax {
		case rf:
			hf = 60 * (gf - bf) / diff
		case gf:
			hf = 120 + 60*(bf-rf)/diff
		default:
			hf = 240 + 60*(rf-gf)/diff
		}
		if hf < 0 {
			hf += 360
		}
	}

	return saturate(hf / 2), saturate(lf * 255), saturate(sf * 255)
}

// saturate rounds to nearest and clamps to the uint8 range.
func saturate(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
