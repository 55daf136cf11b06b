package utils

import (
	"math"
)

// Kernel creates a normalized Gaussian kernel for smoothing elevation surfaces.
// stdDev is in meters and is scaled by the mercator scale factor, so the same value
// can be used at any latitude, then converted into pixels using metersPerPixel.
// The kernel goes out 3 standard deviations and sums to 1, so smoothing
// a flat surface leaves it unchanged.
func Kernel(stdDev, mercatorScale, metersPerPixel float64) []float64 {
	if stdDev <= 0 || metersPerPixel <= 0 {
		return []float64{1.0}
	}

	sd := stdDev * mercatorScale / metersPerPixel
	size := int(math.Ceil(sd * 3))
	if size == 0 {
		return []float64{1.0}
	}

	kernel := make([]float64, 2*size+1)

	sum := 0.0
	for i := -size; i <= size; i++ {
		x := float64(i) / sd
		kernel[i+size] = math.Exp(-x * x / 2)
		sum += kernel[i+size]
	}

	for i := range kernel {
		kernel[i] /= sum
	}

	return kernel
}
