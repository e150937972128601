// Package simd routes hot block kernels to vectorized implementations.
//
// vek selects AVX-accelerated code at startup when the CPU supports it; the
// wrappers below add a plain scalar path for short blocks, where the SIMD
// call overhead outweighs the win. Effects with per-sample feedback ignore
// this package and stay scalar.
package simd

import (
	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"
)

// Below this length the scalar path is always taken.
const scalarThreshold = 16

var scratch []float32

// Info reports the acceleration mode vek selected at startup.
func Info() vek.SystemInfo {
	return vek.Info()
}

func tmp(n int) []float32 {
	if cap(scratch) < n {
		scratch = make([]float32, n)
	}
	return scratch[:n]
}

// Zero sets every sample of dst to zero.
func Zero(dst []float32) {
	if len(dst) < scalarThreshold {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	vek32.Zeros_Into(dst, len(dst))
}

// Add accumulates src into dst.
func Add(dst, src []float32) {
	if len(dst) < scalarThreshold {
		for i := range dst {
			dst[i] += src[i]
		}
		return
	}
	vek32.Add_Inplace(dst, src)
}

// Scale multiplies dst by gain in place.
func Scale(dst []float32, gain float32) {
	if len(dst) < scalarThreshold {
		for i := range dst {
			dst[i] *= gain
		}
		return
	}
	vek32.MulNumber_Inplace(dst, gain)
}

// Mix accumulates src*gain into dst.
func Mix(dst, src []float32, gain float32) {
	if len(dst) < scalarThreshold {
		for i := range dst {
			dst[i] += src[i] * gain
		}
		return
	}
	t := tmp(len(dst))
	vek32.MulNumber_Into(t, src, gain)
	vek32.Add_Inplace(dst, t)
}

// Peak returns the maximum absolute sample value in buf.
func Peak(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	if len(buf) < scalarThreshold {
		var peak float32
		for _, v := range buf {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
		return peak
	}
	t := tmp(len(buf))
	copy(t, buf)
	vek32.Abs_Inplace(t)
	return vek32.Max(t)
}

// MeanSquare returns the average of buf[i]^2, the block power.
func MeanSquare(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	if len(buf) < scalarThreshold {
		var sum float32
		for _, v := range buf {
			sum += v * v
		}
		return sum / float32(len(buf))
	}
	t := tmp(len(buf))
	vek32.Mul_Into(t, buf, buf)
	return vek32.Mean(t)
}
