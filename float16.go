package main

import "math"

// float64ToFloat16Bits rounds v to the nearest IEEE 754-2008 binary16 value
// (ties to even) and returns its bit pattern. Out of range magnitudes become
// infinities; NaN stays NaN.
func float64ToFloat16Bits(v float64) uint16 {
	bits := math.Float64bits(v)
	sign := uint16(bits>>48) & 0x8000
	exp := int((bits >> 52) & 0x7ff)
	mant := bits & (1<<52 - 1)

	if exp == 0x7ff {
		if mant == 0 {
			return sign | 0x7c00
		}
		return sign | 0x7e00
	}

	e := exp - 1023 + 15
	if e >= 0x1f {
		return sign | 0x7c00
	}
	if e <= 0 {
		if e < -10 {
			return sign
		}
		// Subnormal half: shift the full significand, implicit bit included.
		full := mant | 1<<52
		shift := uint(43 - e)
		half := full >> shift
		if roundUp(full, shift, half) {
			half++
		}
		return sign | uint16(half)
	}

	half := uint64(e)<<10 | mant>>42
	if roundUp(mant, 42, half) {
		// A carry out of the mantissa bumps the exponent, up to infinity.
		half++
	}
	return sign | uint16(half)
}

// roundUp reports whether dropping the low shift bits of v should round the
// kept value up under round-half-to-even.
func roundUp(v uint64, shift uint, kept uint64) bool {
	rem := v & (1<<shift - 1)
	halfway := uint64(1) << (shift - 1)
	return rem > halfway || (rem == halfway && kept&1 == 1)
}

// float16BitsToFloat64 expands a binary16 bit pattern.
func float16BitsToFloat64(h uint16) float64 {
	sign := 1.0
	if h&0x8000 != 0 {
		sign = -1
	}
	exp := int(h>>10) & 0x1f
	mant := float64(h & 0x3ff)
	switch exp {
	case 0:
		return sign * math.Ldexp(mant, -24)
	case 0x1f:
		if mant == 0 {
			return math.Inf(int(sign))
		}
		return math.NaN()
	default:
		return sign * math.Ldexp(1+mant/1024, exp-15)
	}
}
