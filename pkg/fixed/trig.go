package fixed

import "math"

// sineTableSize is the number of samples covering one full period.
// The table is indexed by normalized phase: index = fract(x/2pi) * size.
const sineTableSize = 1024

var sineTable [sineTableSize]Fixed

func init() {
	for i := range sineTable {
		sineTable[i] = FromFloat(math.Sin(2 * math.Pi * float64(i) / sineTableSize))
	}
}

// TwoPi is the fixed-point encoding of 2*pi.
var TwoPi = FromFloat(2 * math.Pi)

// Sin returns sin(x) for x in radians, via table lookup.
func Sin(x Fixed) Fixed {
	phase := x.Div(TwoPi).Fract()
	idx := int(phase.Mul(FromInt(sineTableSize)) >> shift)
	return sineTable[idx&(sineTableSize-1)]
}

// Cos is the sine table read a quarter phase ahead.
func Cos(x Fixed) Fixed {
	phase := x.Div(TwoPi).Fract()
	idx := int(phase.Mul(FromInt(sineTableSize))>>shift) + sineTableSize/4
	return sineTable[idx&(sineTableSize-1)]
}

// Tan returns sin(x)/cos(x). Near the poles the cosine underflows the
// fixed-point grid to zero; Tan saturates there rather than divide by zero.
func Tan(x Fixed) Fixed {
	c := Cos(x)
	if c == 0 {
		if Sin(x) >= 0 {
			return Fixed(math.MaxInt32)
		}
		return Fixed(math.MinInt32)
	}
	return Sin(x).Div(c)
}

// noiseOctaves is the octave count used by Noise1 and Noise2. Each octave
// doubles the frequency and halves the amplitude of the shared sine table.
const noiseOctaves = 4

// noise1 is one band of value noise: two incommensurate sine reads blended
// so the result does not look periodic over a LED strip.
func noise1(x Fixed) Fixed {
	a := Sin(x)
	b := Sin(x.Mul(FromFloat(1.618)) + FromFloat(2.357))
	return a.Mul(Half) + b.Mul(Half)
}

// Noise1 returns Perlin-style octave noise for a scalar input, in [-1, 1].
func Noise1(x Fixed) Fixed {
	var sum, amp Fixed
	freq := One
	scale := One
	for i := 0; i < noiseOctaves; i++ {
		sum += noise1(x.Mul(freq)).Mul(scale)
		amp += scale
		freq <<= 1
		scale >>= 1
	}
	return sum.Div(amp)
}

// Noise2 returns Perlin-style octave noise for a 2-D input, in [-1, 1].
func Noise2(x, y Fixed) Fixed {
	var sum, amp Fixed
	freq := One
	scale := One
	for i := 0; i < noiseOctaves; i++ {
		band := noise1(x.Mul(freq) + Sin(y.Mul(freq)).Mul(FromFloat(3.1)))
		sum += band.Mul(scale)
		amp += scale
		freq <<= 1
		scale >>= 1
	}
	return sum.Div(amp)
}
