package segy

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeSamples converts a raw big-endian sample payload to float64.
func DecodeSamples(raw []byte, format int) ([]float64, error) {
	width := FormatWidth(format)
	if width == 0 {
		return nil, fmt.Errorf("%w: code %d", ErrFormat, format)
	}
	if len(raw)%width != 0 {
		return nil, fmt.Errorf("segy: payload %d bytes not divisible by width %d", len(raw), width)
	}
	n := len(raw) / width
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		chunk := raw[i*width:]
		switch format {
		case 1:
			out[i] = ibmToFloat(binary.BigEndian.Uint32(chunk))
		case 2:
			out[i] = float64(int32(binary.BigEndian.Uint32(chunk)))
		case 3:
			out[i] = float64(int16(binary.BigEndian.Uint16(chunk)))
		case 5:
			out[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(chunk)))
		case 8:
			out[i] = float64(int8(chunk[0]))
		}
	}
	return out, nil
}

// EncodeSamples converts float64 samples into the raw big-endian payload.
func EncodeSamples(samples []float64, format int) ([]byte, error) {
	width := FormatWidth(format)
	if width == 0 {
		return nil, fmt.Errorf("%w: code %d", ErrFormat, format)
	}
	out := make([]byte, len(samples)*width)
	for i, v := range samples {
		chunk := out[i*width:]
		switch format {
		case 1:
			binary.BigEndian.PutUint32(chunk, floatToIBM(v))
		case 2:
			binary.BigEndian.PutUint32(chunk, uint32(int32(v)))
		case 3:
			binary.BigEndian.PutUint16(chunk, uint16(int16(v)))
		case 5:
			binary.BigEndian.PutUint32(chunk, math.Float32bits(float32(v)))
		case 8:
			chunk[0] = byte(int8(v))
		}
	}
	return out, nil
}

// ibmToFloat decodes an IBM System/360 single-precision float:
// sign bit, 7-bit base-16 excess-64 exponent, 24-bit fraction.
func ibmToFloat(bits uint32) float64 {
	if bits == 0 {
		return 0
	}
	sign := 1.0
	if bits&0x80000000 != 0 {
		sign = -1.0
	}
	exp := int((bits >> 24) & 0x7f)
	frac := float64(bits&0x00ffffff) / float64(1<<24)
	return sign * frac * math.Pow(16, float64(exp-64))
}

// floatToIBM encodes a float64 into IBM single precision. Values beyond
// the representable range saturate; zero encodes as zero.
func floatToIBM(v float64) uint32 {
	if v == 0 || math.IsNaN(v) {
		return 0
	}
	var sign uint32
	if v < 0 {
		sign = 0x80000000
		v = -v
	}

	// Normalize the fraction into [1/16, 1).
	exp := 64
	for v >= 1 && exp < 127 {
		v /= 16
		exp++
	}
	for v < 1.0/16 && exp > 0 {
		v *= 16
		exp--
	}
	if exp > 127 {
		exp = 127
		v = 1 - 1.0/(1<<24)
	}

	frac := uint32(v * float64(1<<24))
	if frac > 0x00ffffff {
		frac = 0x00ffffff
	}
	return sign | uint32(exp)<<24 | frac
}
