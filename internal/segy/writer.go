package segy

import (
	"bufio"
	"fmt"
	"os"
)

// Spec describes a file to create.
type Spec struct {
	RawText []byte // 3200 EBCDIC bytes; nil for a blank header
	RawBin  []byte // 400 bytes to start from; nil for zeros
	Samples int
	Format  int
	Dt      int // microseconds; 0 keeps the RawBin value
}

// Writer appends traces to a new SEG-Y file.
type Writer struct {
	f       *os.File
	w       *bufio.Writer
	samples int
	format  int
	dt      int
	written int
}

// Create writes the file headers and returns a Writer for the traces.
func Create(path string, spec Spec) (*Writer, error) {
	if FormatWidth(spec.Format) == 0 {
		return nil, fmt.Errorf("%w: code %d", ErrFormat, spec.Format)
	}
	if spec.Samples <= 0 {
		return nil, fmt.Errorf("segy: spec samples = %d", spec.Samples)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)

	text := spec.RawText
	if text == nil {
		text, err = EncodeText("")
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	if _, err := w.Write(text[:TextHeaderSize]); err != nil {
		f.Close()
		return nil, err
	}

	bin := make([]byte, BinHeaderSize)
	if spec.RawBin != nil {
		copy(bin, spec.RawBin)
	}
	hdr := decodeBinHeader(bin)
	hdr.Samples = spec.Samples
	hdr.Format = spec.Format
	if spec.Dt != 0 {
		hdr.Interval = spec.Dt
	}
	encodeBinHeader(bin, hdr)
	if _, err := w.Write(bin); err != nil {
		f.Close()
		return nil, err
	}

	return &Writer{f: f, w: w, samples: spec.Samples, format: spec.Format, dt: hdr.Interval}, nil
}

// WriteTrace appends one trace. rawHeader may be nil for a zero header;
// the header's sample count and interval are forced to the spec values.
func (w *Writer) WriteTrace(rawHeader []byte, samples []float64) error {
	if len(samples) != w.samples {
		return fmt.Errorf("segy: trace has %d samples, spec says %d", len(samples), w.samples)
	}

	hdr := make([]byte, TraceHeaderSize)
	if rawHeader != nil {
		copy(hdr, rawHeader)
	}
	h := DecodeTraceHeader(hdr)
	h.NSamples = w.samples
	if w.dt != 0 {
		h.Dt = w.dt
	}
	if h.TraceSeq == 0 {
		h.TraceSeq = int32(w.written + 1)
	}
	EncodeTraceHeader(hdr, h)

	if _, err := w.w.Write(hdr); err != nil {
		return err
	}
	payload, err := EncodeSamples(samples, w.format)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(payload); err != nil {
		return err
	}
	w.written++
	return nil
}

// Written returns the number of traces written so far.
func (w *Writer) Written() int { return w.written }

func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
