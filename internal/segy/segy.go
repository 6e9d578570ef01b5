// Package segy reads and writes a SEG-Y rev1 subset: EBCDIC textual
// header, 400-byte binary header and fixed-length traces in IBM float,
// IEEE float and integer sample formats.
package segy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
)

const (
	TextHeaderSize  = 3200
	BinHeaderSize   = 400
	TraceHeaderSize = 240
	textCards       = 40
	textCardWidth   = 80
)

// Binary header field offsets, 0-based within the 400-byte header
// (the standard documents them 1-based from byte 3201).
const (
	binInterval = 16 // sample interval in microseconds, int16
	binSamples  = 20 // samples per trace, int16
	binFormat   = 24 // sample format code, int16
	binEnsemble = 12 // traces per ensemble, int16
	binSorting  = 28 // trace sorting code, int16
)

// Trace header field offsets, 0-based within the 240-byte header.
const (
	hdrTracl    = 0   // trace sequence number, int32
	hdrOffset   = 36  // source-receiver offset, int32
	hdrScalar   = 70  // coordinate scalar, int16
	hdrNSamples = 114 // samples in this trace, int16
	hdrDt       = 116 // sample interval, int16
	hdrCDPX     = 180 // CDP X coordinate, int32
	hdrCDPY     = 184 // CDP Y coordinate, int32
	hdrInline   = 188 // 3D inline number, int32
	hdrXline    = 192 // 3D crossline number, int32
)

var (
	// ErrTruncated indicates the file size is inconsistent with its headers.
	ErrTruncated = errors.New("segy: file truncated (size inconsistent with trace length)")

	// ErrFormat indicates an unsupported sample format code.
	ErrFormat = errors.New("segy: unsupported sample format")

	// ErrRange indicates a trace index outside the file.
	ErrRange = errors.New("segy: trace index out of range")
)

// FormatWidth returns the bytes per sample of a format code, or 0.
func FormatWidth(code int) int {
	switch code {
	case 1, 2, 5:
		return 4
	case 3:
		return 2
	case 8:
		return 1
	}
	return 0
}

// FormatName returns a human-readable name for a format code.
func FormatName(code int) string {
	switch code {
	case 1:
		return "IBM 4-byte float"
	case 2:
		return "4-byte signed integer"
	case 3:
		return "2-byte signed integer"
	case 5:
		return "IEEE 4-byte float"
	case 8:
		return "1-byte signed integer"
	}
	return "Unknown"
}

// BinHeader is the decoded subset of the binary file header.
type BinHeader struct {
	Interval       int // sample interval, microseconds
	Samples        int // samples per trace
	Format         int // sample format code
	EnsembleTraces int
	Sorting        int
}

// TraceHeader is the decoded subset of a 240-byte trace header.
type TraceHeader struct {
	TraceSeq int32
	Offset   int32
	Scalar   int16
	NSamples int
	Dt       int // microseconds
	CDPX     int32
	CDPY     int32
	Inline   int32
	Xline    int32
}

// Reader provides random access to traces of an open SEG-Y file.
type Reader struct {
	r          io.ReadSeekCloser
	Text       string
	RawText    []byte // 3200 EBCDIC bytes as stored
	Bin        BinHeader
	RawBin     []byte // 400 bytes as stored
	TraceCount int
	traceSize  int64
}

// Open opens a SEG-Y file and reads its file headers. The trace count is
// derived from the file size and validated against the trace length.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewReader reads the file headers from an open seekable stream.
func NewReader(f io.ReadSeekCloser) (*Reader, error) {
	r := &Reader{r: f}

	r.RawText = make([]byte, TextHeaderSize)
	if _, err := io.ReadFull(f, r.RawText); err != nil {
		return nil, fmt.Errorf("segy: read text header: %w", err)
	}
	text, err := DecodeText(r.RawText)
	if err != nil {
		return nil, err
	}
	r.Text = text

	r.RawBin = make([]byte, BinHeaderSize)
	if _, err := io.ReadFull(f, r.RawBin); err != nil {
		return nil, fmt.Errorf("segy: read binary header: %w", err)
	}
	r.Bin = decodeBinHeader(r.RawBin)

	width := FormatWidth(r.Bin.Format)
	if width == 0 {
		return nil, fmt.Errorf("%w: code %d", ErrFormat, r.Bin.Format)
	}
	if r.Bin.Samples <= 0 {
		return nil, fmt.Errorf("segy: binary header samples = %d", r.Bin.Samples)
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	dataBytes := size - TextHeaderSize - BinHeaderSize
	r.traceSize = int64(TraceHeaderSize + r.Bin.Samples*width)
	if dataBytes < 0 || dataBytes%r.traceSize != 0 {
		return nil, ErrTruncated
	}
	r.TraceCount = int(dataBytes / r.traceSize)

	return r, nil
}

func (r *Reader) Close() error { return r.r.Close() }

// ReadRawHeader returns the raw 240 header bytes of trace i.
func (r *Reader) ReadRawHeader(i int) ([]byte, error) {
	if i < 0 || i >= r.TraceCount {
		return nil, ErrRange
	}
	buf := make([]byte, TraceHeaderSize)
	off := int64(TextHeaderSize+BinHeaderSize) + int64(i)*r.traceSize
	if _, err := r.r.Seek(off, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadHeader returns the decoded header of trace i.
func (r *Reader) ReadHeader(i int) (*TraceHeader, error) {
	raw, err := r.ReadRawHeader(i)
	if err != nil {
		return nil, err
	}
	h := DecodeTraceHeader(raw)
	return &h, nil
}

// ReadTrace returns the samples of trace i decoded to float64.
func (r *Reader) ReadTrace(i int) ([]float64, error) {
	if i < 0 || i >= r.TraceCount {
		return nil, ErrRange
	}
	width := FormatWidth(r.Bin.Format)
	buf := make([]byte, r.Bin.Samples*width)
	off := int64(TextHeaderSize+BinHeaderSize) + int64(i)*r.traceSize + TraceHeaderSize
	if _, err := r.r.Seek(off, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return DecodeSamples(buf, r.Bin.Format)
}

// DecodeTraceHeader decodes the subset of fields this package handles.
func DecodeTraceHeader(raw []byte) TraceHeader {
	return TraceHeader{
		TraceSeq: int32(binary.BigEndian.Uint32(raw[hdrTracl:])),
		Offset:   int32(binary.BigEndian.Uint32(raw[hdrOffset:])),
		Scalar:   int16(binary.BigEndian.Uint16(raw[hdrScalar:])),
		NSamples: int(int16(binary.BigEndian.Uint16(raw[hdrNSamples:]))),
		Dt:       int(int16(binary.BigEndian.Uint16(raw[hdrDt:]))),
		CDPX:     int32(binary.BigEndian.Uint32(raw[hdrCDPX:])),
		CDPY:     int32(binary.BigEndian.Uint32(raw[hdrCDPY:])),
		Inline:   int32(binary.BigEndian.Uint32(raw[hdrInline:])),
		Xline:    int32(binary.BigEndian.Uint32(raw[hdrXline:])),
	}
}

// EncodeTraceHeader writes the decoded fields back into raw.
func EncodeTraceHeader(raw []byte, h TraceHeader) {
	binary.BigEndian.PutUint32(raw[hdrTracl:], uint32(h.TraceSeq))
	binary.BigEndian.PutUint32(raw[hdrOffset:], uint32(h.Offset))
	binary.BigEndian.PutUint16(raw[hdrScalar:], uint16(h.Scalar))
	binary.BigEndian.PutUint16(raw[hdrNSamples:], uint16(h.NSamples))
	binary.BigEndian.PutUint16(raw[hdrDt:], uint16(h.Dt))
	binary.BigEndian.PutUint32(raw[hdrCDPX:], uint32(h.CDPX))
	binary.BigEndian.PutUint32(raw[hdrCDPY:], uint32(h.CDPY))
	binary.BigEndian.PutUint32(raw[hdrInline:], uint32(h.Inline))
	binary.BigEndian.PutUint32(raw[hdrXline:], uint32(h.Xline))
}

func decodeBinHeader(raw []byte) BinHeader {
	return BinHeader{
		Interval:       int(int16(binary.BigEndian.Uint16(raw[binInterval:]))),
		Samples:        int(int16(binary.BigEndian.Uint16(raw[binSamples:]))),
		Format:         int(int16(binary.BigEndian.Uint16(raw[binFormat:]))),
		EnsembleTraces: int(int16(binary.BigEndian.Uint16(raw[binEnsemble:]))),
		Sorting:        int(int16(binary.BigEndian.Uint16(raw[binSorting:]))),
	}
}

func encodeBinHeader(raw []byte, b BinHeader) {
	binary.BigEndian.PutUint16(raw[binInterval:], uint16(b.Interval))
	binary.BigEndian.PutUint16(raw[binSamples:], uint16(b.Samples))
	binary.BigEndian.PutUint16(raw[binFormat:], uint16(b.Format))
	binary.BigEndian.PutUint16(raw[binEnsemble:], uint16(b.EnsembleTraces))
	binary.BigEndian.PutUint16(raw[binSorting:], uint16(b.Sorting))
}

// DecodeText converts a 3200-byte EBCDIC (code page 037) header into
// forty 80-column card-image lines.
func DecodeText(raw []byte) (string, error) {
	decoded, err := charmap.CodePage037.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("segy: decode text header: %w", err)
	}
	out := make([]byte, 0, TextHeaderSize+textCards)
	for i := 0; i < textCards; i++ {
		out = append(out, decoded[i*textCardWidth:(i+1)*textCardWidth]...)
		out = append(out, '\n')
	}
	return string(out), nil
}

// EncodeText converts newline-separated card lines into 3200 EBCDIC
// bytes, padding or clipping each card to 80 columns.
func EncodeText(text string) ([]byte, error) {
	ascii := make([]byte, TextHeaderSize)
	for i := range ascii {
		ascii[i] = ' '
	}
	line, col := 0, 0
	for i := 0; i < len(text) && line < textCards; i++ {
		if text[i] == '\n' {
			line++
			col = 0
			continue
		}
		if col < textCardWidth {
			ascii[line*textCardWidth+col] = text[i]
			col++
		}
	}
	encoded, err := charmap.CodePage037.NewEncoder().Bytes(ascii)
	if err != nil {
		return nil, fmt.Errorf("segy: encode text header: %w", err)
	}
	return encoded, nil
}
