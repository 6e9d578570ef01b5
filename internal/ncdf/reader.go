package ncdf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Open reads a whole classic NetCDF file into memory.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

type reader struct {
	r      *bufio.Reader
	offset int64
}

func (r *reader) read(buf []byte) error {
	n, err := io.ReadFull(r.r, buf)
	r.offset += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}

func (r *reader) u32() (uint32, error) {
	var b [4]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) i64() (int64, error) {
	var b [8]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

// name reads a length-prefixed, 4-byte padded string.
func (r *reader) name() (string, error) {
	n, err := r.i32()
	if err != nil {
		return "", err
	}
	if n < 0 || n > 1<<20 {
		return "", ErrCorrupt
	}
	buf := make([]byte, pad4(int64(n)))
	if err := r.read(buf); err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// Read parses a classic NetCDF stream. The stream must support reading
// to the end; record variables require the data section in file order.
func Read(src io.Reader) (*File, error) {
	r := &reader{r: bufio.NewReader(src)}

	var magic [4]byte
	if err := r.read(magic[:]); err != nil {
		return nil, err
	}
	if magic[0] != 'C' || magic[1] != 'D' || magic[2] != 'F' {
		if magic[0] == 0x89 { // HDF5 signature
			return nil, ErrUnsupported
		}
		return nil, ErrUnsupported
	}
	version := magic[3]
	if version != 1 && version != 2 {
		return nil, ErrUnsupported
	}

	numrecsRaw, err := r.u32()
	if err != nil {
		return nil, err
	}
	numrecs := int(int32(numrecsRaw))

	f := &File{}

	// Dimensions.
	if err := r.readDims(f); err != nil {
		return nil, err
	}
	// Global attributes.
	if f.Attrs, err = r.readAttrs(); err != nil {
		return nil, err
	}
	// Variables.
	if err := r.readVars(f, version); err != nil {
		return nil, err
	}

	for i := range f.Dims {
		if f.Dims[i].Unlimited {
			if numrecs < 0 {
				return nil, fmt.Errorf("%w: streaming record count", ErrUnsupported)
			}
			f.Dims[i].Len = numrecs
		}
	}

	if err := r.readData(f, numrecs); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *reader) readDims(f *File) error {
	tag, err := r.i32()
	if err != nil {
		return err
	}
	count, err := r.i32()
	if err != nil {
		return err
	}
	if tag == 0 && count == 0 {
		return nil
	}
	if tag != tagDimension {
		return ErrCorrupt
	}
	for i := int32(0); i < count; i++ {
		name, err := r.name()
		if err != nil {
			return err
		}
		length, err := r.i32()
		if err != nil {
			return err
		}
		f.Dims = append(f.Dims, Dim{Name: name, Len: int(length), Unlimited: length == 0})
	}
	return nil
}

func (r *reader) readAttrs() ([]Attr, error) {
	tag, err := r.i32()
	if err != nil {
		return nil, err
	}
	count, err := r.i32()
	if err != nil {
		return nil, err
	}
	if tag == 0 && count == 0 {
		return nil, nil
	}
	if tag != tagAttribute {
		return nil, ErrCorrupt
	}
	var attrs []Attr
	for i := int32(0); i < count; i++ {
		name, err := r.name()
		if err != nil {
			return nil, err
		}
		typ, err := r.i32()
		if err != nil {
			return nil, err
		}
		nelems, err := r.i32()
		if err != nil {
			return nil, err
		}
		a := Attr{Name: name, Type: Type(typ)}
		size := int64(nelems) * int64(a.Type.Size())
		buf := make([]byte, pad4(size))
		if err := r.read(buf); err != nil {
			return nil, err
		}
		if a.Type == Char {
			a.Str = string(buf[:size])
		} else {
			a.Nums = decode(buf[:size], a.Type, int(nelems))
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func (r *reader) readVars(f *File, version byte) error {
	tag, err := r.i32()
	if err != nil {
		return err
	}
	count, err := r.i32()
	if err != nil {
		return err
	}
	if tag == 0 && count == 0 {
		return nil
	}
	if tag != tagVariable {
		return ErrCorrupt
	}
	for i := int32(0); i < count; i++ {
		var v Var
		if v.Name, err = r.name(); err != nil {
			return err
		}
		ndims, err := r.i32()
		if err != nil {
			return err
		}
		for d := int32(0); d < ndims; d++ {
			id, err := r.i32()
			if err != nil {
				return err
			}
			if int(id) < 0 || int(id) >= len(f.Dims) {
				return ErrCorrupt
			}
			v.Dims = append(v.Dims, int(id))
		}
		if v.Attrs, err = r.readAttrs(); err != nil {
			return err
		}
		typ, err := r.i32()
		if err != nil {
			return err
		}
		v.Type = Type(typ)
		if v.Type.Size() == 0 {
			return fmt.Errorf("%w: variable %s has type %d", ErrCorrupt, v.Name, typ)
		}
		vsize, err := r.u32()
		if err != nil {
			return err
		}
		v.vsize = int64(vsize)
		if version == 2 {
			v.begin, err = r.i64()
		} else {
			var b int32
			b, err = r.i32()
			v.begin = int64(b)
		}
		if err != nil {
			return err
		}
		f.Vars = append(f.Vars, v)
	}
	return nil
}

// readData walks the data section sequentially. Variables are stored in
// begin order: all fixed variables, then the interleaved records.
func (r *reader) readData(f *File, numrecs int) error {
	// Fixed variables in begin order (header order matches file order
	// for files we accept; skip gaps).
	type slot struct {
		v     *Var
		rec   bool
		elems int64
	}
	var fixed, record []slot
	for i := range f.Vars {
		v := &f.Vars[i]
		s := slot{v: v, rec: f.isRecord(v), elems: f.fixedElems(v)}
		if s.rec {
			record = append(record, s)
		} else {
			fixed = append(fixed, s)
		}
	}

	skipTo := func(off int64) error {
		if off < r.offset {
			return ErrCorrupt
		}
		for r.offset < off {
			chunk := off - r.offset
			if chunk > 4096 {
				chunk = 4096
			}
			buf := make([]byte, chunk)
			if err := r.read(buf); err != nil {
				return err
			}
		}
		return nil
	}

	for _, s := range fixed {
		if err := skipTo(s.v.begin); err != nil {
			return err
		}
		buf := make([]byte, s.elems*int64(s.v.Type.Size()))
		if err := r.read(buf); err != nil {
			return err
		}
		storeData(s.v, buf, int(s.elems))
	}

	if len(record) == 0 || numrecs <= 0 {
		return nil
	}

	// Records interleave at a fixed stride; trust the header vsize.
	var stride int64
	base := record[0].v.begin
	for _, s := range record {
		stride += s.v.vsize
	}
	for _, s := range record {
		if s.v.Type != Char {
			s.v.Data = make([]float64, 0, s.elems*int64(numrecs))
		}
	}
	for rec := 0; rec < numrecs; rec++ {
		for _, s := range record {
			off := base + int64(rec)*stride + (s.v.begin - base)
			if err := skipTo(off); err != nil {
				return err
			}
			buf := make([]byte, s.elems*int64(s.v.Type.Size()))
			if err := r.read(buf); err != nil {
				return err
			}
			if s.v.Type == Char {
				s.v.Text += string(buf)
			} else {
				s.v.Data = append(s.v.Data, decode(buf, s.v.Type, int(s.elems))...)
			}
		}
	}
	return nil
}

func storeData(v *Var, buf []byte, elems int) {
	if v.Type == Char {
		v.Text = string(buf)
		return
	}
	v.Data = decode(buf, v.Type, elems)
}

func decode(buf []byte, t Type, elems int) []float64 {
	out := make([]float64, elems)
	switch t {
	case Byte:
		for i := 0; i < elems; i++ {
			out[i] = float64(int8(buf[i]))
		}
	case Short:
		for i := 0; i < elems; i++ {
			out[i] = float64(int16(binary.BigEndian.Uint16(buf[2*i:])))
		}
	case Int:
		for i := 0; i < elems; i++ {
			out[i] = float64(int32(binary.BigEndian.Uint32(buf[4*i:])))
		}
	case Float:
		for i := 0; i < elems; i++ {
			out[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(buf[4*i:])))
		}
	case Double:
		for i := 0; i < elems; i++ {
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[8*i:]))
		}
	}
	return out
}
