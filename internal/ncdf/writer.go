package ncdf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Write stores the dataset as a CDF-1 classic file.
func Write(path string, f *File) error {
	if err := validate(f); err != nil {
		return err
	}

	// Assign vsize and begin offsets.
	numrecs := 0
	var record []*Var
	nRecordVars := 0
	for i := range f.Vars {
		if f.isRecord(&f.Vars[i]) {
			nRecordVars++
		}
	}
	for i := range f.Vars {
		v := &f.Vars[i]
		size := f.fixedElems(v) * int64(v.Type.Size())
		if f.isRecord(v) && nRecordVars == 1 {
			v.vsize = size // single record variable is not padded
		} else {
			v.vsize = pad4(size)
		}
	}

	offset := headerSize(f)
	for i := range f.Vars {
		v := &f.Vars[i]
		if f.isRecord(v) {
			continue
		}
		v.begin = offset
		offset += v.vsize
	}
	for i := range f.Vars {
		v := &f.Vars[i]
		if !f.isRecord(v) {
			continue
		}
		v.begin = offset
		offset += v.vsize
		record = append(record, v)
		numrecs = f.Dims[v.Dims[0]].Len
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w := &writer{w: bufio.NewWriter(out)}

	w.bytes([]byte{'C', 'D', 'F', 1})
	w.i32(int32(numrecs))
	w.writeDims(f)
	w.writeAttrs(f.Attrs)
	w.writeVars(f)

	// Fixed data.
	for i := range f.Vars {
		v := &f.Vars[i]
		if f.isRecord(v) {
			continue
		}
		w.writeValues(v, 0, int(f.fixedElems(v)))
		w.padTo(v.begin + v.vsize)
	}

	// Record data, interleaved.
	var stride int64
	for _, v := range record {
		stride += v.vsize
	}
	for rec := 0; rec < numrecs; rec++ {
		for _, v := range record {
			per := int(f.fixedElems(v))
			w.writeValues(v, rec*per, per)
			w.padTo(v.begin + int64(rec)*stride + v.vsize)
		}
	}

	if w.err != nil {
		out.Close()
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func validate(f *File) error {
	unlimited := -1
	for i, d := range f.Dims {
		if d.Unlimited {
			if unlimited >= 0 {
				return fmt.Errorf("ncdf: multiple unlimited dimensions")
			}
			unlimited = i
		}
	}
	for i := range f.Vars {
		v := &f.Vars[i]
		if v.Type.Size() == 0 {
			return fmt.Errorf("ncdf: variable %s has no type", v.Name)
		}
		for j, d := range v.Dims {
			if d < 0 || d >= len(f.Dims) {
				return fmt.Errorf("ncdf: variable %s has bad dim index %d", v.Name, d)
			}
			if f.Dims[d].Unlimited && j != 0 {
				return fmt.Errorf("ncdf: variable %s: record dim must come first", v.Name)
			}
		}
		want := f.fixedElems(v)
		if f.isRecord(v) {
			want *= int64(f.Dims[v.Dims[0]].Len)
		}
		if v.Type == Char {
			if int64(len(v.Text)) != want {
				return fmt.Errorf("ncdf: variable %s: %d chars, shape wants %d", v.Name, len(v.Text), want)
			}
		} else if int64(len(v.Data)) != want {
			return fmt.Errorf("ncdf: variable %s: %d values, shape wants %d", v.Name, len(v.Data), want)
		}
	}
	return nil
}

func nameSize(s string) int64 { return 4 + pad4(int64(len(s))) }

func attrSize(a Attr) int64 {
	n := int64(len(a.Nums))
	if a.Type == Char {
		n = int64(len(a.Str))
	}
	return nameSize(a.Name) + 4 + 4 + pad4(n*int64(a.Type.Size()))
}

func attrsSize(attrs []Attr) int64 {
	n := int64(8)
	for _, a := range attrs {
		n += attrSize(a)
	}
	return n
}

func headerSize(f *File) int64 {
	n := int64(8) // magic + numrecs
	n += 8
	for _, d := range f.Dims {
		n += nameSize(d.Name) + 4
	}
	n += attrsSize(f.Attrs)
	n += 8
	for i := range f.Vars {
		v := &f.Vars[i]
		n += nameSize(v.Name) + 4 + 4*int64(len(v.Dims)) + attrsSize(v.Attrs) + 4 + 4 + 4
	}
	return n
}

type writer struct {
	w      *bufio.Writer
	offset int64
	err    error
}

func (w *writer) bytes(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(b)
	w.offset += int64(n)
	w.err = err
}

func (w *writer) i32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.bytes(b[:])
}

func (w *writer) name(s string) {
	w.i32(int32(len(s)))
	w.bytes([]byte(s))
	w.padTo(w.offset + pad4(int64(len(s))) - int64(len(s)))
}

func (w *writer) padTo(off int64) {
	for w.err == nil && w.offset < off {
		w.bytes([]byte{0})
	}
}

func (w *writer) writeDims(f *File) {
	if len(f.Dims) == 0 {
		w.i32(0)
		w.i32(0)
		return
	}
	w.i32(tagDimension)
	w.i32(int32(len(f.Dims)))
	for _, d := range f.Dims {
		w.name(d.Name)
		if d.Unlimited {
			w.i32(0)
		} else {
			w.i32(int32(d.Len))
		}
	}
}

func (w *writer) writeAttrs(attrs []Attr) {
	if len(attrs) == 0 {
		w.i32(0)
		w.i32(0)
		return
	}
	w.i32(tagAttribute)
	w.i32(int32(len(attrs)))
	for _, a := range attrs {
		w.name(a.Name)
		w.i32(int32(a.Type))
		if a.Type == Char {
			w.i32(int32(len(a.Str)))
			w.bytes([]byte(a.Str))
			w.padTo(w.offset + pad4(int64(len(a.Str))) - int64(len(a.Str)))
		} else {
			w.i32(int32(len(a.Nums)))
			start := w.offset
			for _, v := range a.Nums {
				w.value(a.Type, v)
			}
			w.padTo(start + pad4(w.offset-start))
		}
	}
}

func (w *writer) writeVars(f *File) {
	if len(f.Vars) == 0 {
		w.i32(0)
		w.i32(0)
		return
	}
	w.i32(tagVariable)
	w.i32(int32(len(f.Vars)))
	for i := range f.Vars {
		v := &f.Vars[i]
		w.name(v.Name)
		w.i32(int32(len(v.Dims)))
		for _, d := range v.Dims {
			w.i32(int32(d))
		}
		w.writeAttrs(v.Attrs)
		w.i32(int32(v.Type))
		w.i32(int32(v.vsize))
		w.i32(int32(v.begin))
	}
}

// writeValues emits elems values of v starting at index from.
func (w *writer) writeValues(v *Var, from, elems int) {
	if v.Type == Char {
		w.bytes([]byte(v.Text[from : from+elems]))
		return
	}
	for _, val := range v.Data[from : from+elems] {
		w.value(v.Type, val)
	}
}

func (w *writer) value(t Type, v float64) {
	switch t {
	case Byte:
		w.bytes([]byte{byte(int8(v))})
	case Char:
		w.bytes([]byte{byte(v)})
	case Short:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(int16(v)))
		w.bytes(b[:])
	case Int:
		w.i32(int32(v))
	case Float:
		w.i32(int32(math.Float32bits(float32(v))))
	case Double:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
		w.bytes(b[:])
	}
}
