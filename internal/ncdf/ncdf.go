// Package ncdf reads and writes the NetCDF classic format (CDF-1 and
// CDF-2): dimensions, attributes and variables of the primitive numeric
// types, including record variables. NetCDF-4/HDF5 files are rejected.
package ncdf

import (
	"errors"
	"fmt"
)

// Type is a NetCDF external type code.
type Type int32

const (
	Byte   Type = 1
	Char   Type = 2
	Short  Type = 3
	Int    Type = 4
	Float  Type = 5
	Double Type = 6
)

// Size returns the bytes per element.
func (t Type) Size() int {
	switch t {
	case Byte, Char:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	case Double:
		return 8
	}
	return 0
}

func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	}
	return fmt.Sprintf("type(%d)", int32(t))
}

// Header list tags.
const (
	tagDimension = 0x0A
	tagVariable  = 0x0B
	tagAttribute = 0x0C
)

var (
	// ErrUnsupported indicates a NetCDF-4/HDF5 or otherwise
	// non-classic file.
	ErrUnsupported = errors.New("ncdf: not a classic NetCDF file (NetCDF-4/HDF5 is not supported)")

	// ErrCorrupt indicates an inconsistent header.
	ErrCorrupt = errors.New("ncdf: corrupt header")
)

// Dim is one dimension; the record dimension has Unlimited set and Len
// equal to the current number of records.
type Dim struct {
	Name      string
	Len       int
	Unlimited bool
}

// Attr is one attribute. Char attributes carry Str; numeric ones Nums.
type Attr struct {
	Name string
	Type Type
	Str  string
	Nums []float64
}

// Var is one variable with its data decoded to float64. Char variables
// keep their bytes in Text instead.
type Var struct {
	Name  string
	Dims  []int // indices into File.Dims
	Attrs []Attr
	Type  Type
	Data  []float64
	Text  string

	vsize int64
	begin int64
}

// Attr returns a named attribute or nil.
func (v *Var) Attr(name string) *Attr {
	for i := range v.Attrs {
		if v.Attrs[i].Name == name {
			return &v.Attrs[i]
		}
	}
	return nil
}

// File is an in-memory classic NetCDF dataset.
type File struct {
	Dims  []Dim
	Attrs []Attr
	Vars  []Var
}

// Var returns a named variable or nil.
func (f *File) Var(name string) *Var {
	for i := range f.Vars {
		if f.Vars[i].Name == name {
			return &f.Vars[i]
		}
	}
	return nil
}

// DimIndex returns the index of a named dimension, or -1.
func (f *File) DimIndex(name string) int {
	for i := range f.Dims {
		if f.Dims[i].Name == name {
			return i
		}
	}
	return -1
}

// Shape returns the variable's dimension lengths in order.
func (f *File) Shape(v *Var) []int {
	shape := make([]int, len(v.Dims))
	for i, d := range v.Dims {
		shape[i] = f.Dims[d].Len
	}
	return shape
}

// AddDim appends a dimension and returns its index.
func (f *File) AddDim(name string, length int, unlimited bool) int {
	f.Dims = append(f.Dims, Dim{Name: name, Len: length, Unlimited: unlimited})
	return len(f.Dims) - 1
}

func pad4(n int64) int64 {
	if r := n % 4; r != 0 {
		return n + 4 - r
	}
	return n
}

// isRecord reports whether the variable uses the record dimension.
func (f *File) isRecord(v *Var) bool {
	return len(v.Dims) > 0 && f.Dims[v.Dims[0]].Unlimited
}

// fixedElems is the element count per record for record variables, or
// the total count for fixed ones.
func (f *File) fixedElems(v *Var) int64 {
	n := int64(1)
	for i, d := range v.Dims {
		if i == 0 && f.Dims[d].Unlimited {
			continue
		}
		n *= int64(f.Dims[d].Len)
	}
	return n
}
