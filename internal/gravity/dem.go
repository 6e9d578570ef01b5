package gravity

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/geoforge/internal/ncdf"
)

// DEM is a regular elevation grid. X and Y are cell centers, Z is
// row-major (iy*len(X)+ix) in the same units as station heights.
type DEM struct {
	X, Y   []float64
	Z      []float64
	DX, DY float64
}

// DEMFromNetCDF extracts a DEM from a classic NetCDF grid: the first
// 2-D variable over a recognized pair of coordinate axes.
func DEMFromNetCDF(f *ncdf.File) (*DEM, error) {
	axis := func(names ...string) *ncdf.Var {
		for _, n := range names {
			if v := f.Var(n); v != nil && len(v.Dims) == 1 {
				return v
			}
		}
		return nil
	}
	xv := axis("easting", "x", "lon", "longitude")
	yv := axis("northing", "y", "lat", "latitude")
	if xv == nil || yv == nil {
		return nil, fmt.Errorf("gravity: no coordinate axes in netcdf grid")
	}

	var zv *ncdf.Var
	for i := range f.Vars {
		v := &f.Vars[i]
		if len(v.Dims) == 2 && v.Name != xv.Name && v.Name != yv.Name {
			zv = v
			break
		}
	}
	if zv == nil {
		return nil, fmt.Errorf("gravity: no 2-d elevation variable in netcdf grid")
	}
	if len(zv.Data) != len(xv.Data)*len(yv.Data) {
		return nil, fmt.Errorf("gravity: elevation shape does not match axes")
	}

	dem := &DEM{X: xv.Data, Y: yv.Data, Z: zv.Data}
	if len(dem.X) > 1 {
		dem.DX = math.Abs(dem.X[1] - dem.X[0])
	}
	if len(dem.Y) > 1 {
		dem.DY = math.Abs(dem.Y[1] - dem.Y[0])
	}
	return dem, nil
}

// LoadDEM reads a DEM from a classic NetCDF file or an ESRI ASCII grid,
// chosen by extension (.nc vs anything else).
func LoadDEM(path string) (*DEM, error) {
	if strings.HasSuffix(strings.ToLower(path), ".nc") {
		f, err := ncdf.Open(path)
		if err != nil {
			return nil, err
		}
		return DEMFromNetCDF(f)
	}
	return LoadESRIASCII(path)
}

// LoadESRIASCII reads an ESRI ASCII grid (ncols/nrows/xllcorner/
// yllcorner/cellsize/NODATA_value header, rows north to south).
func LoadESRIASCII(path string) (*DEM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 1<<20)

	hdr := map[string]float64{}
	var rows [][]float64
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) == 2 {
			if _, notKey := strconv.ParseFloat(fields[0], 64); notKey != nil {
				v, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, fmt.Errorf("gravity: bad header line %q", sc.Text())
				}
				hdr[strings.ToLower(fields[0])] = v
				continue
			}
		}
		row := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("gravity: bad grid value %q", s)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	ncols := int(hdr["ncols"])
	nrows := int(hdr["nrows"])
	cell := hdr["cellsize"]
	if ncols == 0 || nrows == 0 || cell == 0 {
		return nil, fmt.Errorf("gravity: incomplete esri ascii header")
	}
	if len(rows) != nrows {
		return nil, fmt.Errorf("gravity: grid has %d rows, header says %d", len(rows), nrows)
	}

	nodata, hasNodata := hdr["nodata_value"]
	dem := &DEM{DX: cell, DY: cell}
	for i := 0; i < ncols; i++ {
		dem.X = append(dem.X, hdr["xllcorner"]+(float64(i)+0.5)*cell)
	}
	for i := 0; i < nrows; i++ {
		dem.Y = append(dem.Y, hdr["yllcorner"]+(float64(i)+0.5)*cell)
	}
	dem.Z = make([]float64, ncols*nrows)
	// File rows run north to south; flip so iy increases northward.
	for r, row := range rows {
		if len(row) != ncols {
			return nil, fmt.Errorf("gravity: row %d has %d columns, want %d", r, len(row), ncols)
		}
		iy := nrows - 1 - r
		for ix, v := range row {
			if hasNodata && v == nodata {
				v = math.NaN()
			}
			dem.Z[iy*ncols+ix] = v
		}
	}
	return dem, nil
}
