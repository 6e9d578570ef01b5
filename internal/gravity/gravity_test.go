package gravity

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalGravityReference(t *testing.T) {
	// WGS84 theoretical gravity at sea level.
	if g := NormalGravity(0, 0); math.Abs(g-978032.53) > 0.1 {
		t.Errorf("equator = %f mGal, want ~978032.53", g)
	}
	if g := NormalGravity(90, 0); math.Abs(g-983218.49) > 0.1 {
		t.Errorf("pole = %f mGal, want ~983218.49", g)
	}
	// Free-air gradient is about -0.3086 mGal/m.
	drop := NormalGravity(45, 0) - NormalGravity(45, 1000)
	if drop < 300 || drop > 320 {
		t.Errorf("1 km height drop = %f mGal, want ~308", drop)
	}
}

func TestBouguerCorrection(t *testing.T) {
	// 0.1119 mGal/m at standard crustal density.
	if c := BouguerCorrection(100, 2670); math.Abs(c-11.1971) > 0.05 {
		t.Errorf("slab correction = %f mGal, want ~11.20", c)
	}
	if c := BouguerCorrection(0, 2670); c != 0 {
		t.Errorf("zero height correction = %f", c)
	}
}

func TestPrismSlabLimit(t *testing.T) {
	// A very wide thin prism below the station approaches the
	// infinite-slab value.
	const half = 50000.0
	got := prismGz(-half, half, -half, half, 50, 150, 2670)
	want := BouguerCorrection(100, 2670)
	if math.Abs(got-want)/want > 0.02 {
		t.Errorf("wide prism = %f mGal, slab = %f", got, want)
	}
}

func TestPrismSymmetry(t *testing.T) {
	a := prismGz(100, 200, -50, 50, 10, 110, 2670)
	b := prismGz(-200, -100, -50, 50, 10, 110, 2670)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("mirrored prisms differ: %g vs %g", a, b)
	}
	if a <= 0 {
		t.Errorf("mass below station attracts downward, got %g", a)
	}
}

func flatDEM(nx, ny int, cell, z float64) *DEM {
	d := &DEM{DX: cell, DY: cell}
	for i := 0; i < nx; i++ {
		d.X = append(d.X, (float64(i)+0.5)*cell)
	}
	for i := 0; i < ny; i++ {
		d.Y = append(d.Y, (float64(i)+0.5)*cell)
	}
	d.Z = make([]float64, nx*ny)
	for i := range d.Z {
		d.Z[i] = z
	}
	return d
}

func TestTerrainCorrectionFlatZero(t *testing.T) {
	dem := flatDEM(10, 10, 100, 0)
	if tc := TerrainCorrection(500, 500, 0, dem, 2670); tc != 0 {
		t.Errorf("flat zero dem correction = %f", tc)
	}
}

func TestTerrainCorrectionPositiveRelief(t *testing.T) {
	dem := flatDEM(20, 20, 100, 50)
	tc := TerrainCorrection(1000, 1000, 100, dem, 2670)
	if tc <= 0 {
		t.Errorf("terrain below station should attract, got %f", tc)
	}
	// Bounded by the slab value for a 50 m layer.
	if tc > BouguerCorrection(50, 2670) {
		t.Errorf("terrain correction %f exceeds slab bound", tc)
	}
}

func TestProcessSurvey(t *testing.T) {
	stations := ExampleSurvey(20)
	if err := Process(stations, Options{}); err != nil {
		t.Fatal(err)
	}
	for _, s := range stations {
		if s.Normal < 977000 || s.Normal > 984000 {
			t.Fatalf("normal gravity %f out of plausible range", s.Normal)
		}
		if math.Abs(s.SimpleBouguer-(s.FreeAirAnomaly-s.BouguerCorr)) > 1e-9 {
			t.Errorf("bouguer chain inconsistent for %s", s.Name)
		}
	}
}

func TestProcessWithRegional(t *testing.T) {
	stations := ExampleSurvey(20)
	if err := Process(stations, Options{RegionalDegree: 1}); err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, s := range stations {
		sum += s.Residual
	}
	// Residuals of a least-squares plane are zero-mean.
	if math.Abs(sum/float64(len(stations))) > 1e-6 {
		t.Errorf("residual mean = %g", sum/float64(len(stations)))
	}
}

func TestReadWriteSurvey(t *testing.T) {
	csvData := "station,longitude,latitude,height,observed_gravity\nA1,-25.0,-15.0,600,978000\n"
	stations, err := ReadSurvey(strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if len(stations) != 1 || stations[0].Name != "A1" || stations[0].Height != 600 {
		t.Fatalf("stations = %+v", stations)
	}

	if _, err := ReadSurvey(strings.NewReader("x,y\n1,2\n")); err == nil {
		t.Error("expected missing-column error")
	}

	if err := Process(stations, Options{}); err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := WriteSurvey(&b, stations, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "free_air_anomaly") {
		t.Errorf("output header missing columns: %s", b.String())
	}
}

func TestLoadESRIASCII(t *testing.T) {
	grid := `ncols 3
nrows 2
xllcorner 0
yllcorner 0
cellsize 100
NODATA_value -9999
1 2 3
4 5 -9999
`
	path := filepath.Join(t.TempDir(), "dem.asc")
	if err := os.WriteFile(path, []byte(grid), 0o644); err != nil {
		t.Fatal(err)
	}
	dem, err := LoadESRIASCII(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(dem.X) != 3 || len(dem.Y) != 2 || dem.DX != 100 {
		t.Fatalf("dem = %+v", dem)
	}
	// First file row is the northern one.
	if dem.Z[1*3+0] != 1 || dem.Z[0*3+0] != 4 {
		t.Errorf("row flip wrong: %v", dem.Z)
	}
	if !math.IsNaN(dem.Z[0*3+2]) {
		t.Errorf("nodata not mapped to NaN: %v", dem.Z[2])
	}
}
