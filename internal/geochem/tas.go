package geochem

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
)

type tasField struct {
	Name string
	Poly [][2]float64 // (SiO2, Na2O+K2O) vertices
}

// tasFields are the total alkali-silica fields after Le Bas et al.
// (1986); the open-topped alkaline fields are closed at 20 wt%.
var tasFields = []tasField{
	{"picrobasalt", [][2]float64{{41, 0}, {41, 3}, {45, 3}, {45, 0}}},
	{"basalt", [][2]float64{{45, 0}, {45, 5}, {52, 5}, {52, 0}}},
	{"basaltic andesite", [][2]float64{{52, 0}, {52, 5}, {57, 5.9}, {57, 0}}},
	{"andesite", [][2]float64{{57, 0}, {57, 5.9}, {63, 7}, {63, 0}}},
	{"dacite", [][2]float64{{63, 0}, {63, 7}, {69, 8}, {77, 0}}},
	{"rhyolite", [][2]float64{{69, 8}, {69, 13}, {85, 13}, {85, 0}, {77, 0}}},
	{"trachybasalt", [][2]float64{{45, 5}, {49.4, 7.3}, {52, 5}}},
	{"basaltic trachyandesite", [][2]float64{{49.4, 7.3}, {53, 9.3}, {57, 5.9}, {52, 5}}},
	{"trachyandesite", [][2]float64{{53, 9.3}, {57.6, 11.7}, {63, 7}, {57, 5.9}}},
	{"trachyte", [][2]float64{{57.6, 11.7}, {61, 13.5}, {69, 13}, {69, 8}, {63, 7}}},
	{"tephrite", [][2]float64{{41, 3}, {41, 7}, {45, 9.4}, {49.4, 7.3}, {45, 5}, {45, 3}}},
	{"phonotephrite", [][2]float64{{45, 9.4}, {48.4, 11.5}, {53, 9.3}, {49.4, 7.3}}},
	{"tephriphonolite", [][2]float64{{48.4, 11.5}, {52.5, 14}, {57.6, 11.7}, {53, 9.3}}},
	{"phonolite", [][2]float64{{52.5, 14}, {57.6, 11.7}, {61, 13.5}, {57, 20}, {46, 20}}},
	{"foidite", [][2]float64{{41, 3}, {41, 7}, {45, 9.4}, {48.4, 11.5}, {52.5, 14}, {46, 20}, {35, 20}, {35, 3}}},
}

// pointInPoly is a standard ray-casting test.
func pointInPoly(x, y float64, poly [][2]float64) bool {
	in := false
	j := len(poly) - 1
	for i := range poly {
		xi, yi := poly[i][0], poly[i][1]
		xj, yj := poly[j][0], poly[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			in = !in
		}
		j = i
	}
	return in
}

// ClassifyTAS names the field containing one (SiO2, alkali) point.
func ClassifyTAS(sio2, alkali float64) string {
	if math.IsNaN(sio2) || math.IsNaN(alkali) {
		return "unclassified"
	}
	for _, f := range tasFields {
		if pointInPoly(sio2, alkali, f.Poly) {
			return f.Name
		}
	}
	if sio2 < 41 {
		return "foidite"
	}
	return "unclassified"
}

// TASResult is one classified sample.
type TASResult struct {
	SiO2, Alkali float64
	Group        string
	Field        string
}

// TAS classifies every sample with SiO2, Na2O and K2O present.
func (t *Table) TAS() ([]TASResult, error) {
	for _, col := range []string{"SiO2", "Na2O", "K2O"} {
		if !t.Has(col) {
			return nil, fmt.Errorf("geochem: missing column %q for TAS", col)
		}
	}
	out := make([]TASResult, t.N)
	for s := 0; s < t.N; s++ {
		r := TASResult{
			SiO2:   t.Data["SiO2"][s],
			Alkali: t.Data["Na2O"][s] + t.Data["K2O"][s],
			Group:  t.Group[s],
		}
		r.Field = ClassifyTAS(r.SiO2, r.Alkali)
		out[s] = r
	}
	return out, nil
}

// WriteTASTable prints the per-sample classification.
func WriteTASTable(w io.Writer, results []TASResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SAMPLE\tSIO2\tNA2O+K2O\tGROUP\tFIELD")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%s\t%s\n", i+1, r.SiO2, r.Alkali, r.Group, r.Field)
	}
	tw.Flush()
}
