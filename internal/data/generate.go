package data

import (
	"encoding/csv"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
)

const (
	RiskLabel     = "risky"
	RiskLessLabel = "risk less"
)

// GenerateSyntheticPatients draws n patients from a seeded source. The risk
// label follows the vitals with a small amount of label noise.
func GenerateSyntheticPatients(n int, seed uint64) []Patient {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Patient, 0, n)
	for i := 0; i < n; i++ {
		p := Patient{
			BP:   math.Round(r.NormFloat64()*18 + 130),
			Chol: math.Round(r.NormFloat64()*35 + 215),
			HR:   math.Round(r.NormFloat64()*12 + 78),
			BS:   math.Round(r.NormFloat64()*20 + 100),
		}
		score := 0.0
		flags := 0
		if p.BP > 140 {
			score += 0.3
			flags++
		}
		if p.Chol > 240 {
			score += 0.25
			flags++
		}
		if p.HR > 95 {
			score += 0.15
			flags++
		}
		if p.BS > 125 {
			score += 0.2
			flags++
		}
		p.Risk = RiskLessLabel
		if flags >= 2 || r.Float64() < 0.05+score/2 {
			p.Risk = RiskLabel
		}
		out = append(out, p)
	}
	return out
}

// PatientDataset wraps generated patients as a classification dataset.
func PatientDataset(n int, seed uint64) *Dataset {
	ps := GenerateSyntheticPatients(n, seed)
	rows := make([]Row, len(ps))
	for i, p := range ps {
		rows[i] = p.Row()
	}
	return &Dataset{
		Name:    "synthetic-patient",
		Title:   "Synthetic Patient Vitals",
		Task:    Classification,
		Target:  "risk",
		Columns: []string{"bp", "chol", "hr", "bs", "risk"},
		Rows:    rows,
	}
}

// WritePatientsCSV writes n generated patients to outPath.
func WritePatientsCSV(n int, seed uint64, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"bp", "chol", "hr", "bs", "risk"}
	if err := w.Write(header); err != nil {
		return err
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) }
	for _, p := range GenerateSyntheticPatients(n, seed) {
		if err := w.Write([]string{ff(p.BP), ff(p.Chol), ff(p.HR), ff(p.BS), p.Risk}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
