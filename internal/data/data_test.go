package data

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixtures(t *testing.T) {
	r, err := LoadFixtures()
	require.NoError(t, err)
	assert.Equal(t, []string{"california-housing", "customer-purchase", "synthetic-patient", "tennis-weather", "wine-quality"}, r.Names())

	h, err := r.Get("california-housing")
	require.NoError(t, err)
	assert.Equal(t, Regression, h.Task)
	assert.Equal(t, "MedHouseVal", h.Target)
	assert.Len(t, h.NumericColumns(h.Target), 8)
	assert.Equal(t, 8.3252, h.Column("MedInc")[0])

	w, err := r.Get("wine-quality")
	require.NoError(t, err)
	assert.Equal(t, "quality", w.Target)
	for _, q := range w.Column("quality") {
		assert.Contains(t, []float64{0, 1}, q)
	}

	tn, err := r.Get("tennis-weather")
	require.NoError(t, err)
	assert.Len(t, tn.Rows, 14)
	assert.Empty(t, tn.NumericColumns(""))

	_, err = r.Get("missing")
	assert.True(t, errors.Is(err, ErrUnknownDataset))
}

func TestGenerateSyntheticPatientsDeterministic(t *testing.T) {
	a := GenerateSyntheticPatients(50, 7)
	b := GenerateSyntheticPatients(50, 7)
	assert.Equal(t, a, b)
	risky := 0
	for _, p := range a {
		assert.Contains(t, []string{RiskLabel, RiskLessLabel}, p.Risk)
		if p.Risk == RiskLabel {
			risky++
		}
	}
	assert.Greater(t, risky, 0)
	assert.Less(t, risky, 50)
}

func TestWritePatientsCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "patients.csv")
	require.NoError(t, WritePatientsCSV(10, 1, out))
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 11)
	assert.Equal(t, []string{"bp", "chol", "hr", "bs", "risk"}, rows[0])
}

func TestDecodeFillsColumns(t *testing.T) {
	ds, err := Decode([]byte(`{"name":"x","task":"regression","target":"b","rows":[{"b":1,"a":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Columns)

	_, err = Decode([]byte(`{"rows":[]}`))
	assert.Error(t, err)
}
