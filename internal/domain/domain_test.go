package domain

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()
	names := []string{}
	for _, d := range c.List() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"customer-purchase", "heart-attack", "tennis"}, names)

	d, err := c.Get("customer-purchase")
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "student", "creditRating", "income"}, d.FeatureNames())
	assert.Equal(t, "Buy", d.Label(Positive))
	assert.Equal(t, "Don't Buy", d.Label(Negative))
	assert.Equal(t, Positive, d.FavoredClass())
	assert.Equal(t, 15, d.Trees.Max)

	h, err := c.Get("heart-attack")
	require.NoError(t, err)
	assert.Equal(t, 30, h.Trees.Max)

	tn, err := c.Get("tennis")
	require.NoError(t, err)
	assert.Equal(t, "Yes", tn.PositiveTag)
}

func TestUnknownDomain(t *testing.T) {
	_, err := Builtin().Get("nope")
	assert.True(t, errors.Is(err, ErrUnknownDomain))
}

func TestThresholdAt(t *testing.T) {
	bp := Threshold{Base: 120, Step: 5, Mod: 40}
	assert.Equal(t, 125.0, bp.At(1))
	assert.Equal(t, 120.0, bp.At(8))
	chol := Threshold{Base: 200, Step: 7, Mod: 50}
	assert.Equal(t, 221.0, chol.At(3))
}

func TestParseCatalogCollectsErrors(t *testing.T) {
	bad := []byte(`
domains:
  - name: broken
    positive: A
    negative: A
    trees: {min: 3, max: 2, default: 3}
    features:
      - name: x
        kind: categorical
      - name: y
        kind: numeric
`)
	_, err := ParseCatalog(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs options or equals")
	assert.Contains(t, err.Error(), "needs a threshold")
}

func TestCheckRecord(t *testing.T) {
	d, _ := Builtin().Get("heart-attack")
	err := d.CheckRecord(Record{"bp": Number(130), "chol": Text("abc"), "hr": Text("")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteRecord))
	assert.Contains(t, err.Error(), `"chol" is not a number`)
	assert.Contains(t, err.Error(), `missing "hr"`)
	assert.Contains(t, err.Error(), `missing "bs"`)

	c, _ := Builtin().Get("customer-purchase")
	ok := RecordFromStrings(map[string]string{"age": "youth", "student": "no", "creditRating": "fair", "income": "medium"})
	assert.NoError(t, c.CheckRecord(ok))
	ok["age"] = Text("Ancient")
	assert.Error(t, c.CheckRecord(ok))
}

func TestClampTrees(t *testing.T) {
	d, _ := Builtin().Get("customer-purchase")
	assert.Equal(t, 3, d.ClampTrees(0))
	assert.Equal(t, 3, d.ClampTrees(1))
	assert.Equal(t, 15, d.ClampTrees(40))
	assert.Equal(t, 7, d.ClampTrees(7))
}

func TestValueJSON(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"bp": 130, "age": "Youth", "hr": "72"}`), &r))
	assert.True(t, r["bp"].IsNumber())
	f, ok := r["hr"].Float()
	assert.True(t, ok)
	assert.Equal(t, 72.0, f)
	assert.Equal(t, "Youth", r["age"].String())

	b, err := json.Marshal(Record{"bp": Number(130.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bp":130.5}`, string(b))
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("Middle Aged", "middle aged "))
	assert.False(t, EqualFold("Youth", "Senior"))
}
