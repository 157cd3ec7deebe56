package explain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"forestdash/internal/domain"
	"forestdash/internal/explain"
	"forestdash/internal/explain/mock_explain"
	"forestdash/internal/forest"
)

func TestFromForest(t *testing.T) {
	d, err := domain.Builtin().Get("heart-attack")
	require.NoError(t, err)
	r := domain.Record{"bp": domain.Number(150), "chol": domain.Text("210")}
	res, err := forest.New(d).Aggregate(3, r)
	require.NoError(t, err)

	req := explain.FromForest(d, r, res)
	assert.Equal(t, res.Label, req.Prediction)
	assert.Equal(t, "150", req.FeatureValues["bp"])
	assert.Equal(t, []string{"bp", "chol", "hr", "bs"}, req.FeatureNames)
	assert.Equal(t, "classification", req.TaskType)
}

func TestServicePassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mock_explain.NewMockExplainer(ctrl)
	m.EXPECT().
		Explain(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req explain.Request) (string, error) {
			assert.Equal(t, []string{"a", "b"}, req.FeatureNames)
			return "because a", nil
		})

	s := explain.NewService(m)
	require.True(t, s.Available())
	txt, err := s.Explain(context.Background(), explain.Request{FeatureValues: map[string]string{"b": "2", "a": "1"}, Prediction: "Yes"})
	require.NoError(t, err)
	assert.Equal(t, "because a", txt)
}

func TestServiceUnavailable(t *testing.T) {
	s := explain.NewService(nil)
	assert.False(t, s.Available())
	_, err := s.Explain(context.Background(), explain.Request{})
	assert.True(t, errors.Is(err, explain.ErrUnavailable))
}
