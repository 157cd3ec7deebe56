// Package explain defines the boundary to the text explanation service. The
// core only assembles the request and passes the returned text through.
package explain

//go:generate mockgen -destination=mock_explain/mock_explain.go -package=mock_explain forestdash/internal/explain Explainer

import (
	"context"
	"errors"
	"sort"

	"forestdash/internal/domain"
	"forestdash/internal/forest"
)

var ErrUnavailable = errors.New("explanation service not configured")

type Request struct {
	FeatureValues map[string]string `json:"featureValues"`
	Prediction    string            `json:"prediction"`
	FeatureNames  []string          `json:"featureNames"`
	TaskType      string            `json:"taskType"`
}

type Explainer interface {
	Explain(ctx context.Context, req Request) (string, error)
}

// FromForest builds the request for a forest vote on a domain record.
func FromForest(d *domain.Domain, r domain.Record, res forest.ForestResult) Request {
	vals := make(map[string]string, len(r))
	for k, v := range r {
		vals[k] = v.String()
	}
	names := d.FeatureNames()
	return Request{
		FeatureValues: vals,
		Prediction:    res.Label,
		FeatureNames:  names,
		TaskType:      "classification",
	}
}

// Service wraps an optional Explainer.
type Service struct {
	backend Explainer
}

func NewService(backend Explainer) *Service { return &Service{backend: backend} }

func (s *Service) Available() bool { return s != nil && s.backend != nil }

func (s *Service) Explain(ctx context.Context, req Request) (string, error) {
	if !s.Available() {
		return "", ErrUnavailable
	}
	if req.FeatureNames == nil {
		for k := range req.FeatureValues {
			req.FeatureNames = append(req.FeatureNames, k)
		}
		sort.Strings(req.FeatureNames)
	}
	return s.backend.Explain(ctx, req)
}
