package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"forestdash/internal/domain"
	"forestdash/internal/explain"
	"forestdash/internal/forest"
	"forestdash/internal/history"
)

var errTooManyTrees = errors.New("tree count above domain maximum")

const batchWorkers = 8

type predictReq struct {
	Features     domain.Record `json:"features"`
	Trees        int           `json:"trees"`
	AllowPartial bool          `json:"allow_partial"`
}

type predictResp struct {
	ID string `json:"id,omitempty"`
	forest.ForestResult
}

type batchReq struct {
	Trees   int             `json:"trees"`
	Records []domain.Record `json:"records" binding:"required,min=1,max=1000"`
}

type explainReq struct {
	Domain   string        `json:"domain" binding:"required"`
	Features domain.Record `json:"features"`
	Trees    int           `json:"trees"`
}

// treeCount resolves a requested count: zero picks the domain default and
// anything above the slider maximum is refused.
func treeCount(d *domain.Domain, n int) (int, error) {
	if n == 0 {
		return d.Trees.Default, nil
	}
	if n > d.Trees.Max {
		return 0, fmt.Errorf("%w: %d > %d", errTooManyTrees, n, d.Trees.Max)
	}
	return n, nil
}

func (s *Server) domainParam(c *gin.Context) (*domain.Domain, bool) {
	d, err := s.Catalog.Get(c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return d, true
}

func (s *Server) listDomains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"domains": s.Catalog.List()})
}

func (s *Server) getDomain(c *gin.Context) {
	d, ok := s.domainParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) getTree(c *gin.Context) {
	d, ok := s.domainParam(c)
	if !ok {
		return
	}
	seed, err := strconv.Atoi(c.Param("seed"))
	if err != nil || seed < 1 {
		badRequest(c, fmt.Errorf("seed must be a positive integer, got %q", c.Param("seed")))
		return
	}
	c.JSON(http.StatusOK, forest.BuildTree(d, seed))
}

// vote runs the forest on one record and records it in metrics.
func (s *Server) vote(d *domain.Domain, trees int, r domain.Record, partial bool) (forest.ForestResult, error) {
	if !partial {
		if err := d.CheckRecord(r); err != nil {
			return forest.ForestResult{}, err
		}
	}
	n, err := treeCount(d, trees)
	if err != nil {
		return forest.ForestResult{}, err
	}
	res, err := forest.New(d).Aggregate(n, r)
	if err != nil {
		return forest.ForestResult{}, err
	}
	s.Metrics.ObserveVote(d.Name, res.Label, n, res.Margin, res.Tie)
	return res, nil
}

func (s *Server) record(d *domain.Domain, r domain.Record, res forest.ForestResult) string {
	if s.History == nil {
		return ""
	}
	input := make(map[string]any, len(r))
	for k, v := range r {
		if f, ok := v.Float(); ok && v.IsNumber() {
			input[k] = f
			continue
		}
		input[k] = v.String()
	}
	e := &history.Entry{
		Domain:    d.Name,
		Input:     input,
		TreeCount: len(res.Trees),
		Label:     res.Label,
		Counts:    res.Counts,
		Votes:     res.Labels(),
	}
	if err := s.History.Save(e); err != nil {
		s.Logger.Warn("history save failed", zap.String("domain", d.Name), zap.Error(err))
		return ""
	}
	return e.ID
}

func (s *Server) predict(c *gin.Context) {
	d, ok := s.domainParam(c)
	if !ok {
		return
	}
	var req predictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.vote(d, req.Trees, req.Features, req.AllowPartial)
	if err != nil {
		s.fail(c, err)
		return
	}
	id := s.record(d, req.Features, res)
	s.Logger.Debug("forest vote",
		zap.String("domain", d.Name),
		zap.String("label", res.Label),
		zap.Int("trees", len(res.Trees)),
		zap.Bool("tie", res.Tie))
	c.JSON(http.StatusOK, predictResp{ID: id, ForestResult: res})
}

func (s *Server) batch(c *gin.Context) {
	d, ok := s.domainParam(c)
	if !ok {
		return
	}
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out := make([]forest.ForestResult, len(req.Records))
	g, _ := errgroup.WithContext(c.Request.Context())
	g.SetLimit(batchWorkers)
	for i, r := range req.Records {
		g.Go(func() error {
			res, err := s.vote(d, req.Trees, r, true)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "count": len(out)})
}

func (s *Server) explain(c *gin.Context) {
	var req explainReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !s.Explainer.Available() {
		s.fail(c, explain.ErrUnavailable)
		return
	}
	d, err := s.Catalog.Get(req.Domain)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.vote(d, req.Trees, req.Features, false)
	if err != nil {
		s.fail(c, err)
		return
	}
	text, err := s.Explainer.Explain(c.Request.Context(), explain.FromForest(d, req.Features, res))
	if err != nil {
		s.fail(c, fmt.Errorf("explain: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"prediction": res.Label, "explanation": text})
}
