package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forestdash/internal/data"
	"forestdash/internal/training"
)

var errHistoryDisabled = errors.New("prediction history is disabled")

type taskReq struct {
	Task data.Task `json:"task" binding:"required"`
}

type featuresReq struct {
	Features []string `json:"features" binding:"required"`
}

type targetReq struct {
	Target string `json:"target" binding:"required"`
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.Session.Snapshot())
}

func (s *Server) sessionReply(c *gin.Context, st training.State, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) setTask(c *gin.Context) {
	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := s.Session.SetTask(req.Task)
	if err == nil {
		s.setLatest(nil)
	}
	s.sessionReply(c, st, err)
}

func (s *Server) setHyperparameters(c *gin.Context) {
	var patch training.HyperparameterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	st, err := s.Session.SetHyperparameters(patch)
	s.sessionReply(c, st, err)
}

func (s *Server) setFeatures(c *gin.Context) {
	var req featuresReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := s.Session.SetSelectedFeatures(req.Features)
	s.sessionReply(c, st, err)
}

func (s *Server) setTarget(c *gin.Context) {
	var req targetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := s.Session.SetTargetColumn(req.Target)
	s.sessionReply(c, st, err)
}

func (s *Server) train(c *gin.Context) {
	st := s.Session.Snapshot()
	ds, err := s.Session.Dataset()
	if err != nil {
		s.fail(c, err)
		return
	}
	start := time.Now()
	res, err := s.Engine.Train(c.Request.Context(), st, ds)
	s.Metrics.ObserveTraining(s.Engine.Name(), err, time.Since(start).Seconds())
	if err != nil {
		s.Logger.Warn("training failed",
			zap.String("engine", s.Engine.Name()),
			zap.String("dataset", st.Dataset),
			zap.Error(err))
		s.fail(c, err)
		return
	}
	s.setLatest(res)
	s.Logger.Info("training done",
		zap.String("engine", res.Engine),
		zap.String("task", string(res.Task)),
		zap.Duration("took", time.Since(start)))
	c.JSON(http.StatusOK, res)
}

func (s *Server) latestResult(c *gin.Context) {
	res := s.getLatest()
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no training result yet"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listHistory(c *gin.Context) {
	if s.History == nil {
		s.fail(c, errHistoryDisabled)
		return
	}
	d := c.Query("domain")
	if d == "" {
		badRequest(c, errors.New("domain query parameter is required"))
		return
	}
	if _, err := s.Catalog.Get(d); err != nil {
		s.fail(c, err)
		return
	}
	limit := 20
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			badRequest(c, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	entries, err := s.History.Recent(d, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domain": d, "predictions": entries})
}

func (s *Server) getHistory(c *gin.Context) {
	if s.History == nil {
		s.fail(c, errHistoryDisabled)
		return
	}
	e, err := s.History.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// partialDependence serves the dependence series of ?feature= (default the
// first selected feature) over the session dataset.
func (s *Server) partialDependence(c *gin.Context) {
	st := s.Session.Snapshot()
	feature := c.Query("feature")
	if feature == "" && len(st.SelectedFeatures) > 0 {
		feature = st.SelectedFeatures[0]
	}
	if !slices.Contains(st.SelectedFeatures, feature) {
		s.fail(c, fmt.Errorf("%w: %q is not a selected feature", training.ErrUnknownColumn, feature))
		return
	}
	ds, err := s.Session.Dataset()
	if err != nil {
		s.fail(c, err)
		return
	}
	pts, err := s.Dependence.PartialDependence(ds, feature, st.Task)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feature": feature, "task": st.Task, "points": pts})
}
