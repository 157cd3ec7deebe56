package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forestdash/internal/data"
	"forestdash/internal/stats"
)

func (s *Server) datasetParam(c *gin.Context) (*data.Dataset, bool) {
	ds, err := s.Datasets.Get(c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return ds, true
}

// exclude is the column left out of statistics: ?exclude= when given,
// otherwise the dataset target.
func exclude(c *gin.Context, ds *data.Dataset) string {
	if v, ok := c.GetQuery("exclude"); ok {
		return v
	}
	return ds.Target
}

func (s *Server) listDatasets(c *gin.Context) {
	type entry struct {
		Name   string    `json:"name"`
		Title  string    `json:"title"`
		Task   data.Task `json:"task"`
		Target string    `json:"target"`
		Rows   int       `json:"rows"`
	}
	out := []entry{}
	for _, n := range s.Datasets.Names() {
		ds, err := s.Datasets.Get(n)
		if err != nil {
			continue
		}
		out = append(out, entry{Name: ds.Name, Title: ds.Title, Task: ds.Task, Target: ds.Target, Rows: len(ds.Rows)})
	}
	c.JSON(http.StatusOK, gin.H{"datasets": out})
}

func (s *Server) getDataset(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) datasetSummary(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": ds.Name, "summary": stats.SummarizeDataset(ds, exclude(c, ds))})
}

func (s *Server) datasetCorrelation(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	m := stats.CorrelationMatrix(ds, exclude(c, ds))
	if c.Query("format") == "cells" {
		c.JSON(http.StatusOK, gin.H{"dataset": ds.Name, "cells": m.Cells()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": ds.Name, "matrix": m})
}

func (s *Server) datasetMissing(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": ds.Name, "missing": stats.MissingValues(ds)})
}
