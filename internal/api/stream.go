package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"forestdash/internal/domain"
	"forestdash/internal/forest"
)

// streamMsg is one frame sent to a reveal client.
type streamMsg struct {
	Type   string               `json:"type"`
	Tree   *forest.TreeResult   `json:"tree,omitempty"`
	Index  int                  `json:"index,omitempty"`
	Result *forest.ForestResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func writeFrame(conn *websocket.Conn, m streamMsg) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}

// streamForest upgrades to a websocket. Each record the client sends starts a
// paced reveal of the forest votes; a new record cancels the reveal in
// flight. Query ?trees= sets the forest size.
func (s *Server) streamForest(c *gin.Context) {
	d, ok := s.domainParam(c)
	if !ok {
		return
	}
	trees := d.Trees.Default
	if q := c.Query("trees"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			badRequest(c, errors.New("trees must be an integer"))
			return
		}
		trees = d.ClampTrees(n)
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	if s.Metrics != nil {
		s.Metrics.StreamClients.Inc()
		defer s.Metrics.StreamClients.Dec()
	}

	ctx, cancelAll := context.WithCancel(c.Request.Context())
	defer cancelAll()

	var current *revealRun
	defer func() { current.stop() }()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.Logger.Debug("stream closed", zap.String("domain", d.Name), zap.Error(err))
			}
			return
		}
		// only one goroutine writes at a time
		current.stop()
		current = nil

		var r domain.Record
		if err := json.Unmarshal(msg, &r); err != nil {
			if werr := writeFrame(conn, streamMsg{Type: "error", Error: "invalid record: " + err.Error()}); werr != nil {
				return
			}
			continue
		}
		res, err := s.vote(d, trees, r, false)
		if err != nil {
			if werr := writeFrame(conn, streamMsg{Type: "error", Error: err.Error()}); werr != nil {
				return
			}
			continue
		}

		current = s.startReveal(ctx, conn, res)
	}
}

// revealRun is one reveal goroutine and the means to stop it.
type revealRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// stop cancels the run and waits for its goroutine. A nil run is a no-op.
func (r *revealRun) stop() {
	if r == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (s *Server) startReveal(parent context.Context, conn *websocket.Conn, res forest.ForestResult) *revealRun {
	ctx, cancel := context.WithCancel(parent)
	run := &revealRun{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(run.done)
		defer cancel()
		s.reveal(ctx, conn, res)
	}()
	return run
}

func (s *Server) reveal(ctx context.Context, conn *websocket.Conn, res forest.ForestResult) {
	i := 0
	err := forest.Reveal(ctx, res, s.Settings.Forest.RevealDelay, s.Settings.Forest.RevealStep, func(tr forest.TreeResult) error {
		i++
		return writeFrame(conn, streamMsg{Type: "tree", Tree: &tr, Index: i})
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.Logger.Debug("reveal aborted", zap.String("domain", res.Domain), zap.Error(err))
		}
		return
	}
	if err := writeFrame(conn, streamMsg{Type: "result", Result: &res}); err != nil {
		s.Logger.Debug("result frame failed", zap.Error(err))
	}
}
