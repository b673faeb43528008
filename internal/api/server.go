// Package api exposes the training system over HTTP. The surface is the
// programmatic equivalent of the operator console: create a session, submit
// turns, read back state, events, and score.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/plant-ots/control"
	"github.com/signalsfoundry/plant-ots/core"
	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/internal/observability"
	"github.com/signalsfoundry/plant-ots/model"
	"github.com/signalsfoundry/plant-ots/scoring"
	"github.com/signalsfoundry/plant-ots/session"
)

// Server routes HTTP traffic onto the session manager.
type Server struct {
	manager   *session.Manager
	configs   map[model.PlantType]*model.PlantConfig
	collector *observability.Collector
	log       logging.Logger
}

// NewServer builds the server. configs maps each servable plant type to its
// validated configuration; collector may be nil to disable /metrics.
func NewServer(manager *session.Manager, configs map[model.PlantType]*model.PlantConfig,
	collector *observability.Collector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{manager: manager, configs: configs, collector: collector, log: log}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.manager.Count()})
	})
	if s.collector != nil {
		r.GET("/metrics", gin.WrapH(s.collector.Handler()))
	}

	v1 := r.Group("/v1")
	v1.GET("/scenarios", s.listScenarios)
	v1.POST("/sessions", s.createSession)
	v1.GET("/sessions/:id", s.getSession)
	v1.DELETE("/sessions/:id", s.deleteSession)
	v1.POST("/sessions/:id/turns", s.executeTurn)
	v1.GET("/sessions/:id/events", s.getEvents)
	v1.GET("/sessions/:id/score", s.getScore)
	return r
}

func (s *Server) listScenarios(c *gin.Context) {
	plant := model.PlantType(c.Query("plant"))
	if plant == "" {
		c.JSON(http.StatusOK, gin.H{"scenarios": model.ScenarioLibrary})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": model.ScenariosFor(plant)})
}

type createSessionRequest struct {
	Plant    model.PlantType `json:"plant" binding:"required"`
	Scenario string          `json:"scenario" binding:"required"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, ok := s.configs[req.Plant]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plant type: " + string(req.Plant)})
		return
	}
	scenario, ok := model.FindScenario(req.Scenario, req.Plant)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown scenario: " + req.Scenario})
		return
	}

	sess, err := s.manager.Create(cfg, scenario)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sessionView(sess))
}

// Session reads go through WithSession like turns do, so a poll during a
// concurrent turn sees a consistent snapshot instead of racing the writer.
func (s *Server) getSession(c *gin.Context) {
	var view gin.H
	err := s.manager.WithSession(c.Param("id"), func(sess *session.Session) error {
		view = sessionView(sess)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.manager.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type turnRequest struct {
	Setpoints  model.TagMap `json:"setpoints"`
	Controller string       `json:"controller"` // "", "policy", or "mpc"
}

func (s *Server) executeTurn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rec session.TurnRecord
	err := s.manager.WithSession(c.Param("id"), func(sess *session.Session) error {
		if req.Controller == "" {
			var err error
			rec, err = sess.ExecuteTurn(c.Request.Context(), req.Setpoints)
			return err
		}
		ctl, err := s.buildController(req.Controller, sess.Scenario.Plant)
		if err != nil {
			return err
		}
		rec, err = sess.ExecuteControllerTurn(c.Request.Context(), ctl)
		return err
	})

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrSessionOver):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrMissingInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Server) buildController(name string, plant model.PlantType) (control.Controller, error) {
	cfg, ok := s.configs[plant]
	if !ok {
		return nil, errors.New("no configuration for plant type " + string(plant))
	}
	switch name {
	case "policy":
		return control.NewPolicyController(cfg)
	case "mpc":
		return control.NewMPCController(cfg)
	default:
		return nil, errors.New("unknown controller: " + name)
	}
}

func (s *Server) getEvents(c *gin.Context) {
	var events []session.Event
	err := s.manager.WithSession(c.Param("id"), func(sess *session.Session) error {
		events = sess.Events()
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) getScore(c *gin.Context) {
	var sum scoring.Summary
	err := s.manager.WithSession(c.Param("id"), func(sess *session.Session) error {
		sum = sess.Score()
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func sessionView(sess *session.Session) gin.H {
	return gin.H{
		"id":       sess.ID,
		"scenario": sess.Scenario,
		"started":  sess.Started,
		"turn":     sess.Turn(),
		"over":     sess.Over(),
		"state":    sess.State(),
	}
}
