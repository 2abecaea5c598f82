package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/query"
	"github.com/poiesic/pitwall/refresh"
	"github.com/poiesic/pitwall/storage"
	"github.com/poiesic/pitwall/topics"
)

func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.svc.Answer(c.Request.Context(), req.Question, req.TopicHint)
	if err != nil {
		s.fail(c, "error answering question", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handlePartitionQuery(c *gin.Context) {
	var req PartitionQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	key := core.TopicKey(c.Param("topicKey"))
	result, err := s.svc.Query(c.Request.Context(), key, req.Question)
	if err != nil {
		s.fail(c, "error querying partition", err)
		return
	}
	c.JSON(http.StatusOK, PartitionQueryResponse{
		Answer:      result.Answer,
		ContextUsed: result.ContextUsed,
	})
}

func (s *Server) handlePartitionUpdate(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	key := core.TopicKey(c.Param("topicKey"))
	if req.TopicKey != "" && req.TopicKey != key {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: storage.ErrTopicMismatch.Error()})
		return
	}

	count, err := s.svc.Ingest(c.Request.Context(), key, toRawArticles(req.Articles, s.now()))
	if err != nil {
		s.fail(c, "error updating partition", err)
		return
	}
	c.JSON(http.StatusOK, UpdateResponse{Status: "updated", Count: count})
}

func (s *Server) handleTopics(c *gin.Context) {
	statuses, err := s.svc.Topics(c.Request.Context())
	if err != nil {
		s.fail(c, "error listing topics", err)
		return
	}
	c.JSON(http.StatusOK, TopicsResponse{Topics: statuses})
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.svc.Refresh(c.Request.Context()); err != nil {
		s.fail(c, "error starting refresh", err)
		return
	}
	c.JSON(http.StatusAccepted, StatusResponse{Status: "started"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// fail maps err onto a status code. Internal failures are logged and their
// details withheld from the client.
func (s *Server) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(msg, "path", c.Request.URL.Path, "err", err)
		c.JSON(status, ErrorResponse{Error: "Internal Error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrEmptyQuestion),
		errors.Is(err, core.ErrInvalidTopicKey),
		errors.Is(err, storage.ErrTopicMismatch):
		return http.StatusBadRequest
	case errors.Is(err, topics.ErrUnknownTopic):
		return http.StatusNotFound
	case errors.Is(err, refresh.ErrCycleRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
