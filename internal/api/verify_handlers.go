package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reelcheck/internal/logging"
	"reelcheck/internal/progress"
	"reelcheck/internal/verify"
)

type verifyRequest struct {
	URL string `json:"url"`
}

// streamMessage is one line of the NDJSON stream (and one WebSocket frame).
// Exactly one of Event and Report is set.
type streamMessage struct {
	Type   string          `json:"type"`
	Event  *progress.Event `json:"event,omitempty"`
	Report *verify.Report  `json:"report,omitempty"`
}

type runOutcome struct {
	report *verify.Report
	err    error
}

// handleVerify runs a verification and streams progress as NDJSON. The last
// line carries the final report.
func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"url\": \"...\"}"})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	flusher, _ := c.Writer.(http.Flusher)
	encoder := json.NewEncoder(c.Writer)

	stream := progress.NewStream(64)
	outcome := make(chan runOutcome, 1)
	go func() {
		report, err := s.runner.Run(c.Request.Context(), req.URL, stream)
		outcome <- runOutcome{report: report, err: err}
		stream.Close()
	}()

	for event := range stream.Events() {
		event := event
		if err := encoder.Encode(streamMessage{Type: "progress", Event: &event}); err != nil {
			// Client went away; let the pipeline finish and drop the rest.
			stream.Close()
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	result := <-outcome
	report := result.report
	if report == nil {
		detail := errorDetail(result.err)
		report = verify.FailureReport(detail.Message, detail.Code)
	}
	if err := encoder.Encode(streamMessage{Type: "report", Report: report}); err != nil {
		s.logger.Warn("writing final report failed", logging.Error(err))
	}
	if flusher != nil {
		flusher.Flush()
	}
}

// handleVerifyWS is the WebSocket flavor of handleVerify: one JSON frame per
// progress event, then a final report frame, then a normal close.
func (s *Server) handleVerifyWS(c *gin.Context) {
	postURL := strings.TrimSpace(c.Query("url"))
	if postURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	stream := progress.NewStream(64)
	outcome := make(chan runOutcome, 1)
	go func() {
		report, err := s.runner.Run(c.Request.Context(), postURL, stream)
		outcome <- runOutcome{report: report, err: err}
		stream.Close()
	}()

	for event := range stream.Events() {
		event := event
		if err := conn.WriteJSON(streamMessage{Type: "progress", Event: &event}); err != nil {
			stream.Close()
			break
		}
	}

	result := <-outcome
	report := result.report
	if report == nil {
		detail := errorDetail(result.err)
		report = verify.FailureReport(detail.Message, detail.Code)
	}
	if err := conn.WriteJSON(streamMessage{Type: "report", Report: report}); err != nil {
		s.logger.Warn("writing final report frame failed", logging.Error(err))
	}
}
