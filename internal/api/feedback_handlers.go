package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/bookradio/bookradio-server/internal/http/response"
	"github.com/bookradio/bookradio-server/internal/service"
)

// handleSubmitFeedback validates a feedback form and mails it to the site
// operators.
func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req service.FeedbackRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.feedbackService.Submit(r.Context(), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{
		"status": "sent",
	}, s.logger)
}
