package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attritioninsight/models"
	"attritioninsight/validation"
)

// ChatHandler runs one conversational turn
// @Summary      Ask a question about the dataset
// @Description  Sends the message to the language model with the dataset summary as context. When the answer carries a chart request, or the question names attrition and a known dimension, the chart is rendered and returned as base64 PNG. Model failures come back with status "error" and leave the history untouched.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      models.ChatRequest  true  "Question and optional session id"
// @Success      200      {object}  models.ChatResult   "Answer, optionally with a chart"
// @Failure      400      {object}  map[string]string   "Invalid request"
// @Router       /api/chat [post]
func (h *Handlers) ChatHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := validation.CheckSessionID(req.SessionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.CheckQuery(req.Message); err != nil {
		msg := err.Error()
		if errors.Is(err, validation.ErrGibberish) {
			msg = "The request appears to be invalid or gibberish. Please provide a meaningful message."
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	result := h.sessions.Chat(c.Request.Context(), req.SessionID, req.Message)

	fields := []zap.Field{zap.String("session_id", result.SessionID), zap.String("status", result.Status)}
	if result.PlotData != nil {
		fields = append(fields, zap.String("plot_type", string(result.PlotData.Type)))
	}
	h.log.Info("chat turn", fields...)

	c.JSON(http.StatusOK, result)
}

// ResetHandler clears a conversation
// @Summary      Reset a conversation
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      models.ResetRequest     true  "Session to reset"
// @Success      200      {object}  models.StatusResponse
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /api/chat/reset [post]
func (h *Handlers) ResetHandler(c *gin.Context) {
	var req models.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validation.ValidSessionID(req.SessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}
	if err := h.sessions.Reset(req.SessionID); err != nil {
		h.log.Error("reset failed", zap.String("session_id", req.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: models.StatusSuccess, Message: "Conversation history cleared"})
}

// HistoryHandler returns the transcript of a conversation
// @Summary      Get conversation history
// @Tags         Chat
// @Produce      json
// @Param        session_id  query     string  true  "Session ID"
// @Success      200         {object}  models.HistoryResponse
// @Failure      400         {object}  map[string]string
// @Router       /api/chat/history [get]
func (h *Handlers) HistoryHandler(c *gin.Context) {
	id := c.Query("session_id")
	if !validation.ValidSessionID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}
	messages, err := h.sessions.History(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, models.HistoryResponse{SessionID: id, Messages: messages})
}

// ListSessionsHandler returns all persisted conversations (most recent first).
// @Summary      List conversations
// @Tags         Chat
// @Produce      json
// @Success      200  {array}   models.SessionInfo
// @Router       /api/chat/sessions [get]
func (h *Handlers) ListSessionsHandler(c *gin.Context) {
	sessions, err := h.sessions.Sessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}
