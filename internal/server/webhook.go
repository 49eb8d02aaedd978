package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/10xdev4u-alt/plan/internal/events"
	"github.com/10xdev4u-alt/plan/internal/store"
	"github.com/10xdev4u-alt/plan/internal/telegram"
)

// webhookResponse is the acknowledgement body Telegram sees. Telegram
// retries non-2xx deliveries, so only store failures return one.
type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleTelegramWebhook captures inbound bot messages as ideas under the
// configured owner profile. Updates without a message are acknowledged
// without writing anything.
func (s *Server) handleTelegramWebhook(c echo.Context) error {
	if !s.limiter.Allow() {
		return c.JSON(http.StatusTooManyRequests, webhookResponse{
			Success: false,
			Error:   "Too Many Requests",
		})
	}

	var update telegram.Update
	if err := c.Bind(&update); err != nil {
		s.logger.Error("webhook decode failed", zap.Error(err))
		s.metrics.webhookFailures.Inc()
		return c.JSON(http.StatusInternalServerError, webhookResponse{
			Success: false,
			Error:   "Internal Server Error",
		})
	}
	if update.Message == nil || update.Message.Text == "" {
		return c.JSON(http.StatusOK, webhookResponse{
			Success: true,
			Message: "Webhook received",
		})
	}

	ctx := c.Request().Context()
	text := update.Message.Text
	idea, err := s.store.CreateIdea(ctx, store.NewIdea{
		Title:       titleFromText(text),
		Description: text,
		Category:    store.CategoryRandom,
		UserID:      s.config.WebhookOwnerID,
	})
	if err != nil {
		s.logger.Error("webhook capture failed", zap.Error(err))
		s.metrics.webhookFailures.Inc()
		return c.JSON(http.StatusInternalServerError, webhookResponse{
			Success: false,
			Error:   "Internal Server Error",
		})
	}

	if err := s.store.RecordActivity(ctx, idea.UserID, &idea.ID, store.ActionIdeaCaptured,
		map[string]any{"title": idea.Title, "source": sourceTelegram}); err != nil {
		s.logger.Warn("record activity failed", zap.Error(err))
	}
	if err := s.bus.PublishIdeaChange(events.Event{Type: events.TypeInsert, Idea: *idea}); err != nil {
		s.logger.Warn("publish idea change failed", zap.Error(err))
	}
	s.metrics.ideasCaptured.WithLabelValues(sourceTelegram).Inc()

	// The reply is best-effort; a send failure never turns the ack into
	// an error, or Telegram would redeliver the update.
	reply := fmt.Sprintf("Idea captured: <b>%s</b>", html.EscapeString(idea.Title))
	if err := s.tg.SendMessage(ctx, update.Message.Chat.ID, reply); err != nil {
		s.logger.Warn("webhook reply failed", zap.Error(err))
	}

	return c.JSON(http.StatusOK, webhookResponse{
		Success: true,
		Message: "Idea captured",
	})
}
