package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kubex/rclink/line"
	"github.com/kubex/rclink/queue"
	"go.uber.org/zap"
)

// webhook always answers 200 so LINE does not redeliver; linking happens on
// the queue worker.
func (s *Server) webhook(c *gin.Context) {
	defer c.JSON(http.StatusOK, gin.H{"ok": true})

	body, err := c.GetRawData()
	if err != nil {
		s.log.Warn("failed to read webhook body", zap.Error(err))
		return
	}

	if !s.opts.AllowInsecure && !line.VerifySignature(s.opts.ChannelSecret, body, c.GetHeader(line.SignatureHeader)) {
		s.log.Warn("invalid LINE signature")
		return
	}

	payload, err := line.ParseWebhook(body)
	if err != nil {
		s.log.Warn("failed to parse webhook body", zap.Error(err))
		return
	}

	for _, ev := range payload.UserEvents() {
		job := queue.Job{
			Kind:       ev.Type,
			Mode:       s.opts.OnboardingMode,
			UserID:     ev.Source.UserID,
			ReplyToken: ev.ReplyToken,
			EventTS:    ev.Timestamp,
		}
		if err := s.jobs.Enqueue(c.Request.Context(), job); err != nil {
			s.log.Error("failed to enqueue job", zap.String("kind", job.Kind), zap.String("userId", job.UserID), zap.Error(err))
		}
	}
}
