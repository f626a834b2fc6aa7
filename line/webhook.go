package line

import (
	"encoding/json"
	"time"
)

const (
	EventFollow   = "follow"
	EventUnfollow = "unfollow"
)

type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type Event struct {
	Type       string `json:"type"`
	Timestamp  int64  `json:"timestamp"` // milliseconds since epoch
	ReplyToken string `json:"replyToken,omitempty"`
	Source     Source `json:"source"`
}

func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

type WebhookBody struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

func ParseWebhook(body []byte) (*WebhookBody, error) {
	payload := &WebhookBody{}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// UserEvents keeps follow and unfollow events that come from a user source.
func (w *WebhookBody) UserEvents() []Event {
	var out []Event
	for _, ev := range w.Events {
		if ev.Type != EventFollow && ev.Type != EventUnfollow {
			continue
		}
		if ev.Source.Type != "user" || ev.Source.UserID == "" {
			continue
		}
		out = append(out, ev)
	}
	return out
}
