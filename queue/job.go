package queue

import (
	"encoding/json"
	"time"
)

const (
	KindFollow   = "follow"
	KindUnfollow = "unfollow"
)

// Job is a webhook event waiting to be linked or unlinked.
type Job struct {
	Kind       string `json:"kind"`
	Mode       string `json:"mode,omitempty"`
	UserID     string `json:"userId"`
	ReplyToken string `json:"replyToken,omitempty"`
	EventTS    int64  `json:"eventTs"` // milliseconds since epoch
}

func (j Job) EventTime() time.Time {
	return time.UnixMilli(j.EventTS)
}

func (j Job) encode() (string, error) {
	b, err := json.Marshal(j)
	return string(b), err
}

func decode(payload string) (Job, error) {
	var j Job
	err := json.Unmarshal([]byte(payload), &j)
	return j, err
}
