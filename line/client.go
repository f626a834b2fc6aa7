package line

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultAPIBase = "https://api.line.me"

type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// Client calls the Messaging API with a channel access token.
type Client struct {
	http *resty.Client
}

func NewClient(apiBase, accessToken string) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		http: resty.New().
			SetBaseURL(apiBase).
			SetAuthToken(accessToken).
			SetTimeout(5 * time.Second),
	}
}

// GetProfile fetches the user's current display name.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	profile := &Profile{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("userId", userID).
		SetResult(profile).
		Get("/v2/bot/profile/{userId}")
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get profile: status %d", resp.StatusCode())
	}
	return profile, nil
}
