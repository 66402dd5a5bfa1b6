package lolpros

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const searchURL = "https://api.lolpros.gg/es/search"

type Profile struct {
	Slug string `json:"slug"`
}

type Client struct {
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         5 * time.Second,
			WriteTimeout:        5 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// SearchProfile looks up a community profile by riot id. Returns the first
// matching slug; ok is false when no profile exists.
func (c *Client) SearchProfile(ctx context.Context, gameName, tagLine string) (slug string, ok bool, err error) {
	query := url.QueryEscape(gameName + "#" + tagLine)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(searchURL + "?query=" + query)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return "", false, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return "", false, fmt.Errorf("lolpros API error: %d", resp.StatusCode())
	}

	var profiles []Profile
	if err := json.Unmarshal(resp.Body(), &profiles); err != nil {
		return "", false, err
	}

	if len(profiles) == 0 {
		return "", false, nil
	}
	if len(profiles) > 1 {
		c.logger.Warn().
			Str("game_name", gameName).
			Str("tag_line", tagLine).
			Int("matches", len(profiles)).
			Msg("multiple lolpros profiles matched, taking first")
	}

	return profiles[0].Slug, true, nil
}
