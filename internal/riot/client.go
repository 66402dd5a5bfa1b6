package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"dodgetracker/internal/config"
	"dodgetracker/internal/domain"
)

const rankedSoloQueue = "RANKED_SOLO_5x5"

var tierPaths = map[domain.RankTier]string{
	domain.TierMaster:      "masterleagues",
	domain.TierGrandmaster: "grandmasterleagues",
	domain.TierChallenger:  "challengerleagues",
}

type Client struct {
	apiKey string
	client *fasthttp.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey: cfg.RiotAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// GetLeague fetches the full ladder for one apex tier of one region.
func (c *Client) GetLeague(ctx context.Context, region Region, tier domain.RankTier) (*LeagueList, error) {
	path, ok := tierPaths[tier]
	if !ok {
		return nil, fmt.Errorf("unknown rank tier: %s", tier)
	}
	endpoint := fmt.Sprintf("https://%s/lol/league/v4/%s/by-queue/%s", region.PlatformHost(), path, rankedSoloQueue)
	return doRequest[LeagueList](ctx, c, endpoint)
}

// GetSummonerByID resolves a region-scoped summoner id to its summoner record.
func (c *Client) GetSummonerByID(ctx context.Context, region Region, summonerID string) (*Summoner, error) {
	endpoint := fmt.Sprintf("https://%s/lol/summoner/v4/summoners/%s", region.PlatformHost(), url.PathEscape(summonerID))
	return doRequest[Summoner](ctx, c, endpoint)
}

// GetAccountByPUUID resolves the linked global account. Always routed through
// the fixed routing region regardless of the player's home region.
func (c *Client) GetAccountByPUUID(ctx context.Context, puuid string) (*Account, error) {
	endpoint := fmt.Sprintf("https://%s/riot/account/v1/accounts/by-puuid/%s", RegionalHost(), url.PathEscape(puuid))
	return doRequest[Account](ctx, c, endpoint)
}

func doRequest[T any](ctx context.Context, client *Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", client.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("riot API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type LeagueList struct {
	Tier    string       `json:"tier"`
	Queue   string       `json:"queue"`
	Name    string       `json:"name"`
	Entries []LeagueItem `json:"entries"`
}

type LeagueItem struct {
	SummonerID   string `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Veteran      bool   `json:"veteran"`
	Inactive     bool   `json:"inactive"`
	FreshBlood   bool   `json:"freshBlood"`
	HotStreak    bool   `json:"hotStreak"`
}

type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	Puuid         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int64  `json:"summonerLevel"`
	RevisionDate  int64  `json:"revisionDate"`
}

type Account struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}
