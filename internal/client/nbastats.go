package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrFetch is wrapped by every error returned from a provider lookup
var ErrFetch = errors.New("stats.nba.com fetch failed")

// Endpoints and the result sets read from them
const (
	endpointBoxScore   = "boxscoretraditionalv2"
	endpointScoreboard = "scoreboardv2"
	endpointGameLog    = "leaguegamelog"

	resultSetPlayerStats = "PlayerStats"
	resultSetGameHeader  = "GameHeader"
	resultSetGameLog     = "LeagueGameLog"

	leagueNBA         = "00"
	seasonTypeRegular = "Regular Season"
)

// stats.nba.com rejects requests that don't look like they come from nba.com
const (
	headerReferer   = "https://www.nba.com/"
	headerOrigin    = "https://www.nba.com"
	headerUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client is the stats.nba.com API client. Requests are issued one at a time
// and every request, retries included, is preceded by a fixed delay.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	slot         chan struct{} // one outbound request at a time
	requestDelay time.Duration
	maxRetries   int
}

// NewClient creates a new stats.nba.com API client
func NewClient(baseURL string, timeout, requestDelay time.Duration, maxRetries int) *Client {
	slot := make(chan struct{}, 1)
	slot <- struct{}{}

	return &Client{
		baseURL:      baseURL,
		slot:         slot,
		requestDelay: requestDelay,
		maxRetries:   maxRetries,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchBoxScore fetches the traditional box score player rows of one game.
// A game without player rows returns an empty slice and no error.
func (c *Client) FetchBoxScore(ctx context.Context, gameID string) ([]models.BoxScoreRow, error) {
	params := url.Values{}
	params.Set("GameID", gameID)
	params.Set("StartPeriod", "0")
	params.Set("EndPeriod", "10")
	params.Set("StartRange", "0")
	params.Set("EndRange", "28800")
	params.Set("RangeType", "0")

	resp, err := c.getResultSets(ctx, endpointBoxScore, params)
	if err != nil {
		return nil, fmt.Errorf("%w: box score %s: %w", ErrFetch, gameID, err)
	}

	rs, ok := resp.Find(resultSetPlayerStats)
	if !ok {
		return []models.BoxScoreRow{}, nil
	}
	return rs.Rows(), nil
}

// FetchScoreboardGameIDs returns the ids of the games played on a date
func (c *Client) FetchScoreboardGameIDs(ctx context.Context, date time.Time) ([]string, error) {
	params := url.Values{}
	params.Set("GameDate", date.Format(time.DateOnly))
	params.Set("LeagueID", leagueNBA)
	params.Set("DayOffset", "0")

	resp, err := c.getResultSets(ctx, endpointScoreboard, params)
	if err != nil {
		return nil, fmt.Errorf("%w: scoreboard %s: %w", ErrFetch, date.Format(time.DateOnly), err)
	}

	ids, err := gameIDColumn(resp, resultSetGameHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: scoreboard %s: %w", ErrFetch, date.Format(time.DateOnly), err)
	}
	return ids, nil
}

// FetchSeasonGameIDs returns the game ids of a regular season in log order.
// The log has one row per team per game, so ids repeat.
func (c *Client) FetchSeasonGameIDs(ctx context.Context, season string) ([]string, error) {
	params := url.Values{}
	params.Set("Season", season)
	params.Set("SeasonType", seasonTypeRegular)
	params.Set("LeagueID", leagueNBA)
	params.Set("PlayerOrTeam", "T")
	params.Set("Counter", "0")
	params.Set("Direction", "ASC")
	params.Set("Sorter", "DATE")

	resp, err := c.getResultSets(ctx, endpointGameLog, params)
	if err != nil {
		return nil, fmt.Errorf("%w: game log %s: %w", ErrFetch, season, err)
	}

	ids, err := gameIDColumn(resp, resultSetGameLog)
	if err != nil {
		return nil, fmt.Errorf("%w: game log %s: %w", ErrFetch, season, err)
	}
	return ids, nil
}

func gameIDColumn(resp *models.StatsResponse, name string) ([]string, error) {
	rs, ok := resp.Find(name)
	if !ok {
		return []string{}, nil
	}

	ids := make([]string, 0, len(rs.RowSet))
	for i, row := range rs.Rows() {
		switch v := row["GAME_ID"].(type) {
		case string:
			ids = append(ids, v)
		case float64:
			// game ids are zero-padded to ten digits
			ids = append(ids, fmt.Sprintf("%010d", int64(v)))
		default:
			return nil, fmt.Errorf("%s row %d has no GAME_ID", name, i)
		}
	}
	return ids, nil
}

func (c *Client) getResultSets(ctx context.Context, endpoint string, params url.Values) (*models.StatsResponse, error) {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var resp models.StatsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", endpoint, err)
	}
	return &resp, nil
}

// wait blocks for the inter-request delay
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// get performs a GET request to stats.nba.com with throttling and retry logic
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.slot:
		defer func() { c.slot <- struct{}{} }()
	}

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		delay := c.requestDelay
		if attempt > 0 {
			// Exponential backoff on top of the fixed delay: 1x, 2x, 4x
			delay += c.requestDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("Retrying API request after backoff")
		}

		if err := c.wait(ctx, delay); err != nil {
			return nil, err
		}

		body, retry, err := c.do(ctx, endpoint, reqURL, attempt)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}

	return nil, lastErr
}

// do issues one request. The bool result reports whether the failure is retryable.
func (c *Client) do(ctx context.Context, endpoint, reqURL string, attempt int) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", headerReferer)
	req.Header.Set("Origin", headerOrigin)
	req.Header.Set("User-Agent", headerUserAgent)

	log.Debug().
		Str("url", reqURL).
		Int("attempt", attempt+1).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, true, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		log.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Msg("Received retryable error, will retry")
		return nil, true, fmt.Errorf("API returned retryable status %d", resp.StatusCode)

	default:
		return nil, false, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
