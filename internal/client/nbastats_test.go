package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boxScoreJSON = `{
  "resource": "boxscore",
  "resultSets": [
    {
      "name": "PlayerStats",
      "headers": ["GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "PLAYER_ID", "PLAYER_NAME", "MIN", "PTS"],
      "rowSet": [
        ["0022300001", 1610612738, "BOS", 1628369, "Jayson Tatum", "36:12", 27],
        ["0022300001", 1610612752, "NYK", 1629628, "RJ Barrett", "32:45", 19]
      ]
    },
    {
      "name": "TeamStats",
      "headers": ["GAME_ID", "TEAM_ID"],
      "rowSet": [["0022300001", 1610612738]]
    }
  ]
}`

func newTestClient(url string, delay time.Duration, retries int) *Client {
	return NewClient(url, 2*time.Second, delay, retries)
}

func TestFetchBoxScore(t *testing.T) {
	var gotPath, gotGameID, gotReferer, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotGameID = r.URL.Query().Get("GameID")
		gotReferer = r.Header.Get("Referer")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(boxScoreJSON))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 0)
	rows, err := c.FetchBoxScore(context.Background(), "0022300001")
	require.NoError(t, err)

	assert.Equal(t, "/boxscoretraditionalv2", gotPath)
	assert.Equal(t, "0022300001", gotGameID)
	assert.Equal(t, "https://www.nba.com/", gotReferer)
	assert.NotEmpty(t, gotUA)

	require.Len(t, rows, 2)
	assert.Equal(t, "0022300001", rows[0]["GAME_ID"])
	assert.Equal(t, float64(1628369), rows[0]["PLAYER_ID"])
	assert.Equal(t, "32:45", rows[1]["MIN"])
	assert.Equal(t, float64(19), rows[1]["PTS"])
}

func TestFetchBoxScore_NoPlayerStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultSets": []}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 0)
	rows, err := c.FetchBoxScore(context.Background(), "0022300001")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFetchBoxScore_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>blocked</html>`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 0)
	rows, err := c.FetchBoxScore(context.Background(), "0022300001")
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestFetchBoxScore_RetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(boxScoreJSON))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 3)
	rows, err := c.FetchBoxScore(context.Background(), "0022300001")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchBoxScore_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 2)
	_, err := c.FetchBoxScore(context.Background(), "0022300001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchBoxScore_TimesOut(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, 50*time.Millisecond, time.Millisecond, 1)

	start := time.Now()
	_, err := c.FetchBoxScore(context.Background(), "0022300001")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Less(t, elapsed, time.Second, "each attempt must stop at the client timeout")
	assert.Equal(t, int32(2), calls.Load(), "a timed out attempt is retried")
}

func TestFetchBoxScore_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 3)
	_, err := c.FetchBoxScore(context.Background(), "0022300001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_DelaysEveryRequest(t *testing.T) {
	const delay = 40 * time.Millisecond

	var mu sync.Mutex
	var arrivals []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(boxScoreJSON))
	}))
	defer server.Close()

	c := newTestClient(server.URL, delay, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.FetchBoxScore(context.Background(), "0022300001")
		require.NoError(t, err)
	}

	require.Len(t, arrivals, 3)
	assert.GreaterOrEqual(t, arrivals[0].Sub(start), delay)
	for i := 1; i < len(arrivals); i++ {
		assert.GreaterOrEqual(t, arrivals[i].Sub(arrivals[i-1]), delay)
	}
}

func TestClient_CancelledDuringDelay(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Hour, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.FetchBoxScore(ctx, "0022300001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Equal(t, int32(0), calls.Load())
}

func TestFetchScoreboardGameIDs(t *testing.T) {
	var gotDate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scoreboardv2", r.URL.Path)
		gotDate = r.URL.Query().Get("GameDate")
		_, _ = w.Write([]byte(`{"resultSets": [
			{"name": "GameHeader", "headers": ["GAME_DATE_EST", "GAME_ID"],
			 "rowSet": [["2023-10-24T00:00:00", "0022300061"], ["2023-10-24T00:00:00", "0022300062"]]},
			{"name": "LineScore", "headers": ["GAME_ID"], "rowSet": [["0022300061"]]}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 0)
	ids, err := c.FetchScoreboardGameIDs(context.Background(), time.Date(2023, time.October, 24, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2023-10-24", gotDate)
	assert.Equal(t, []string{"0022300061", "0022300062"}, ids)
}

func TestFetchSeasonGameIDs(t *testing.T) {
	var gotSeason, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leaguegamelog", r.URL.Path)
		gotSeason = r.URL.Query().Get("Season")
		gotType = r.URL.Query().Get("SeasonType")
		_, _ = w.Write([]byte(`{"resultSets": [
			{"name": "LeagueGameLog", "headers": ["SEASON_ID", "TEAM_ID", "GAME_ID"],
			 "rowSet": [["22023", 1610612743, "0022300061"], ["22023", 1610612747, "0022300061"], ["22023", 1610612738, 22300062]]}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 0)
	ids, err := c.FetchSeasonGameIDs(context.Background(), "2023-24")
	require.NoError(t, err)

	assert.Equal(t, "2023-24", gotSeason)
	assert.Equal(t, "Regular Season", gotType)
	assert.Equal(t, []string{"0022300061", "0022300061", "0022300062"}, ids)
}

func TestFetchSeasonGameIDs_MissingGameID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultSets": [
			{"name": "LeagueGameLog", "headers": ["SEASON_ID"], "rowSet": [["22023"]]}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond, 0)
	_, err := c.FetchSeasonGameIDs(context.Background(), "2023-24")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
}
