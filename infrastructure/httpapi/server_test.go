package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-arena/contract"
	"quiz-arena/domain"
	"quiz-arena/observability"
	"quiz-arena/repositories"

	"github.com/stretchr/testify/require"
)

type stubService struct {
	leaderboard []repositories.LeaderboardEntry
	stats       repositories.PlayerStats
	statsFound  bool
	games       []repositories.GameHistory
	answers     []repositories.AnswerRecord
}

func (s *stubService) JoinRoom(string, domain.RoomID, string, contract.EventSink) {}
func (s *stubService) SubmitAnswer(string, domain.RoomID, string)                 {}
func (s *stubService) TimeUp(string, domain.RoomID)                               {}
func (s *stubService) Disconnect(string)                                          {}

func (s *stubService) Leaderboard(int) ([]repositories.LeaderboardEntry, error) {
	return s.leaderboard, nil
}

func (s *stubService) PlayerStats(string) (repositories.PlayerStats, bool, error) {
	return s.stats, s.statsFound, nil
}

func (s *stubService) PlayerGames(string) ([]repositories.GameHistory, error) {
	return s.games, nil
}

func (s *stubService) PlayerQuestions(string) ([]repositories.AnswerRecord, error) {
	return s.answers, nil
}

func newTestServer(service *stubService) *httptest.Server {
	server := NewServer(slog.Default(), service, observability.NewMonitor(slog.Default()))
	return httptest.NewServer(server.Routes())
}

func TestServer_Health(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
}

func TestServer_Leaderboard(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubService{leaderboard: []repositories.LeaderboardEntry{
		{Username: "Alice", TotalScore: 12},
		{Username: "Bob", TotalScore: 7},
	}})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/leaderboard?top=2")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var entries []repositories.LeaderboardEntry
	req.NoError(json.NewDecoder(resp.Body).Decode(&entries))
	req.Len(entries, 2)
	req.Equal("Alice", entries[0].Username)
}

func TestServer_Player_Stats_Not_Found(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubService{statsFound: false})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/player/Ghost/stats")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Equal("Player not found", body["error"])
}

func TestServer_Player_Games_Empty_Is_An_Array(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/player/Alice/games")
	req.NoError(err)
	defer resp.Body.Close()

	var games []repositories.GameHistory
	req.NoError(json.NewDecoder(resp.Body).Decode(&games))
	req.NotNil(games)
	req.Empty(games)
}

func TestServer_Player_Questions_Empty_Is_An_Array(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/player/Alice/questions")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var answers []repositories.AnswerRecord
	req.NoError(json.NewDecoder(resp.Body).Decode(&answers))
	req.NotNil(answers)
	req.Empty(answers)
}

func TestServer_Monitoring_Snapshot(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/monitoring")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var stats observability.MonitoringStats
	req.NoError(json.NewDecoder(resp.Body).Decode(&stats))
	req.Zero(stats.GamesStarted)
}
