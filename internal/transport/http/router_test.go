package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/domain"
	"github.com/iamasit07/blockfall/backend/internal/service/game"
	"github.com/iamasit07/blockfall/backend/internal/service/leaderboard"
	"github.com/iamasit07/blockfall/backend/pkg/auth"
)

type testServer struct {
	router      *gin.Engine
	games       *game.Service
	leaderboard *leaderboard.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signer := auth.NewSigner("test-secret", time.Hour)
	games := game.NewService(game.NewSessionManager(config.DefaultGameConfig(), nil, nil, nil), signer)
	lb := leaderboard.NewService(leaderboard.NewMemoryRepo(100), nil, 0, nil)

	router := NewRouter(RouterDeps{
		GameService:    games,
		Leaderboard:    lb,
		Tokens:         signer,
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	return &testServer{router: router, games: games, leaderboard: lb}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createMatch(t *testing.T, req game.MatchRequest) createMatchResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/matches", "", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp createMatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestCreateMatchWithEmptyBody(t *testing.T) {
	s := newTestServer(t)

	resp := s.createMatch(t, game.MatchRequest{})
	assert.NotEmpty(t, resp.MatchID)
	require.Len(t, resp.Sides, 1)
	assert.Equal(t, "Player 1", resp.Sides[0].Name)
	assert.NotEmpty(t, resp.Sides[0].Token)
	require.Len(t, resp.Snapshots, 1)
	assert.NotNil(t, resp.Snapshots[0].Active)
}

func TestCreateMatchSeedIsEchoed(t *testing.T) {
	s := newTestServer(t)
	seed := uint64(42)

	first := s.createMatch(t, game.MatchRequest{Players: 2, Seed: &seed})
	second := s.createMatch(t, game.MatchRequest{Players: 2, Seed: &seed})

	assert.Equal(t, seed, first.Seed)
	require.Len(t, first.Snapshots, 2)
	assert.Equal(t, first.Snapshots[0].Active.Kind, second.Snapshots[0].Active.Kind)
	assert.Equal(t, first.Snapshots[0].Next, first.Snapshots[1].Next)
}

func TestCreateMatchRejectsBadPlayers(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/matches", "", game.MatchRequest{Players: 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMatchWithoutControllerFails(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/matches", "", game.MatchRequest{AI: []bool{true}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, s.games.Manager.ActiveMatches())
}

func TestGetMatch(t *testing.T) {
	s := newTestServer(t)
	created := s.createMatch(t, game.MatchRequest{})

	rec := s.do(t, http.MethodGet, "/api/matches/"+created.MatchID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp matchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.MatchID, resp.MatchID)
	assert.Len(t, resp.Snapshots, 1)

	rec = s.do(t, http.MethodGet, "/api/matches/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/matches/00000000-0000-4000-8000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMatches(t *testing.T) {
	s := newTestServer(t)
	s.createMatch(t, game.MatchRequest{Players: 2, Names: []string{"ada", "bob"}})

	rec := s.do(t, http.MethodGet, "/api/matches", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []liveMatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Len(t, resp[0].Players, 2)
	assert.Equal(t, "ada", resp[0].Players[0].Name)
	assert.Equal(t, "bob", resp[0].Players[1].Name)
	assert.False(t, resp[0].Finished)
}

func TestInputRequiresToken(t *testing.T) {
	s := newTestServer(t)
	created := s.createMatch(t, game.MatchRequest{})
	path := "/api/matches/" + created.MatchID + "/input"

	rec := s.do(t, http.MethodPost, path, "", inputRequest{Action: "left"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, path, "garbage", inputRequest{Action: "left"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := s.createMatch(t, game.MatchRequest{})
	rec = s.do(t, http.MethodPost, path, other.Sides[0].Token, inputRequest{Action: "left"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInputMovesPiece(t *testing.T) {
	s := newTestServer(t)
	created := s.createMatch(t, game.MatchRequest{})
	path := "/api/matches/" + created.MatchID + "/input"
	token := created.Sides[0].Token
	startCol := created.Snapshots[0].Active.Col

	rec := s.do(t, http.MethodPost, path, token, inputRequest{Action: "left"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp matchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, startCol-1, resp.Snapshots[0].Active.Col)

	rec = s.do(t, http.MethodPost, path, token, inputRequest{Action: "pause"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Snapshots[0].Paused)

	rec = s.do(t, http.MethodPost, path, token, inputRequest{Action: "jump"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInputOnRemovedMatch(t *testing.T) {
	s := newTestServer(t)
	created := s.createMatch(t, game.MatchRequest{})
	require.NoError(t, s.games.Manager.RemoveMatch(created.MatchID))

	rec := s.do(t, http.MethodPost, "/api/matches/"+created.MatchID+"/input", created.Sides[0].Token, inputRequest{Action: "left"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboard(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.leaderboard.Record(ctx, domain.ScoreEntry{Name: "low", Score: 100}))
	require.NoError(t, s.leaderboard.Record(ctx, domain.ScoreEntry{Name: "high", Score: 900}))

	rec := s.do(t, http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []domain.ScoreEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "high", entries[0].Name)
}
