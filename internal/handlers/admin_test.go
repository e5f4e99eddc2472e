package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jason-s-yu/thulla/internal/auth"
	"github.com/jason-s-yu/thulla/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminServer(t *testing.T, password string) *GameServer {
	t.Helper()
	cfg := testConfig()
	if password != "" {
		hash, err := auth.HashPassword(password)
		require.NoError(t, err)
		cfg.AdminPasswordHash = hash
	}
	gs, _ := newTestServer(t, cfg)
	return gs
}

func login(t *testing.T, h http.Handler, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(loginRequest{Password: password})
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body)))
	return rr
}

func TestHealth(t *testing.T) {
	gs := newAdminServer(t, "")
	_, err := gs.Store.Join()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	gs.Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, healthResponse{Status: "ok", Phase: "waiting", Players: 1}, resp)
}

func TestAdminLoginDisabledWithoutHash(t *testing.T) {
	gs := newAdminServer(t, "")
	rr := login(t, gs.Routes(), "anything")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminLogin(t *testing.T) {
	gs := newAdminServer(t, "s3cret")
	h := gs.Routes()

	assert.Equal(t, http.StatusForbidden, login(t, h, "wrong").Code)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = login(t, h, "s3cret")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	sub, err := gs.Tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, adminSubject, sub)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, authCookie, cookies[0].Name)
}

func TestAdminStateRequiresToken(t *testing.T) {
	gs := newAdminServer(t, "s3cret")
	h := gs.Routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/state", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/state", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	notAdmin, err := gs.Tokens.Issue("player")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin/state", nil)
	req.Header.Set("Authorization", "Bearer "+notAdmin)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAdminStateReturnsSnapshot(t *testing.T) {
	gs := newAdminServer(t, "s3cret")
	h := gs.Routes()
	for i := 0; i < 2; i++ {
		_, err := gs.Store.Join()
		require.NoError(t, err)
	}

	token, err := gs.Tokens.Issue(adminSubject)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/state", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var snap struct {
		Phase     string `json:"phase"`
		DeckSize  int    `json:"deck_size"`
		FreeSeats []int  `json:"free_seats"`
		Seats     []struct {
			PlayerID int `json:"player_id"`
			HandSize int `json:"hand_size"`
		} `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, "waiting", snap.Phase)
	assert.Equal(t, 52, snap.DeckSize)
	assert.Equal(t, []int{2, 3}, snap.FreeSeats)
	require.Len(t, snap.Seats, 2)
	assert.Equal(t, 1, snap.Seats[1].PlayerID)
}

func TestAdminResetBroadcastsAbort(t *testing.T) {
	gs := newAdminServer(t, "s3cret")
	h := gs.Routes()
	sub := gs.Broadcaster.Subscribe(8)
	defer sub.Close()

	rr := login(t, h, "s3cret")
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/reset", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	ev := <-sub.C()
	assert.Equal(t, game.AbortGame(), ev)
}
