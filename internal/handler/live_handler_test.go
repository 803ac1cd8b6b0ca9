package handler_test

import (
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lynx-api/internal/dto"
)

func TestLiveBoardStream(t *testing.T) {
	api := newTestAPI(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = api.app.Listener(ln) }()
	t.Cleanup(func() { _ = api.app.ShutdownWithTimeout(time.Second) })

	student := token(t, "u1", "student", "Siti")
	endpoint := url.URL{
		Scheme:   "ws",
		Host:     ln.Addr().String(),
		Path:     "/api/v1/student/live",
		RawQuery: url.Values{"access_token": {student}}.Encode(),
	}

	conn, resp, err := websocket.DefaultDialer.Dial(endpoint.String(), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	defer conn.Close()

	var initial dto.LiveBoardMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&initial))
	require.Equal(t, "board", initial.Type)
	require.Nil(t, initial.Event)
	require.Equal(t, 2, initial.Board.Counts.OnGoing)

	status, body := api.sendFile(t, "/api/v1/student/submissions", student, map[string]string{"assignment_id": "a1"}, "esai.pdf", pdfContent)
	require.Equal(t, http.StatusCreated, status, body.Message)

	var update dto.LiveBoardMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&update))
	require.NotNil(t, update.Event)
	require.Equal(t, dto.LiveEventSubmissionCreated, update.Event.Type)
	require.Equal(t, dto.BoardCounts{OnGoing: 1, Submitted: 1}, update.Board.Counts)
}

func TestLiveRequiresUpgrade(t *testing.T) {
	api := newTestAPI(t, nil)

	req, err := http.NewRequest(http.MethodGet, "/api/v1/student/live", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token(t, "u1", "student", "Siti"))

	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
