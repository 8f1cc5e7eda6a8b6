package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/wire"
)

func newWSPair(t *testing.T, serverHandle func(*websocket.Conn)) *WSTransport {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverHandle(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	return NewWSTransport(clientConn)
}

func TestWSTransportRequestService(t *testing.T) {
	tr := newWSPair(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, byte(msgServiceRequest), msg[0])
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{msgServiceAccept}))
	})

	status, err := tr.RequestService("ssh-userauth")
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	// Re-entry short-circuits without another round trip.
	status, err = tr.RequestService("ssh-userauth")
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
}

func TestWSTransportPumpUntilTimesOutAsAgain(t *testing.T) {
	tr := newWSPair(t, func(conn *websocket.Conn) {
		time.Sleep(200 * time.Millisecond)
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x34})
	})

	status, err := tr.PumpUntil(20*time.Millisecond, func() bool { return false })
	require.NoError(t, err)
	require.Equal(t, StatusAgain, status)
}

func TestWSTransportPumpUntilDispatches(t *testing.T) {
	tr := newWSPair(t, func(conn *websocket.Conn) {
		body := wire.NewWriter().PutASCII("hello").Bytes()
		conn.WriteMessage(websocket.BinaryMessage, append([]byte{0x34}, body...))
	})

	var received byte
	done := false
	tr.SetHandler(func(msgNum byte, payload []byte) error {
		received = msgNum
		done = true
		return nil
	})

	status, err := tr.PumpUntil(time.Second, func() bool { return done })
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.Equal(t, byte(0x34), received)
}
