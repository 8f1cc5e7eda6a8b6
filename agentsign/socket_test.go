package agentsign

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/pki"
	"github.com/sage-x-project/sshauth/wire"
)

// fakeAgentServer implements just enough of the agent wire protocol to
// exercise SocketAgent's framing against a real Unix socket.
func fakeAgentServer(t *testing.T, ln net.Listener, kp pki.KeyPair) {
	t.Helper()
	conn, err := ln.Accept()
	require.NoError(t, err)
	defer conn.Close()

	for {
		msgNum, body, err := readFrame(conn)
		if err != nil {
			return
		}
		switch msgNum {
		case msgRequestIdentities:
			blob, err := kp.PublicKeyBlob()
			require.NoError(t, err)
			answer := wire.NewWriter().PutUint32(1).PutString(blob).PutASCII(kp.ID()).Bytes()
			require.NoError(t, sendFrame(conn, msgIdentitiesAnswer, answer))
		case msgSignRequest:
			r := wire.NewReader(body)
			_, err := r.String() // key blob
			require.NoError(t, err)
			buf, err := r.String()
			require.NoError(t, err)
			sig, err := kp.Sign(buf)
			require.NoError(t, err)
			resp := wire.NewWriter().PutString(sig).Bytes()
			require.NoError(t, sendFrame(conn, msgSignResponse, resp))
		default:
			require.NoError(t, sendFrame(conn, msgFailure, nil))
		}
	}
}

func TestSocketAgentIdentitiesAndSign(t *testing.T) {
	kp, err := pki.GenerateEd25519()
	require.NoError(t, err)

	sockPath := filepath.Join(t.TempDir(), "agent.sock")
	ln, err := net.Listen("unix", sockPath)
	require.NoError(t, err)
	defer ln.Close()

	go fakeAgentServer(t, ln, kp)

	agent, err := DialSocketAgent(sockPath)
	require.NoError(t, err)
	defer agent.Close()

	ids, err := agent.Identities()
	require.NoError(t, err)
	require.Len(t, ids, 1)

	sig, err := agent.Sign(ids[0].Blob, []byte("buffer-to-sign"))
	require.NoError(t, err)
	require.NoError(t, kp.Verify([]byte("buffer-to-sign"), sig))
}
