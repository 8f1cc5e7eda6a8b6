package userauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/wire"
)

func TestBuildRequestPrefixRoundTrip(t *testing.T) {
	packet := BuildNoneRequest("alice")
	r := wire.NewReader(packet)
	msgNum, err := r.Byte()
	require.NoError(t, err)
	assert.Equal(t, byte(MsgUserauthRequest), msgNum)
	username, err := r.ASCIIString()
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	service, err := r.ASCIIString()
	require.NoError(t, err)
	assert.Equal(t, "ssh-connection", service)
	method, err := r.ASCIIString()
	require.NoError(t, err)
	assert.Equal(t, "none", method)
	assert.Equal(t, 0, r.Remaining())
}

func TestBuildPasswordRequest(t *testing.T) {
	packet := BuildPasswordRequest("bob", []byte("hunter2"))
	r := wire.NewReader(packet)
	r.Byte()
	r.ASCIIString()
	r.ASCIIString()
	method, _ := r.ASCIIString()
	assert.Equal(t, "password", method)
	changeReq, err := r.Bool()
	require.NoError(t, err)
	assert.False(t, changeReq)
	pw, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(pw))
}

func TestBuildPublicKeyOfferAndSignRequests(t *testing.T) {
	offer := BuildPublicKeyOfferRequest("carol", "ssh-ed25519", []byte("keyblob"))
	r := wire.NewReader(offer)
	r.Byte()
	r.ASCIIString()
	r.ASCIIString()
	r.ASCIIString()
	hasSig, _ := r.Bool()
	assert.False(t, hasSig, "offer must carry bool 0")

	sign := BuildPublicKeySignRequest("carol", "ssh-ed25519", []byte("keyblob"), []byte("sigblob"))
	r2 := wire.NewReader(sign)
	r2.Byte()
	r2.ASCIIString()
	r2.ASCIIString()
	r2.ASCIIString()
	hasSig2, _ := r2.Bool()
	assert.True(t, hasSig2, "sign must carry bool 1")
	algo, _ := r2.ASCIIString()
	assert.Equal(t, "ssh-ed25519", algo)
	blob, _ := r2.String()
	assert.Equal(t, "keyblob", string(blob))
	sig, _ := r2.String()
	assert.Equal(t, "sigblob", string(sig))
}

func TestPublicKeySignaturePayloadStartsWithSessionID(t *testing.T) {
	sessionID := []byte("exchange-hash-bytes")
	payload := PublicKeySignaturePayload(sessionID, "dave", "ssh-ed25519", []byte("keyblob"))
	r := wire.NewReader(payload)
	got, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
	msgNum, _ := r.Byte()
	assert.Equal(t, byte(MsgUserauthRequest), msgNum)
}

func TestBuildInfoResponse(t *testing.T) {
	packet := BuildInfoResponse([]string{"p", "123456"})
	r := wire.NewReader(packet)
	msgNum, _ := r.Byte()
	assert.Equal(t, byte(MsgUserauthInfoResponse), msgNum)
	n, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)
	a0, _ := r.ASCIIString()
	a1, _ := r.ASCIIString()
	assert.Equal(t, "p", a0)
	assert.Equal(t, "123456", a1)
}

func TestParseFailure(t *testing.T) {
	body := wire.NewWriter().PutASCII("password,publickey").PutBool(false).Bytes()
	res, err := ParseFailure(body)
	require.NoError(t, err)
	assert.Equal(t, "password,publickey", res.MethodList)
	assert.False(t, res.Partial)
}

func TestParseInfoRequestBounds(t *testing.T) {
	body := wire.NewWriter().PutASCII("PAM").PutASCII("auth").PutASCII("").PutUint32(0).Bytes()
	_, err := ParseInfoRequest(body)
	assert.Error(t, err, "zero prompts must be rejected")

	tooMany := wire.NewWriter().PutASCII("PAM").PutASCII("auth").PutASCII("").PutUint32(MaxPrompts + 1).Bytes()
	_, err = ParseInfoRequest(tooMany)
	assert.Error(t, err, "prompts beyond MaxPrompts must be rejected")
}

func TestParseInfoRequestValid(t *testing.T) {
	body := wire.NewWriter().
		PutASCII("PAM").PutASCII("Please authenticate").PutASCII("").
		PutUint32(2).
		PutASCII("Password:").PutBool(false).
		PutASCII("OTP:").PutBool(true).
		Bytes()
	req, err := ParseInfoRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "PAM", req.Name)
	require.Len(t, req.Prompts, 2)
	assert.Equal(t, "Password:", req.Prompts[0].Text)
	assert.False(t, req.Prompts[0].Echo)
	assert.True(t, req.Prompts[1].Echo)
}
