package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutByte(50).
		PutASCII("alice").
		PutASCII("ssh-connection").
		PutASCII("password").
		PutBool(false).
		PutASCII("hunter2")

	r := NewReader(w.Bytes())

	msgNum, err := r.Byte()
	require.NoError(t, err)
	assert.EqualValues(t, 50, msgNum)

	user, err := r.ASCIIString()
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	svc, err := r.ASCIIString()
	require.NoError(t, err)
	assert.Equal(t, "ssh-connection", svc)

	method, err := r.ASCIIString()
	require.NoError(t, err)
	assert.Equal(t, "password", method)

	hasOldPW, err := r.Bool()
	require.NoError(t, err)
	assert.False(t, hasOldPW)

	pw, err := r.ASCIIString()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	assert.Zero(t, r.Remaining())
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 5, 'h', 'i'})
	_, err := r.String()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestWriterResetScrubs(t *testing.T) {
	w := NewWriter()
	w.PutASCII("hunter2")
	raw := w.Bytes()
	w.Reset()
	for _, b := range raw[:cap(raw)] {
		assert.Zero(t, b)
	}
	assert.Zero(t, w.Len())
}

func FuzzStringRoundTrip(f *testing.F) {
	f.Add([]byte("hello"))
	f.Add([]byte(""))
	f.Add([]byte{0xff, 0x00, 0x7f})

	f.Fuzz(func(t *testing.T, payload []byte) {
		w := NewWriter()
		w.PutString(payload)
		r := NewReader(w.Bytes())
		got, err := r.String()
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		if string(got) != string(payload) {
			t.Fatalf("round trip mismatch: got %q want %q", got, payload)
		}
	})
}
