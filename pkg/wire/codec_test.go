package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Run("MethodCallWithPayload", func(t *testing.T) {
		f := Frame{
			Type:     FrameMethodCall,
			NodeID:   1,
			AspectID: 0xABCD,
			Opcode:   0x1234,
			CallID:   7,
			FdCount:  0,
			Payload:  []byte{0x01, 0x02, 0x03},
		}
		buf, err := Encode(f)
		require.NoError(t, err)

		got, err := Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, f, got)
	})

	t.Run("SignalEmptyPayload", func(t *testing.T) {
		f := Frame{Type: FrameSignal, NodeID: 0, Opcode: 42}
		buf, err := Encode(f)
		require.NoError(t, err)
		got, err := Decode(buf)
		require.NoError(t, err)
		assert.Empty(t, got.Payload)
		assert.Equal(t, FrameSignal, got.Type)
	})

	t.Run("DecodeHeaderReportsTotalBeforeBodyArrives", func(t *testing.T) {
		f := Frame{Type: FrameMethodResponseOK, CallID: 3, Payload: []byte{0xAA, 0xBB}}
		buf, err := Encode(f)
		require.NoError(t, err)

		_, total, err := DecodeHeader(buf[:4+headerSize])
		require.NoError(t, err)
		assert.Equal(t, len(buf), total)
	})
}

func TestEncodeRejectsOversizeFrame(t *testing.T) {
	f := Frame{Payload: make([]byte, MaxFrameSize)}
	_, err := Encode(f)
	require.Error(t, err)
	var tooLarge *ErrFrameTooLarge
	assert.ErrorAs(t, err, &tooLarge)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{0, 0, 0, 100})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestValidateFdCount(t *testing.T) {
	f := Frame{FdCount: 2}
	assert.NoError(t, ValidateFdCount(f, 2))
	assert.Error(t, ValidateFdCount(f, 1))
}

func TestFrameTypeString(t *testing.T) {
	assert.Equal(t, "signal", FrameSignal.String())
	assert.Equal(t, "method_call", FrameMethodCall.String())
	assert.Equal(t, "method_response_ok", FrameMethodResponseOK.String())
	assert.Equal(t, "method_response_err", FrameMethodResponseErr.String())
}
