package daq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_PlaysScriptThenCloses(t *testing.T) {
	lines := []string{
		"Time (ms),Sensor 0 (raw),Sensor 1 (raw),Sensor 2 (raw)",
		"520,100,200,300",
		"WARNING: Missed 1.56 samples!",
		"1800,101,201,301",
	}

	replay := NewReplay(lines, 0)
	require.NoError(t, replay.Connect())
	assert.True(t, replay.IsConnected())

	var got []Record
	timeout := time.After(5 * time.Second)
	for {
		select {
		case rec, ok := <-replay.Records():
			if !ok {
				assert.Len(t, got, len(lines))
				assert.Equal(t, KindHeader, got[0].Kind)
				assert.Equal(t, KindData, got[1].Kind)
				assert.Equal(t, KindWarning, got[2].Kind)
				assert.Equal(t, uint32(1800), got[3].Timestamp)
				return
			}
			got = append(got, rec)
		case <-timeout:
			t.Fatal("records channel did not close after script ended")
		}
	}
}

func TestReplay_DoubleConnectFails(t *testing.T) {
	replay := NewReplay(nil, 0)
	require.NoError(t, replay.Connect())
	assert.Error(t, replay.Connect())
}

func TestReplay_GracefulShutdown(t *testing.T) {
	// A long-interval script stalls mid-playback; Close must still stop
	// it and the records channel must close.
	lines := []string{"520,1,2,3", "1020,1,2,3", "1520,1,2,3"}
	replay := NewReplay(lines, time.Hour)
	require.NoError(t, replay.Connect())

	require.NoError(t, replay.Close())
	assert.False(t, replay.IsConnected())

	select {
	case _, ok := <-replay.Records():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(5 * time.Second):
		t.Fatal("records channel did not close within timeout")
	}
}

func TestReplay_CloseWithoutConnect(t *testing.T) {
	replay := NewReplay(nil, 0)
	assert.NoError(t, replay.Close())
}
