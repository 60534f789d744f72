package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandia-netshield/netshield/internal/flow"
)

func pipePair() (*Conn, *Conn) {
	a, b := net.Pipe()
	return New(a), New(b)
}

func TestConn_WindowRoundTrip(t *testing.T) {
	master, worker := pipePair()
	defer master.Close()
	defer worker.Close()

	win := flow.Window{ID: 1, StartRow: 0, EndRow: 9, Flows: []flow.Record{
		{SrcAddr: "10.0.0.1", DstAddr: "10.0.0.2", Protocol: 6},
	}}

	done := make(chan error, 1)
	go func() { done <- master.SendWindow(win) }()

	got, err := worker.RecvWindow()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, win, got)
}

func TestConn_ResultRoundTrip(t *testing.T) {
	master, worker := pipePair()
	defer master.Close()
	defer worker.Close()

	res := flow.WindowResult{WindowID: 2, CombinedPrediction: 1, Suspects: []string{"1.2.3.4"}}

	done := make(chan error, 1)
	go func() { done <- worker.SendResult(res) }()

	got, err := master.RecvResult()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, res.WindowID, got.WindowID)
	assert.Equal(t, res.CombinedPrediction, got.CombinedPrediction)
}

func TestConn_RecvDispatch_Window(t *testing.T) {
	master, worker := pipePair()
	defer master.Close()
	defer worker.Close()

	win := flow.Window{ID: 5, StartRow: 1, EndRow: 2}

	go func() { _ = master.SendWindow(win) }()

	got, terminated, err := worker.RecvDispatch()
	require.NoError(t, err)
	assert.False(t, terminated)
	assert.Equal(t, win.ID, got.ID)
}

func TestConn_RecvDispatch_Terminate(t *testing.T) {
	master, worker := pipePair()
	defer master.Close()
	defer worker.Close()

	go func() { _ = master.SendTerminate(flow.Terminate) }()

	_, terminated, err := worker.RecvDispatch()
	require.NoError(t, err)
	assert.True(t, terminated)
}

func TestConn_IndependentReadWriteLocks(t *testing.T) {
	master, worker := pipePair()
	defer master.Close()
	defer worker.Close()

	res := flow.WindowResult{WindowID: 9}
	win := flow.Window{ID: 9}

	errs := make(chan error, 2)
	go func() { errs <- worker.SendResult(res) }()
	go func() { errs <- master.SendWindow(win) }()

	// net.Pipe writes block until the peer reads, so both sends are still in
	// flight here; each Conn must be able to receive while its own send holds
	// the write lock.
	var err1, err2 error
	done := make(chan struct{})
	go func() {
		_, err1 = master.RecvResult()
		_, err2 = worker.RecvWindow()
		close(done)
	}()

	select {
	case <-time.After(2 * time.Second):
		t.Fatal("timed out: concurrent send/recv on independent locks deadlocked")
	case <-done:
	}

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NoError(t, <-errs)
	assert.NoError(t, <-errs)
}
