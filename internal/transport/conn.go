// Package transport wraps the C6 wire protocol around a duplex byte stream,
// giving the master and worker loops a small, typed call surface instead of
// raw reader/writer plumbing. It plays the role the teacher's meshage
// package plays for minimega nodes, but speaks the fixed-width internal/wire
// framing instead of encoding/gob.
package transport

import (
	"io"
	"sync"

	"github.com/sandia-netshield/netshield/internal/flow"
	"github.com/sandia-netshield/netshield/internal/wire"
)

// Conn is a single master<->worker duplex connection. Writes and reads are
// each serialized with their own mutex, so two sends (or two receives) on the
// same Conn cannot interleave their frames, while a send and a receive on the
// same Conn may proceed concurrently (master reads results from N workers
// while writing new windows to others).
type Conn struct {
	rw io.ReadWriter

	writeMu sync.Mutex
	readMu  sync.Mutex
}

// New wraps rw (typically one end of a net.Pipe, or a TCP connection) as a
// transport Conn.
func New(rw io.ReadWriter) *Conn {
	return &Conn{rw: rw}
}

// SendWindow writes a flow window to the peer.
func (c *Conn) SendWindow(win flow.Window) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wire.WriteWindow(c.rw, win)
}

// RecvWindow reads a flow window sent by the peer.
func (c *Conn) RecvWindow() (flow.Window, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	return wire.ReadWindow(c.rw)
}

// SendResult writes a window result to the peer.
func (c *Conn) SendResult(res flow.WindowResult) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wire.WriteResult(c.rw, res)
}

// RecvResult reads a window result sent by the peer.
func (c *Conn) RecvResult() (flow.WindowResult, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	return wire.ReadResult(c.rw)
}

// RecvDispatch reads the next window-or-terminate message from the peer,
// for a worker's receive loop that must accept either without knowing in
// advance which is coming.
func (c *Conn) RecvDispatch() (win flow.Window, terminated bool, err error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	return wire.ReadDispatch(c.rw)
}

// SendTerminate writes a TERMINATE message carrying code (conventionally
// flow.Terminate).
func (c *Conn) SendTerminate(code int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wire.WriteTerminate(c.rw, code)
}

// RecvTerminate blocks for a TERMINATE message.
func (c *Conn) RecvTerminate() (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	return wire.ReadTerminate(c.rw)
}

// Close closes the underlying stream if it supports io.Closer. Pipes created
// with net.Pipe and most network connections do.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
