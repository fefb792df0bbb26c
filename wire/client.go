// SPDX-License-Identifier: EPL-2.0

package wire

import (
	"bufio"
	"fmt"
	"io"
	"net"
)

// Client speaks the request protocol over one connection. It is not safe
// for concurrent use.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to a server; network is "unix" or "tcp".
func Dial(network, addr string) (*Client, error) {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, r: bufio.NewReader(conn)}
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

// Transcode asks the server to prepare path for loading.
func (c *Client) Transcode(path string) error {
	buf := byteOrder.AppendUint32(nil, uint32(OpTranscode))
	buf = byteOrder.AppendUint32(buf, uint32(len(path)))
	buf = append(buf, path...)
	if _, err := c.conn.Write(buf); err != nil {
		return err
	}
	return c.status()
}

// Load analyses the transcoded track.
func (c *Client) Load() error {
	if err := writeInt32(c.conn, int32(OpLoad)); err != nil {
		return err
	}
	return c.status()
}

// Header fetches the header of the current set and pins that set for the
// next Payload call.
func (c *Client) Header() (Header, error) {
	if err := writeInt32(c.conn, int32(OpHeader)); err != nil {
		return Header{}, err
	}
	if err := c.status(); err != nil {
		return Header{}, err
	}
	return ReadHeader(c.r)
}

// Payload fetches the payload described by h.
func (c *Client) Payload(h Header) (*Payload, error) {
	if err := writeInt32(c.conn, int32(OpPayload)); err != nil {
		return nil, err
	}
	if err := c.status(); err != nil {
		return nil, err
	}
	return ReadPayload(c.r, h)
}

// status reads a reply status, turning failures into *RemoteError.
func (c *Client) status() error {
	st, err := readInt32(c.r)
	if err != nil {
		return err
	}
	if Status(st) == StatusOK {
		return nil
	}

	n, err := readInt32(c.r)
	if err != nil {
		return err
	}
	if n < 0 || n > 1<<20 {
		return fmt.Errorf("%w: message length %d", ErrInvalidHeader, n)
	}
	msg := make([]byte, n)
	if _, err := io.ReadFull(c.r, msg); err != nil {
		return err
	}
	return &RemoteError{Status: Status(st), Message: string(msg)}
}
