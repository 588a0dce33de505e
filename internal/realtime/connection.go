package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/novadesk/agency-management/internal/auth"
)

// socket is the transport surface the hub needs from a websocket. The
// gorilla connection satisfies it in production; tests use an in-memory fake.
type socket interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn is one live authenticated websocket tagged with its user identity.
// All index membership lives in the Registry; Conn itself only owns the
// transport and its liveness flag.
type Conn struct {
	ID       string
	UserID   int64
	Role     auth.Role
	ClientID *int64

	sock         socket
	writeTimeout time.Duration

	mu    sync.Mutex
	open  bool
	alive bool
}

func newConn(sock socket, user *auth.User, writeTimeout time.Duration) *Conn {
	return &Conn{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Role:         user.Role,
		ClientID:     user.ClientID,
		sock:         sock,
		writeTimeout: writeTimeout,
		open:         true,
		alive:        true,
	}
}

func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// send serializes writes; concurrent broadcasts would otherwise interleave
// frames on the wire.
func (c *Conn) send(frame interface{}) error {
	data, err := marshalFrame(frame)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil
	}
	if d, ok := c.sock.(deadlineSocket); ok && c.writeTimeout > 0 {
		_ = d.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.sock.WriteMessage(textMessage, data)
}

// markAlive is called when any traffic arrives from the client.
func (c *Conn) markAlive() {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()
}

// sweepAlive returns the previous liveness and arms the next heartbeat
// window. A false return means this connection missed the entire previous
// interval.
func (c *Conn) sweepAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasAlive := c.alive
	c.alive = false
	return wasAlive
}

func (c *Conn) close() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.open = false
	c.mu.Unlock()
	_ = c.sock.Close()
}

// deadlineSocket is implemented by the gorilla connection.
type deadlineSocket interface {
	SetWriteDeadline(t time.Time) error
}

// textMessage mirrors gorilla's websocket.TextMessage so the fake sockets in
// tests need no gorilla import.
const textMessage = 1
