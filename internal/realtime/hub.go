package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/auth"
	"github.com/novadesk/agency-management/internal/chat"
	"github.com/novadesk/agency-management/internal/notification"
)

// AuthAPI verifies the token presented on the upgrade request.
type AuthAPI interface {
	ResolveUser(token string) (*auth.User, error)
}

// VisibilityAPI answers which projects a user may subscribe to.
type VisibilityAPI interface {
	VisibleProjectIDs(ctx context.Context, user *auth.User) ([]int64, error)
	CanAccess(ctx context.Context, user *auth.User, projectID int64) (bool, error)
}

// Hub is the process-wide connection registry and broadcast router. Both
// indexes are owned by the embedded Registry; every mutation goes through
// the hub's methods.
type Hub struct {
	registry   *Registry
	auth       AuthAPI
	visibility VisibilityAPI
	cfg        internal.RealtimeConfig
	logger     *slog.Logger
	upgrader   websocket.Upgrader

	stopOnce sync.Once
	stop     chan struct{}
}

func NewHub(authAPI AuthAPI, visibility VisibilityAPI, cfg internal.RealtimeConfig, logger *slog.Logger) *Hub {
	return &Hub{
		registry:   NewRegistry(),
		auth:       authAPI,
		visibility: visibility,
		cfg:        cfg,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the CORS layer in front.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		stop: make(chan struct{}),
	}
}

// Start launches the heartbeat sweeper. Stop terminates it.
func (h *Hub) Start() {
	if h.cfg.HeartbeatInterval <= 0 {
		return
	}
	go h.heartbeatLoop()
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// HandleWS upgrades the request and runs the connection until it closes.
// Token verification happens after the upgrade so an authentication failure
// can be signaled with close code 1008, which clients distinguish from a
// network drop.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	token := r.URL.Query().Get("token")
	user, err := h.auth.ResolveUser(token)
	if err != nil {
		h.logger.Info("websocket authentication failed", "error", err)
		deadline := time.Now().Add(time.Second)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"), deadline)
		_ = ws.Close()
		return
	}

	conn := newConn(ws, user, h.cfg.WriteTimeout)
	h.registry.Register(conn)

	if h.cfg.MaxMessageSize > 0 {
		ws.SetReadLimit(h.cfg.MaxMessageSize)
	}
	ws.SetPongHandler(func(string) error {
		conn.markAlive()
		return nil
	})

	autoSubscribed, err := h.autoSubscribe(r.Context(), conn, user)
	if err != nil {
		h.logger.Error("auto-subscribe failed", "user_id", user.ID, "error", err)
		h.drop(conn)
		return
	}

	_ = conn.send(connectedFrame{Type: frameConnected, UserID: user.ID, AutoSubscribed: autoSubscribed})
	if user.Role.IsStaff() {
		_ = conn.send(subscribedAllFrame{
			Type:         frameSubscribedAll,
			ProjectCount: len(autoSubscribed),
			ProjectIDs:   autoSubscribed,
		})
	}

	h.logger.Info("websocket connected",
		"user_id", user.ID,
		"role", string(user.Role),
		"auto_subscribed", len(autoSubscribed))

	h.readLoop(conn, user, ws)
}

// autoSubscribe applies the role policy: staff joins every project,
// developers join projects carrying their tasks, clients join nothing and
// must subscribe explicitly.
func (h *Hub) autoSubscribe(ctx context.Context, conn *Conn, user *auth.User) ([]int64, error) {
	if user.Role == auth.RoleClient {
		return nil, nil
	}

	ids, err := h.visibility.VisibleProjectIDs(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		h.registry.Subscribe(conn, id)
	}
	return ids, nil
}

func (h *Hub) readLoop(conn *Conn, user *auth.User, ws *websocket.Conn) {
	defer h.drop(conn)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		conn.markAlive()

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			_ = conn.send(errorFrame{Type: frameError, Message: "malformed frame"})
			continue
		}
		h.dispatch(conn, user, frame)
	}
}

// dispatch handles one inbound frame. Protocol errors answer with an error
// frame and keep the connection open.
func (h *Hub) dispatch(conn *Conn, user *auth.User, frame clientFrame) {
	switch frame.Type {
	case frameSubscribe:
		h.handleSubscribe(conn, user, frame.ProjectID)
	case frameUnsubscribe:
		h.registry.Unsubscribe(conn, frame.ProjectID)
		_ = conn.send(unsubscribedFrame{Type: frameUnsubscribed, ProjectID: frame.ProjectID})
	case framePing:
		_ = conn.send(pongFrame{Type: framePong})
	default:
		_ = conn.send(errorFrame{Type: frameError, Message: "unknown frame type"})
	}
}

// handleSubscribe access-checks at the moment of subscription. A client
// whose clientId does not own the project gets an error frame, never a
// silent no-op.
func (h *Hub) handleSubscribe(conn *Conn, user *auth.User, projectID int64) {
	if projectID <= 0 {
		_ = conn.send(errorFrame{Type: frameError, Message: "projectId is required"})
		return
	}

	allowed, err := h.visibility.CanAccess(context.Background(), user, projectID)
	if err != nil || !allowed {
		_ = conn.send(errorFrame{Type: frameError, Message: "no access to this project"})
		return
	}

	h.registry.Subscribe(conn, projectID)
	_ = conn.send(subscribedFrame{Type: frameSubscribed, ProjectID: projectID})
}

// BroadcastMessage pushes a chat message to every open subscriber of the
// project. Closed or half-dead transports are skipped.
func (h *Hub) BroadcastMessage(projectID int64, message *chat.Message) {
	frame := newMessageFrame{Type: frameNewMessage, ProjectID: projectID, Message: message}
	for _, conn := range h.registry.SubscribersOf(projectID) {
		if !conn.IsOpen() {
			continue
		}
		if err := conn.send(frame); err != nil {
			h.logger.Warn("broadcast write failed", "user_id", conn.UserID, "error", err)
		}
	}
}

// BroadcastNotification pushes a notification to every open connection of
// one user, covering multiple tabs and devices.
func (h *Hub) BroadcastNotification(userID int64, n *notification.Notification) {
	frame := notificationFrame{Type: frameNotification, Notification: n}
	for _, conn := range h.registry.ConnectionsOf(userID) {
		if !conn.IsOpen() {
			continue
		}
		if err := conn.send(frame); err != nil {
			h.logger.Warn("notification write failed", "user_id", conn.UserID, "error", err)
		}
	}
}

func (h *Hub) heartbeatLoop() {
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-h.stop:
			return
		}
	}
}

// sweep evicts every connection that stayed silent for the whole previous
// heartbeat window, then pings the survivors.
func (h *Hub) sweep() {
	for _, conn := range h.registry.AllConnections() {
		if !conn.sweepAlive() {
			h.logger.Info("evicting unresponsive connection", "user_id", conn.UserID)
			h.drop(conn)
			continue
		}
		if p, ok := conn.sock.(pingSocket); ok {
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			_ = p.WriteControl(websocket.PingMessage, nil, deadline)
		}
	}
}

// drop closes the transport and removes the connection from both indexes.
func (h *Hub) drop(conn *Conn) {
	conn.close()
	h.registry.RemoveConnection(conn)
}

type pingSocket interface {
	WriteControl(messageType int, data []byte, deadline time.Time) error
}
