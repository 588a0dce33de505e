package realtime

import (
	"encoding/json"
)

// Client to server frame types.
const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
	framePing        = "ping"
)

// Server to client frame types.
const (
	frameConnected     = "connected"
	frameSubscribed    = "subscribed"
	frameSubscribedAll = "subscribed_all"
	frameUnsubscribed  = "unsubscribed"
	frameNewMessage    = "new_message"
	frameNotification  = "notification"
	framePong          = "pong"
	frameError         = "error"
)

// clientFrame is the only inbound shape; unknown types produce an error
// frame back, never a disconnect.
type clientFrame struct {
	Type      string `json:"type"`
	ProjectID int64  `json:"projectId,omitempty"`
}

type connectedFrame struct {
	Type           string  `json:"type"`
	UserID         int64   `json:"userId"`
	AutoSubscribed []int64 `json:"autoSubscribed"`
}

type subscribedFrame struct {
	Type      string `json:"type"`
	ProjectID int64  `json:"projectId"`
}

type subscribedAllFrame struct {
	Type         string  `json:"type"`
	ProjectCount int     `json:"projectCount"`
	ProjectIDs   []int64 `json:"projectIds"`
}

type unsubscribedFrame struct {
	Type      string `json:"type"`
	ProjectID int64  `json:"projectId"`
}

type newMessageFrame struct {
	Type      string      `json:"type"`
	ProjectID int64       `json:"projectId"`
	Message   interface{} `json:"message"`
}

type notificationFrame struct {
	Type         string      `json:"type"`
	Notification interface{} `json:"notification"`
}

type pongFrame struct {
	Type string `json:"type"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func marshalFrame(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
