package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// subscribeRequest is the only message clients send on the socket
type subscribeRequest struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	Topic  string `json:"topic"`  // e.g. "post/42/likes"
}

// client is one websocket connection and the set of topics it follows
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]struct{}
}

// ServeWS returns the echo handler that upgrades GET /ws connections
func ServeWS(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		cl := &client{
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, sendBufferSize),
			topics: make(map[string]struct{}),
		}
		go cl.writePump()
		go cl.readPump()
		return nil
	}
}

// readPump consumes subscribe/unsubscribe commands until the peer goes away
func (c *client) readPump() {
	defer func() {
		for topic := range c.topics {
			c.hub.Unsubscribe(topic, c.send)
		}
		close(c.send)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Debugf("Websocket read error: %v", err)
			}
			return
		}
		var req subscribeRequest
		if err := json.Unmarshal(message, &req); err != nil {
			continue
		}
		c.handle(req)
	}
}

func (c *client) handle(req subscribeRequest) {
	if !ValidTopic(req.Topic) {
		return
	}
	switch req.Action {
	case "subscribe":
		if _, ok := c.topics[req.Topic]; ok {
			return
		}
		c.topics[req.Topic] = struct{}{}
		c.hub.Subscribe(req.Topic, c.send)
	case "unsubscribe":
		if _, ok := c.topics[req.Topic]; !ok {
			return
		}
		delete(c.topics, req.Topic)
		c.hub.Unsubscribe(req.Topic, c.send)
	}
}

// writePump pushes event payloads and keepalive pings to the peer
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
