package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxCallnameLen    = 16
)

// Client represents one WebSocket connection bound to at most one player
// id in the single shared arena (SPEC_FULL §5: no per-match sharding).
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	remoteAddr string
	binary     bool // true once the client negotiated the msgpack sub-protocol
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client. binary is set from the negotiated
// WebSocket sub-protocol (SPEC_FULL §11 msgpack wiring).
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string, binary bool) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		binary:     binary,
	}
}

// ReadPump reads messages from the WebSocket connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws read error", map[string]interface{}{"remoteAddr": c.remoteAddr, "error": err.Error()})
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Warn("rate limit exceeded, disconnecting", map[string]interface{}{"remoteAddr": c.remoteAddr})
			RecordConnectionRejected("rate_limit")
			break
		}

		if msgType == websocket.BinaryMessage {
			c.handleEnvelope(message, true)
		} else {
			c.handleEnvelope(message, false)
		}
	}
}

// WritePump writes messages to the WebSocket connection.
func (c *Client) WritePump() {
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
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
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

// SendRaw sends pre-marshaled bytes as a text message to the client.
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message,
// prefixed with a 0xFF marker so WritePump can tell it apart from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendEnvelope(env Envelope) {
	if c.binary {
		b, err := msgpack.Marshal(env)
		if err != nil {
			log.Error("msgpack encode failed", err, map[string]interface{}{"event": env.Type})
			return
		}
		c.SendBinary(b)
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		log.Error("json encode failed", err, map[string]interface{}{"event": env.Type})
		return
	}
	c.SendRaw(b)
}

func (c *Client) sendError(text string) {
	c.sendEnvelope(Envelope{Type: "error", Data: map[string]string{"message": text}})
}

// handleEnvelope decodes one inbound message (JSON or msgpack, per how it
// arrived) and dispatches it by event name.
func (c *Client) handleEnvelope(raw []byte, binary bool) {
	var (
		eventType string
		payload   json.RawMessage
	)
	if binary {
		var env struct {
			Type string          `msgpack:"type"`
			Data msgpack.RawMessage `msgpack:"data"`
		}
		if err := msgpack.Unmarshal(raw, &env); err != nil {
			log.Debug("msgpack unmarshal failed", map[string]interface{}{"remoteAddr": c.remoteAddr, "error": err.Error()})
			return
		}
		eventType = env.Type
		// Re-encode to JSON so the rest of the dispatch path has a single
		// decode shape regardless of wire format.
		var v interface{}
		if err := msgpack.Unmarshal(env.Data, &v); err == nil {
			if b, err := json.Marshal(v); err == nil {
				payload = b
			}
		}
	} else {
		var env InEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Debug("json unmarshal failed", map[string]interface{}{"remoteAddr": c.remoteAddr, "error": err.Error()})
			return
		}
		eventType = env.Type
		payload = env.Data
	}
	c.dispatch(eventType, payload)
}

// dispatch routes one decoded inbound event to its handler (SPEC_FULL §6
// event table).
func (c *Client) dispatch(eventType string, data json.RawMessage) {
	switch eventType {
	case EventJoin:
		c.handleJoin(data)
	case EventPlayerInput:
		c.handlePlayerInput(data)
	case EventToggleAI:
		c.handleToggleAI(data)
	case EventApplyAISettings:
		c.handleApplyAISettings(data)
	case EventResetGame:
		c.hub.game.ResetGame()
	case EventChangeTerrainMap:
		c.handleChangeTerrainMap(data)
	case EventUpdateSettings, EventApplySettings:
		c.handleApplySettings(data)
	case EventSetPlayerAttributes:
		c.handleSetPlayerAttributes(data)
	case EventSetPlayerAttributeLimit:
		c.handleSetPlayerAttributeLimit(data)
	case EventRequestGameState:
		c.sendEnvelope(Envelope{Type: EventGameState, Data: c.hub.game.Snapshot()})
	case EventRequestPlayerState:
		c.handleRequestPlayerState()
	default:
		log.Debug("unknown inbound event", map[string]interface{}{"type": eventType})
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	callname := msg.Callname
	if callname == "" {
		callname = "Tanker"
	}
	if len(callname) > maxCallnameLen {
		callname = callname[:maxCallnameLen]
	}
	msg.Callname = callname

	id := GenerateID(8)
	reconnect := c.hub.game.AddPlayer(id, msg)
	c.playerID = id

	team := lookupTeam(msg.TeamName)
	if reconnect {
		c.sendEnvelope(Envelope{Type: EventReconnected, Data: ReconnectedMsg{PlayerID: id}})
	} else {
		c.sendEnvelope(Envelope{Type: EventJoined, Data: JoinedMsg{PlayerID: id, Team: TeamDTO{Name: team.Name, Color: team.Color}}})
	}
	c.sendEnvelope(Envelope{Type: EventGameState, Data: c.hub.game.Snapshot()})
}

func (c *Client) handlePlayerInput(data json.RawMessage) {
	if c.playerID == "" {
		return
	}
	var msg PlayerInputMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.HandleInput(c.playerID, msg)
}

func (c *Client) handleToggleAI(data json.RawMessage) {
	var msg ToggleAIMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.Enabled {
		c.hub.game.AddAI(AIIntermediate)
	} else {
		c.hub.game.RemoveAI()
	}
}

func (c *Client) handleApplyAISettings(data json.RawMessage) {
	var msg ApplyAISettingsMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.ApplyAISettings(msg.AICount, parseAILevel(msg.AILevel))
}

func (c *Client) handleChangeTerrainMap(data json.RawMessage) {
	var msg ChangeTerrainMapMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	tm, ok := lookupTerrainMap(c.hub.db, msg.MapName)
	if !ok {
		log.Warn("unknown terrain map", map[string]interface{}{"event": EventChangeTerrainMap, "playerID": c.playerID, "mapName": msg.MapName})
		c.sendError("unknown terrain map: " + msg.MapName)
		return
	}
	c.hub.game.ChangeTerrainMap(tm.Name, tm.Tree, tm.Patch)
}

func (c *Client) handleApplySettings(data json.RawMessage) {
	var msg SettingsPatch
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.ApplySettings(msg)
}

func (c *Client) handleSetPlayerAttributes(data json.RawMessage) {
	var msg SetPlayerAttributesMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.SetPlayerAttributes(msg.Attributes)
}

func (c *Client) handleSetPlayerAttributeLimit(data json.RawMessage) {
	var msg SetPlayerAttributeLimitMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !c.hub.game.SetAttributeLimit(msg.AttributeName, msg.Bound, msg.Value) {
		log.Warn("unknown attribute limit", map[string]interface{}{"event": EventSetPlayerAttributeLimit, "playerID": c.playerID, "attributeName": msg.AttributeName, "bound": msg.Bound})
		c.sendError("unknown attribute: " + msg.AttributeName)
	}
}

func (c *Client) handleRequestPlayerState() {
	if c.playerID == "" {
		return
	}
	state, ok := c.hub.game.PlayerState(c.playerID)
	if !ok {
		return
	}
	c.sendEnvelope(Envelope{Type: EventPlayerState, Data: state})
}
