package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSubscribe Action = "subscribe"
	ActionPing      Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SubscribeRequest selects which event topics the client wants pushed.
// An empty topic list subscribes to everything.
type SubscribeRequest struct {
	Action Action   `json:"action"`
	Topics []string `json:"topics"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventPlan     Event = "plan"
	EventPong     Event = "pong"
)

// TopicEvent wraps one pub/sub message pushed to the client.
type TopicEvent struct {
	Event   Event  `json:"event"`
	Payload string `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
