package types

import "encoding/json"

// ClientMessage is one inbound WebSocket frame. The live assistant is
// stateless: every Recommend frame carries a full draft snapshot.
type ClientMessage struct {
	Type      string          `json:"type"` // "Recommend" | "Assign"
	Recommend *RecommendRequest `json:"recommend,omitempty"`
	Assign    *AssignRequest    `json:"assign,omitempty"`
}

// ServerMessage is one outbound WebSocket frame.
type ServerMessage struct {
	Type    string          `json:"type"` // "Recommendation" | "Assignment" | "Error"
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}
