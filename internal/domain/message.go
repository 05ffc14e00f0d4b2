package domain

// ChatMessage is wire-shaped. Timestamp is RFC3339 and server-stamped, so
// every client renders the same authoritative time; SenderID is the
// transport-verified connection id, never taken from the payload.
type ChatMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	SenderID  ConnID `json:"senderId"`
}
