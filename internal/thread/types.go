package thread

// Message senders. Messages are immutable once created; ordering is by
// array position, which must agree with timestamps (append-only).
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message is a single chat message inside a thread.
type Message struct {
	ID            string `json:"id"`
	Text          string `json:"text,omitempty"`
	Sender        string `json:"sender"`
	Timestamp     int64  `json:"timestamp"` // epoch millis
	ImageURL      string `json:"imageUrl,omitempty"`
	ImageMimeType string `json:"imageMimeType,omitempty"`
	AudioURL      string `json:"audioUrl,omitempty"`
}

// Thread is one persisted conversation session. Title, LastMessage,
// LastMessageTime and MessageCount are derived metadata recomputed on every
// save; Messages is the authoritative log.
type Thread struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime int64     `json:"lastMessageTime"`
	MessageCount    int       `json:"messageCount"`
	CreatedAt       int64     `json:"createdAt"`
	Messages        []Message `json:"messages,omitempty"`
}

// metadata is the persisted shape of a thread without its message bodies.
type metadata struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	LastMessage     string `json:"lastMessage"`
	LastMessageTime int64  `json:"lastMessageTime"`
	MessageCount    int    `json:"messageCount"`
	CreatedAt       int64  `json:"createdAt"`
}
