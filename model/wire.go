package model

// Attachment is the wire form of a message attachment.
type Attachment struct {
	URL string `json:"url"`
}

// WireMessage is the client-facing form of a stored message.
type WireMessage struct {
	ID         string      `json:"id"`
	Server     string      `json:"server"`
	Source     string      `json:"source"`
	User       Profile     `json:"user"`
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment"`
	ReplyTo    string      `json:"replyTo,omitempty"`
	CreatedAt  int64       `json:"createdAt"`
}

// EnrichedMessage is a WireMessage augmented at read/broadcast time with
// its reaction view and, when the parent is known, a live snapshot of the
// replied-to message.
type EnrichedMessage struct {
	WireMessage
	Reactions     ReactionView `json:"reactions"`
	ReplySnapshot *WireMessage `json:"replySnapshot"`
}

// SystemMessage is a synthetic broadcast-only message (joins, leaves,
// room switches). Never persisted.
type SystemMessage struct {
	ID        string `json:"id"`
	System    bool   `json:"system"`
	Text      string `json:"text"`
	Server    string `json:"server"`
	CreatedAt int64  `json:"createdAt"`
}

// Wire converts a stored row to its client-facing form.
func (m Message) Wire() WireMessage {
	wire := WireMessage{
		ID:        m.ID,
		Server:    m.Server,
		Source:    m.Source,
		User:      m.Author(),
		Text:      m.Text,
		ReplyTo:   m.ReplyTo,
		CreatedAt: m.CreatedAt,
	}
	if m.Attachment != "" {
		wire.Attachment = &Attachment{URL: m.Attachment}
	}
	return wire
}
