package model

// Sources of federated-room messages. Messages in any other room carry
// their room key as the source.
const (
	SourceVortexLocal  = "vortex:local"
	SourceVortexRemote = "vortex:remote"
)

// Message is the durable message row. The author fields are a snapshot
// taken at send time, not a live reference to the users table. Rows are
// immutable once written except for the Synced flag.
type Message struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Server     string `gorm:"index:idx_messages_server,priority:1" json:"server"`
	Source     string `json:"source"`
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Avatar     string `json:"avatar"`
	Text       string `json:"text"`
	Attachment string `json:"attachment"`
	ReplyTo    string `json:"replyTo"`
	Synced     bool   `json:"synced"`
	CreatedAt  int64  `gorm:"index:idx_messages_server,priority:2" json:"createdAt"`
}

func (m Message) Author() Profile {
	return Profile{ID: m.UserID, Name: m.Name, Color: m.Color, Avatar: m.Avatar}
}
