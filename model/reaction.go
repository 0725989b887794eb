package model

// Reaction is one emoji reaction row. The (message, user, emoji) triple
// is unique: re-adding the same reaction refreshes CreatedAt instead of
// inserting a duplicate, which is what keeps the untransacted toggle safe.
type Reaction struct {
	ID        string `gorm:"primaryKey" json:"id"`
	MessageID string `gorm:"uniqueIndex:idx_reactions_triple,priority:1;index:idx_reactions_msg" json:"messageId"`
	UserID    string `gorm:"uniqueIndex:idx_reactions_triple,priority:2" json:"userId"`
	Server    string `json:"server"`
	Emoji     string `gorm:"uniqueIndex:idx_reactions_triple,priority:3" json:"emoji"`
	CreatedAt int64  `json:"createdAt"`
}

// ReactionEntry is the aggregated per-emoji view of a message's reactions.
type ReactionEntry struct {
	Count int       `json:"count"`
	Users []Profile `json:"users"`
}

// ReactionView maps emoji to its aggregate. Computed on read, never stored.
type ReactionView map[string]*ReactionEntry
