package model

// User is the durable profile row. The id is client-generated and stable
// across sessions; rows are upserted on join and settings updates, never
// hard-deleted.
type User struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Server   string `gorm:"index:idx_users_server" json:"server"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Avatar   string `json:"avatar"`
	LastSeen int64  `json:"lastSeen"`
}

// Profile is the live presence shape of a user, also embedded into
// messages as the author snapshot at send time.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Avatar string `json:"avatar"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Color: u.Color, Avatar: u.Avatar}
}
