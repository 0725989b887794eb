package store

import (
	"errors"
	"time"

	"chat-service/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service wraps the database handle with the typed operations the rest
// of the service is written against. It is the sole owner of the durable
// entities; presence and sessions are projections kept elsewhere.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// UpsertUser creates or refreshes a profile row keyed by id.
func (s *Service) UpsertUser(user model.User) error {
	if user.LastSeen == 0 {
		user.LastSeen = time.Now().UnixMilli()
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"server", "name", "color", "avatar", "last_seen"}),
	}).Create(&user).Error
}

func (s *Service) UsersByIDs(ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := s.DB.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// SaveMessage inserts a locally authored message. Duplicate ids are an
// error here; federation ingest goes through IngestMessage instead.
func (s *Service) SaveMessage(msg *model.Message) error {
	return s.DB.Create(msg).Error
}

// IngestMessage inserts a federated message, silently skipping rows whose
// id has already been seen. Re-ingestion of the same remote window is the
// normal case, not a failure.
func (s *Service) IngestMessage(msg *model.Message) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(msg).Error
}

func (s *Service) MessageByID(id string) (*model.Message, error) {
	var msg model.Message
	if err := s.DB.First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns up to limit room messages newer than since,
// ordered by creation time ascending. That order is the canonical
// history order.
func (s *Service) ListMessages(server string, since int64, limit int) ([]model.Message, error) {
	var msgs []model.Message
	err := s.DB.
		Where("server = ? AND created_at > ?", server, since).
		Order("created_at asc").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// MarkSynced flips the outbound federation flag on a stored message.
func (s *Service) MarkSynced(id string, synced bool) error {
	return s.DB.Model(&model.Message{}).Where("id = ?", id).Update("synced", synced).Error
}

func (s *Service) ReactionExists(messageID, userID, emoji string) (bool, error) {
	var reaction model.Reaction
	err := s.DB.First(&reaction, "message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpsertReaction inserts a reaction row. A concurrent insert of the same
// (message, user, emoji) triple degrades to a created_at refresh via the
// unique index, so the toggle needs no transaction.
func (s *Service) UpsertReaction(reaction model.Reaction) error {
	if reaction.CreatedAt == 0 {
		reaction.CreatedAt = time.Now().UnixMilli()
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}, {Name: "emoji"}},
		DoUpdates: clause.AssignmentColumns([]string{"created_at"}),
	}).Create(&reaction).Error
}

func (s *Service) DeleteReaction(messageID, userID, emoji string) error {
	return s.DB.
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&model.Reaction{}).Error
}

func (s *Service) ReactionsByMessage(messageID string) ([]model.Reaction, error) {
	var reactions []model.Reaction
	err := s.DB.Where("message_id = ?", messageID).Find(&reactions).Error
	return reactions, err
}
