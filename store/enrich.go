package store

import (
	"errors"

	"chat-service/model"

	"gorm.io/gorm"
)

// Enrich produces the wire form of a stored message: the current
// reaction view plus, for replies, a snapshot of the parent at its
// currently stored state. A missing parent (typically not yet ingested
// from federation) leaves ReplySnapshot nil; clients backfill it with a
// message:pull once the parent lands.
func (s *Service) Enrich(msg model.Message) (model.EnrichedMessage, error) {
	reactions, err := s.ReactionView(msg.ID)
	if err != nil {
		return model.EnrichedMessage{}, err
	}

	enriched := model.EnrichedMessage{
		WireMessage: msg.Wire(),
		Reactions:   reactions,
	}
	if msg.ReplyTo != "" {
		parent, err := s.MessageByID(msg.ReplyTo)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return model.EnrichedMessage{}, err
		}
		if parent != nil {
			wire := parent.Wire()
			enriched.ReplySnapshot = &wire
		}
	}
	return enriched, nil
}

// History returns up to limit enriched room messages in canonical order.
func (s *Service) History(server string, limit int) ([]model.EnrichedMessage, error) {
	rows, err := s.ListMessages(server, 0, limit)
	if err != nil {
		return nil, err
	}
	history := make([]model.EnrichedMessage, 0, len(rows))
	for _, row := range rows {
		enriched, err := s.Enrich(row)
		if err != nil {
			return nil, err
		}
		history = append(history, enriched)
	}
	return history, nil
}
