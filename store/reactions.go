package store

import "chat-service/model"

// ReactionView aggregates a message's raw reaction rows into the
// emoji -> {count, reactor profiles} shape clients render. Reactor
// profiles come from the users table; a reactor with no stored profile
// (possible for never-persisted federation identities) degrades to a
// bare id with a placeholder name.
func (s *Service) ReactionView(messageID string) (model.ReactionView, error) {
	rows, err := s.ReactionsByMessage(messageID)
	if err != nil {
		return nil, err
	}

	view := model.ReactionView{}
	seen := make(map[string]struct{})
	var ids []string
	for _, row := range rows {
		entry, ok := view[row.Emoji]
		if !ok {
			entry = &model.ReactionEntry{}
			view[row.Emoji] = entry
		}
		entry.Count++
		entry.Users = append(entry.Users, model.Profile{ID: row.UserID})
		if _, dup := seen[row.UserID]; !dup {
			seen[row.UserID] = struct{}{}
			ids = append(ids, row.UserID)
		}
	}
	if len(ids) == 0 {
		return view, nil
	}

	users, err := s.UsersByIDs(ids)
	if err != nil {
		// Profile hydration is cosmetic; the counts are already correct.
		return view, nil
	}
	profiles := make(map[string]model.Profile, len(users))
	for _, user := range users {
		profiles[user.ID] = user.Profile()
	}
	for _, entry := range view {
		for i, reactor := range entry.Users {
			if profile, ok := profiles[reactor.ID]; ok {
				entry.Users[i] = profile
			} else {
				entry.Users[i] = model.Profile{ID: reactor.ID, Name: "User"}
			}
		}
	}
	return view, nil
}
