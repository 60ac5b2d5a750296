package store

import (
	"context"
	"fmt"
	"time"

	"securejoin/internal/domain"
)

const chatsFilename = "chats.json"

// firstChatID mirrors firstContactID; ids below it are reserved.
const firstChatID = 10

type chatFile struct {
	NextID domain.ChatID                 `json:"next_id"`
	Chats  map[domain.ChatID]domain.Chat `json:"chats"`
}

// ChatFileStore persists 1:1 chats to disk.
type ChatFileStore struct {
	doc *jsonDoc[chatFile]
	now func() time.Time
}

// NewChatFileStore returns a ChatFileStore rooted at dir.
func NewChatFileStore(dir string) *ChatFileStore {
	return &ChatFileStore{doc: newJSONDoc[chatFile](dir, chatsFilename), now: time.Now}
}

// LoadChat returns the chat with id.
func (s *ChatFileStore) LoadChat(_ context.Context, id domain.ChatID) (domain.Chat, bool, error) {
	cf, err := s.doc.load()
	if err != nil {
		return domain.Chat{}, false, err
	}
	c, ok := cf.Chats[id]
	return c, ok, nil
}

// CreateChatForContact returns the existing 1:1 chat with contact or creates one.
func (s *ChatFileStore) CreateChatForContact(
	_ context.Context,
	contact domain.ContactID,
) (domain.ChatID, error) {
	var id domain.ChatID
	err := s.doc.update(func(cf *chatFile) error {
		for cid, c := range cf.Chats {
			if c.Contact == contact {
				id = cid
				return nil
			}
		}
		if cf.Chats == nil {
			cf.Chats = map[domain.ChatID]domain.Chat{}
		}
		id = max(cf.NextID, firstChatID)
		cf.NextID = id + 1
		cf.Chats[id] = domain.Chat{ID: id, Contact: contact}
		return nil
	})
	return id, err
}

// SetProtected marks the chat as verified since the given Unix time. An
// earlier protection timestamp is kept.
func (s *ChatFileStore) SetProtected(_ context.Context, id domain.ChatID, since int64) error {
	return s.modify(id, func(c *domain.Chat) {
		if c.ProtectedSince == 0 || since < c.ProtectedSince {
			c.ProtectedSince = since
		}
	})
}

// AddInfo appends a system notice to the chat.
func (s *ChatFileStore) AddInfo(_ context.Context, id domain.ChatID, text string) error {
	return s.modify(id, func(c *domain.Chat) {
		c.Info = append(c.Info, domain.InfoLine{Timestamp: s.now().Unix(), Text: text})
	})
}

func (s *ChatFileStore) modify(id domain.ChatID, fn func(c *domain.Chat)) error {
	return s.doc.update(func(cf *chatFile) error {
		c, ok := cf.Chats[id]
		if !ok {
			return fmt.Errorf("chat %d not found", id)
		}
		fn(&c)
		cf.Chats[id] = c
		return nil
	})
}

var _ domain.ChatStore = (*ChatFileStore)(nil)
