package storage

import (
	"chat-core/domain"
	"chat-core/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Append(roomID domain.RoomID, senderID, content string, anonymous bool) (domain.Message, error)
	MarkRead(roomID domain.RoomID, messageIDs []string, readerID string) ([]domain.Message, error)
	GetMessages(roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type diskMessage struct {
	ID        uuid.UUID     `json:"id"`
	Room      domain.RoomID `json:"room"`
	Sender    string        `json:"sender"`
	Content   string        `json:"content"`
	Anonymous bool          `json:"anonymous"`
	At        time.Time     `json:"at"`
	ReadBy    []string      `json:"read_by,omitempty"`
}

// messageKey formats the primary key as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func messageKey(roomID domain.RoomID, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", roomID, at.UnixNano(), id))
}

// idKey indexes "msgid:{room_id}:{uuid}" to the primary key, giving MarkRead
// a direct lookup scoped to the claimed room. Ids of other rooms resolve to
// nothing and are skipped.
func idKey(roomID domain.RoomID, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msgid:%s:%s", roomID, id))
}

// Append assigns the id and server timestamp, persists the record and its id
// index entry in one transaction, and returns the stored message. A message
// is either fully stored or not stored at all.
func (m MessageRepository) Append(roomID domain.RoomID, senderID, content string, anonymous bool) (domain.Message, error) {
	if content == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}

	message := domain.Message{
		ID:        uuid.New(),
		Room:      roomID,
		SenderID:  senderID,
		Content:   content,
		Anonymous: anonymous,
		CreatedAt: time.Now().UTC(),
	}
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, err
	}

	key := messageKey(roomID, message.CreatedAt, message.ID)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(idKey(roomID, message.ID), key)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// MarkRead adds readerID to ReadBy for each id that exists in the room and
// returns the current state of every message it found. Unknown or malformed
// ids are skipped, and re-marking an already-read message is a no-op, so the
// whole operation is idempotent.
func (m MessageRepository) MarkRead(roomID domain.RoomID, messageIDs []string, readerID string) ([]domain.Message, error) {
	var updated []domain.Message
	err := m.db.Update(func(txn *badger.Txn) error {
		updated = updated[:0]
		for _, raw := range messageIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				m.log.Debug("Skipping malformed message id", "id", raw)
				continue
			}

			indexItem, err := txn.Get(idKey(roomID, id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			primaryKey, err := indexItem.ValueCopy(nil)
			if err != nil {
				return err
			}

			item, err := txn.Get(primaryKey)
			if err != nil {
				return err
			}
			var disk diskMessage
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &disk)
			}); err != nil {
				return err
			}

			message := toMessage(disk)
			if message.MarkReadBy(readerID) {
				bytes, err := json.Marshal(fromMessage(message))
				if err != nil {
					return err
				}
				if err := txn.Set(primaryKey, bytes); err != nil {
					return err
				}
			}
			updated = append(updated, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetMessages retrieves messages for a room using a prefix scan. Thanks to the
// padded timestamp in the key, messages come back in assignment order. The
// returned cursor resumes the scan after the last message of the page; a nil
// cursor starts from the beginning of the room. When the scan yields nothing
// the cursor comes back nil, so feeding it into the next call never skips a
// message written in the meantime.
func (m MessageRepository) GetMessages(roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	var diskMessages []diskMessage
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", roomID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		seekKey := prefix
		if cursor != nil {
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}
		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(diskMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				var disk diskMessage
				if err := json.Unmarshal(value, &disk); err != nil {
					return err
				}
				diskMessages = append(diskMessages, disk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := lo.Map(diskMessages, func(item diskMessage, _ int) domain.Message {
		return toMessage(item)
	})
	if lastKey == "" {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:        message.ID,
		Room:      message.Room,
		Sender:    message.SenderID,
		Content:   message.Content,
		Anonymous: message.Anonymous,
		At:        message.CreatedAt,
		ReadBy:    message.ReadBy,
	}
}

func toMessage(disk diskMessage) domain.Message {
	return domain.Message{
		ID:        disk.ID,
		Room:      disk.Room,
		SenderID:  disk.Sender,
		Content:   disk.Content,
		Anonymous: disk.Anonymous,
		CreatedAt: disk.At.UTC(),
		ReadBy:    disk.ReadBy,
	}
}
