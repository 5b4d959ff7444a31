//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(room int, cursor *string) ([]DiskMessage, *string, error)
	OccurrencesBetween(from, to time.Time) ([]time.Time, error)
	PurgeExpired(now time.Time) (int, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type DiskMessage struct {
	ID           uuid.UUID  `json:"id"`
	Room         int        `json:"room"`
	Author       string     `json:"author"`
	Content      string     `json:"content"`
	Disappearing bool       `json:"disappearing,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	At           time.Time  `json:"at"`
}

const (
	messagePrefix = "msg:"
	volumePrefix  = "vol:"
	expiryPrefix  = "exp:"
)

// messageKey is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func messageKey(m DiskMessage) []byte {
	return []byte(fmt.Sprintf("%s%d:%019d:%s", messagePrefix, m.Room, m.At.UnixNano(), m.ID))
}

// volumeKey indexes every message by timestamp alone, across all rooms.
// The volume aggregation seeks into this keyspace to scan one bounded
// window instead of walking every room.
func volumeKey(atNano int64, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", volumePrefix, atNano, id))
}

// expiryKey indexes disappearing messages by their expiry time. The room
// and original timestamp are embedded so the purge can rebuild the primary
// and volume keys without reading any value.
func expiryKey(expNano int64, room int, atNano int64, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%019d:%d:%019d:%s", expiryPrefix, expNano, room, atNano, id))
}

// StoreMessage persists a message in BadgerDB together with its volume
// index entry and, for disappearing messages, its expiry index entry.
// All keys are written in a single transaction.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	value, err := json.Marshal(message)
	if err != nil {
		return err
	}
	atNano := message.At.UnixNano()
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(message), value); err != nil {
			return err
		}
		if err := txn.Set(volumeKey(atNano, message.ID), nil); err != nil {
			return err
		}
		if message.ExpiresAt != nil {
			return txn.Set(expiryKey(message.ExpiresAt.UnixNano(), message.Room, atNano, message.ID), nil)
		}
		return nil
	})
}

// GetMessages retrieves messages for a specific room using a prefix scan.
// Thanks to the padded timestamp in the key, messages are naturally sorted by time.
// It stops collecting messages once the configured limitMessages is reached.
func (m MessageRepository) GetMessages(room int, cursor *string) ([]DiskMessage, *string, error) {
	var rawMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("%s%d:", messagePrefix, room)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(rawMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				rawMessages = append(rawMessages, append([]byte(nil), value...))
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

	var diskMessages []DiskMessage
	for _, raw := range rawMessages {
		var message DiskMessage
		if err = json.Unmarshal(raw, &message); err != nil {
			return nil, nil, err
		}
		diskMessages = append(diskMessages, message)
	}
	return diskMessages, &lastKey, err
}

// OccurrencesBetween returns the timestamps of all messages received in the
// half-open interval [from, to), oldest first. It is a key-only scan over
// the volume index: values are never prefetched and the iteration stops at
// the window's upper bound, so the cost is proportional to the window, not
// to the store.
func (m MessageRepository) OccurrencesBetween(from, to time.Time) ([]time.Time, error) {
	var occurrences []time.Time
	startKey := []byte(fmt.Sprintf("%s%019d", volumePrefix, from.UnixNano()))
	endKey := []byte(fmt.Sprintf("%s%019d", volumePrefix, to.UnixNano()))
	prefix := []byte(volumePrefix)

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(startKey); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			if bytes.Compare(key, endKey) >= 0 {
				break
			}
			atNano, err := parseKeyNano(string(key), 1)
			if err != nil {
				return err
			}
			occurrences = append(occurrences, time.Unix(0, atNano).UTC())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return occurrences, nil
}

// PurgeExpired deletes every disappearing message whose expiry is at or
// before now, along with its volume and expiry index entries. Returns the
// number of messages removed.
func (m MessageRepository) PurgeExpired(now time.Time) (int, error) {
	var expired [][]byte
	prefix := []byte(expiryPrefix)
	nowNano := now.UnixNano()

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			expNano, err := parseKeyNano(string(key), 1)
			if err != nil {
				return err
			}
			if expNano > nowNano {
				break
			}
			expired = append(expired, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		for _, expKey := range expired {
			// exp:{exp}:{room}:{at}:{uuid}
			parts := strings.Split(string(expKey), ":")
			if len(parts) != 5 {
				return fmt.Errorf("malformed expiry key %q", expKey)
			}
			room, err := strconv.Atoi(parts[2])
			if err != nil {
				return err
			}
			atNano, err := strconv.ParseInt(parts[3], 10, 64)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(parts[4])
			if err != nil {
				return err
			}

			msgKey := []byte(fmt.Sprintf("%s%d:%019d:%s", messagePrefix, room, atNano, id))
			if err := txn.Delete(msgKey); err != nil {
				return err
			}
			if err := txn.Delete(volumeKey(atNano, id)); err != nil {
				return err
			}
			if err := txn.Delete(expKey); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(expired), nil
}

func parseKeyNano(key string, part int) (int64, error) {
	parts := strings.Split(key, ":")
	if part >= len(parts) {
		return 0, fmt.Errorf("malformed index key %q", key)
	}
	return strconv.ParseInt(parts[part], 10, 64)
}
