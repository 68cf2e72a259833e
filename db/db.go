package db

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v4"

	"attritioninsight/config"
	"attritioninsight/models"
)

const (
	messagePrefix = "msg:"
	sessionPrefix = "session:"
)

// DB persists conversation transcripts in badger. Messages of one session
// are stored under zero-padded sequence numbers so a prefix scan returns them
// in order.
type DB struct {
	badgerDB *badger.DB
}

type storedMessage struct {
	models.Message
	CreatedAt time.Time `json:"created_at"`
}

func New(dbPath string) (*DB, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger logging for cleaner output

	return open(opts)
}

// NewInMemory opens a store that lives only as long as the process.
func NewInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts)
}

// Open picks the on-disk or in-memory store from configuration.
func Open(cfg config.StorageConfig) (*DB, error) {
	if cfg.InMemory {
		return NewInMemory()
	}
	return New(cfg.DBPath)
}

func open(opts badger.Options) (*DB, error) {
	badgerDB, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{badgerDB: badgerDB}, nil
}

func (d *DB) Close() error {
	return d.badgerDB.Close()
}

func messageKey(sessionID string, seq int) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", messagePrefix, sessionID, seq))
}

func sessionKey(sessionID string) []byte {
	return []byte(sessionPrefix + sessionID)
}

func getSession(txn *badger.Txn, sessionID string) (models.SessionInfo, error) {
	info := models.SessionInfo{ID: sessionID}
	item, err := txn.Get(sessionKey(sessionID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	err = item.Value(func(val []byte) error {
		return sonic.Unmarshal(val, &info)
	})
	return info, err
}

// AppendMessages adds msgs to the end of a session transcript atomically.
func (d *DB) AppendMessages(sessionID string, msgs ...models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		info, err := getSession(txn, sessionID)
		if err != nil {
			return fmt.Errorf("failed to read session %s: %w", sessionID, err)
		}

		now := time.Now().UTC()
		for _, m := range msgs {
			data, err := sonic.Marshal(storedMessage{Message: m, CreatedAt: now})
			if err != nil {
				return err
			}
			if err := txn.Set(messageKey(sessionID, info.Messages), data); err != nil {
				return err
			}
			info.Messages++
		}

		info.UpdatedAt = now
		data, err := sonic.Marshal(info)
		if err != nil {
			return err
		}
		return txn.Set(sessionKey(sessionID), data)
	})
}

// LoadMessages returns a session transcript in order. An unknown session has
// an empty transcript.
func (d *DB) LoadMessages(sessionID string) ([]models.Message, error) {
	var messages []models.Message

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(messagePrefix + sessionID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var m storedMessage
				if err := sonic.Unmarshal(val, &m); err != nil {
					return err
				}
				messages = append(messages, m.Message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return messages, nil
}

// DeleteMessages drops a session transcript and its metadata.
func (d *DB) DeleteMessages(sessionID string) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(messagePrefix + sessionID + ":")
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete(sessionKey(sessionID))
	})
}

// ListSessions returns every persisted session, most recently used first.
func (d *DB) ListSessions() ([]models.SessionInfo, error) {
	var sessions []models.SessionInfo

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var info models.SessionInfo
				if err := sonic.Unmarshal(val, &info); err != nil {
					return err
				}
				if info.ID == "" {
					info.ID = strings.TrimPrefix(string(item.Key()), sessionPrefix)
				}
				sessions = append(sessions, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}
