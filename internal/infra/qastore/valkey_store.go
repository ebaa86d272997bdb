package qastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/support-expert/internal/domain/qacache"
)

const scanBatch = 200

// ValkeyStore keeps exact answers in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "qa"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, question string) (qacache.Entry, bool, error) {
	cmd := s.client.B().Get().Key(s.entryKey(question)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return qacache.Entry{}, false, nil
		}
		return qacache.Entry{}, false, err
	}
	var entry qacache.Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return qacache.Entry{}, false, err
	}
	return entry, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, entry qacache.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.entryKey(entry.Question)).Value(string(payload)).Nx().Build()
	err = s.client.Do(ctx, cmd).Error()
	if valkey.IsValkeyNil(err) {
		// NX refused: an earlier record owns this text
		return nil
	}
	return err
}

// Clear deletes every entry under the store prefix.
func (s *ValkeyStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(s.pattern()).Count(scanBatch).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return err
		}
		if len(entry.Elements) > 0 {
			if err := s.client.Do(ctx, s.client.B().Del().Key(entry.Elements...).Build()).Error(); err != nil {
				return err
			}
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

func (s *ValkeyStore) entryKey(question string) string {
	sum := sha256.Sum256([]byte(question))
	return fmt.Sprintf("%s:exact:%s", s.prefix, hex.EncodeToString(sum[:]))
}

func (s *ValkeyStore) pattern() string {
	return fmt.Sprintf("%s:exact:*", s.prefix)
}

var _ qacache.AnswerStore = (*ValkeyStore)(nil)
