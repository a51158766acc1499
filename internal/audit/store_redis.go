package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"custodia/internal/domain"
	id "custodia/pkg/domain"
)

const (
	redisSeqKey = "custodia:audit:seq"
	redisLogKey = "custodia:audit:log"
)

// appendScript assigns the next ID and pushes the serialized entry in one
// atomic step, so list position and ID order can never diverge under
// concurrent appends. The entry JSON is passed with a placeholder ID that
// the script splices before pushing.
var appendScript = redis.NewScript(`
local seq = redis.call('INCR', KEYS[1])
local payload = string.gsub(ARGV[1], '"__ID__"', tostring(seq), 1)
redis.call('RPUSH', KEYS[2], payload)
return seq
`)

// RedisStore persists the log as a redis list plus a sequence counter.
// Append-only by construction: the only write commands used are INCR and
// RPUSH.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a connected redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type redisEntry struct {
	ID           json.RawMessage `json:"id"`
	Timestamp    time.Time       `json:"ts"`
	Actor        string          `json:"actor"`
	ActorID      string          `json:"actor_id,omitempty"`
	Action       string          `json:"action"`
	Resource     string          `json:"resource"`
	ResourceKind string          `json:"resource_kind"`
	Status       string          `json:"status"`
	OriginAddr   string          `json:"origin_addr"`
	Details      string          `json:"details"`
}

func (s *RedisStore) Append(ctx context.Context, entry domain.Entry) (domain.EntryID, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	record := redisEntry{
		ID:           json.RawMessage(`"__ID__"`),
		Timestamp:    entry.Timestamp,
		Actor:        entry.Actor,
		Action:       entry.Action,
		Resource:     entry.Resource,
		ResourceKind: string(entry.ResourceKind),
		Status:       string(entry.Status),
		OriginAddr:   entry.OriginAddr,
		Details:      entry.Details,
	}
	if !entry.ActorID.IsNil() {
		record.ActorID = entry.ActorID.String()
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("marshal audit entry: %w", err)
	}

	seq, err := appendScript.Run(ctx, s.client, []string{redisSeqKey, redisLogKey}, string(payload)).Int64()
	if err != nil {
		return 0, fmt.Errorf("append audit entry: %w", err)
	}
	return domain.EntryID(seq), nil
}

func (s *RedisStore) Scan(ctx context.Context) ([]domain.Entry, error) {
	raw, err := s.client.LRange(ctx, redisLogKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}

	entries := make([]domain.Entry, 0, len(raw))
	for _, item := range raw {
		var record redisEntry
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("unmarshal audit entry: %w", err)
		}
		var entryID uint64
		if err := json.Unmarshal(record.ID, &entryID); err != nil {
			return nil, fmt.Errorf("audit entry id: %w", err)
		}
		entry := domain.Entry{
			ID:           domain.EntryID(entryID),
			Timestamp:    record.Timestamp,
			Actor:        record.Actor,
			Action:       record.Action,
			Resource:     record.Resource,
			ResourceKind: domain.ResourceKind(record.ResourceKind),
			Status:       domain.Status(record.Status),
			OriginAddr:   record.OriginAddr,
			Details:      record.Details,
		}
		if record.ActorID != "" {
			parsed, err := id.ParseUserID(record.ActorID)
			if err != nil {
				return nil, fmt.Errorf("audit entry %d actor id: %w", entryID, err)
			}
			entry.ActorID = parsed
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
