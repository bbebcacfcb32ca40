package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LionGab/lyla-erl/internal/identity"
	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// Snapshot is the persisted diagnostic: the derived result plus the raw
// answers it was computed from.
type Snapshot struct {
	Result    Result    `json:"result"`
	Answers   []Answer  `json:"answers"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps one diagnostic snapshot per user.
type Store struct {
	kv     thread.KV
	logger *logging.Logger
}

func NewStore(kv thread.KV, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{kv: kv, logger: logger}
}

func snapshotKey(email string) string {
	return fmt.Sprintf("erl_lia_diagnostic_%s", identity.Namespace(email))
}

func (s *Store) Save(ctx context.Context, email string, result Result, answers []Answer) error {
	snap := Snapshot{Result: result, Answers: answers, Timestamp: time.Now().UTC()}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("diagnostic: marshal snapshot: %w", err)
	}
	return s.kv.Set(ctx, snapshotKey(email), string(raw))
}

// Load returns nil when nothing is stored or the snapshot is corrupt.
func (s *Store) Load(ctx context.Context, email string) (*Snapshot, error) {
	raw, err := s.kv.Get(ctx, snapshotKey(email))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Warn("discarding corrupt diagnostic snapshot", "error", err)
		return nil, nil
	}
	return &snap, nil
}
