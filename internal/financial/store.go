package financial

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LionGab/lyla-erl/internal/identity"
	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// Snapshot is the persisted simulation: parameters plus the projection they
// produced at save time.
type Snapshot struct {
	Params     Parameters `json:"params"`
	Projection Projection `json:"projection"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Store keeps one simulation snapshot per user.
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
	return fmt.Sprintf("erl_lia_simulation_%s", identity.Namespace(email))
}

func (s *Store) Save(ctx context.Context, email string, params Parameters, projection Projection) error {
	snap := Snapshot{Params: params, Projection: projection, Timestamp: time.Now().UTC()}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("financial: marshal snapshot: %w", err)
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
		s.logger.Warn("discarding corrupt simulation snapshot", "error", err)
		return nil, nil
	}
	return &snap, nil
}
