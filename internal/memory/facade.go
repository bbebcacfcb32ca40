package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/LionGab/lyla-erl/internal/observability/metrics"
	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// Facade is the single persistence entry point for conversations. Writes go
// to the local thread store first (a message is never acknowledged without
// local persistence succeeding) and then best-effort to the remote store;
// reads prefer the remote store when asked and fall back to local. Remote
// failures are logged and downgraded, never surfaced.
type Facade struct {
	local   *thread.Store
	remote  *Store // nil when no database is configured
	logger  *logging.Logger
	metrics *metrics.PersistenceMetrics
}

// Conversation identifies a conversation and which backend owns it.
type Conversation struct {
	ID     string `json:"id"`
	Remote bool   `json:"remote"`
}

// NewFacade builds the persistence facade. remote may be nil.
func NewFacade(local *thread.Store, remote *Store, logger *logging.Logger, m *metrics.PersistenceMetrics) *Facade {
	if logger == nil {
		logger = logging.Default()
	}
	return &Facade{local: local, remote: remote, logger: logger, metrics: m}
}

// RemoteEnabled reports whether the remote backend is configured.
func (f *Facade) RemoteEnabled() bool {
	return f.remote != nil
}

// Local exposes the underlying thread store for listing and deletion, which
// stay local-first.
func (f *Facade) Local() *thread.Store {
	return f.local
}

// CreateConversation opens a conversation on the remote store when possible,
// falling back to a local thread. The local mirror is created either way so
// the message log is always reconstructible from the local store alone.
func (f *Facade) CreateConversation(ctx context.Context, email, agentID string) (Conversation, error) {
	if f.remote != nil {
		id, err := f.remote.CreateConversation(ctx, email, agentID, "Nova conversa")
		if err == nil {
			f.metrics.ObserveWrite("remote", "ok")
			return Conversation{ID: id.String(), Remote: true}, nil
		}
		f.metrics.ObserveWrite("remote", "error")
		f.logger.Warn("remote conversation create failed, falling back to local",
			"agent_id", agentID, "error", err)
	}

	t, err := f.local.CreateThread(ctx, email)
	if err != nil {
		return Conversation{}, err
	}
	return Conversation{ID: t.ID, Remote: false}, nil
}

// LoadMessages reads a conversation's message log, remote-first when the
// conversation lives remotely, always falling back to the local mirror.
func (f *Facade) LoadMessages(ctx context.Context, email, conversationID string, preferRemote bool) ([]thread.Message, error) {
	if preferRemote && f.remote != nil {
		if id, err := uuid.Parse(conversationID); err == nil {
			msgs, err := f.remote.GetMessages(ctx, id)
			if err == nil && len(msgs) > 0 {
				return msgs, nil
			}
			if err != nil {
				f.logger.Warn("remote message load failed, falling back to local",
					"conversation_id", conversationID, "error", err)
			}
		}
	}
	return f.local.GetThreadMessages(ctx, email, conversationID)
}

// SaveMessage appends one message. Local persistence is the durability
// floor: its failure is the only error this method returns. The remote write
// is best-effort.
func (f *Facade) SaveMessage(ctx context.Context, email, conversationID string, msg thread.Message, remote bool) error {
	msgs, err := f.local.GetThreadMessages(ctx, email, conversationID)
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)
	if err := f.local.SaveThreadMessages(ctx, email, conversationID, msgs); err != nil {
		f.metrics.ObserveWrite("local", "error")
		return err
	}
	f.metrics.ObserveWrite("local", "ok")

	if remote && f.remote != nil {
		if id, parseErr := uuid.Parse(conversationID); parseErr == nil {
			if err := f.remote.AddMessage(ctx, id, msg); err != nil {
				f.metrics.ObserveWrite("remote", "error")
				f.logger.Warn("remote message write failed, local copy retained",
					"conversation_id", conversationID, "error", err)
			} else {
				f.metrics.ObserveWrite("remote", "ok")
			}
		}
	}
	return nil
}
