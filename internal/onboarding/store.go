// Package onboarding stores the user's business profile collected by the
// onboarding wizard. The blob is consumed as context by the chat and the
// recommendation flows.
package onboarding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LionGab/lyla-erl/internal/identity"
	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// Data is the onboarding profile. Field names keep the product's Portuguese
// vocabulary.
type Data struct {
	Profissao           string  `json:"profissao,omitempty"`
	HabilidadePrincipal string  `json:"habilidadePrincipal,omitempty"`
	OfertaAtual         string  `json:"ofertaAtual,omitempty"`
	PrecoAtual          float64 `json:"precoAtual,omitempty"`
	TempoDisponivel     string  `json:"tempoDisponivel,omitempty"`
	PlataformaPrincipal string  `json:"plataformaPrincipal,omitempty"`
	FormatoPreferido    string  `json:"formatoPreferido,omitempty"`
	MetaFaturamento     float64 `json:"metaFaturamento,omitempty"`
	PrazoMeta           string  `json:"prazoMeta,omitempty"`
	PublicoAlvo         string  `json:"publicoAlvo,omitempty"`
	ProblemaPrincipal   string  `json:"problemaPrincipal,omitempty"`
	Diferencial         string  `json:"diferencial,omitempty"`
	EstiloResposta      string  `json:"estiloResposta,omitempty"`
	Observacoes         string  `json:"observacoes,omitempty"`
}

// Store persists the onboarding blob per user.
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

func key(email string) string {
	return fmt.Sprintf("erl_lia_onboarding_%s", identity.Namespace(email))
}

func (s *Store) Save(ctx context.Context, email string, data Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("onboarding: marshal: %w", err)
	}
	return s.kv.Set(ctx, key(email), string(raw))
}

// Load returns nil when nothing is stored or the blob is corrupt.
func (s *Store) Load(ctx context.Context, email string) (*Data, error) {
	raw, err := s.kv.Get(ctx, key(email))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.Warn("discarding corrupt onboarding data", "error", err)
		return nil, nil
	}
	return &data, nil
}
