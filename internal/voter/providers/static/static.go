// Package static serves voter lookups from a fixed local dataset file. It
// makes the resolution waterfall runnable without network access.
package static

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"voterdata/internal/voter/models"
	"voterdata/internal/voter/providers"
	id "voterdata/pkg/domain"
)

// Source answers from one in-memory envelope loaded at construction.
type Source struct {
	id  string
	raw []byte
}

// Load reads the dataset at path. The file must hold a successful JSON
// envelope with a data member; anything else is a startup error.
func Load(providerID, path string) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read static dataset %s: %w", path, err)
	}
	return New(providerID, raw)
}

// New builds a source over an in-memory envelope. The envelope is checked
// the way Fetch reads it, so a dataset that loads can answer its own record.
func New(providerID string, raw []byte) (*Source, error) {
	var env providers.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid static dataset: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("invalid static dataset: success must be true")
	}
	if d := strings.TrimSpace(string(env.Data)); d == "" || d == "null" {
		return nil, fmt.Errorf("invalid static dataset: missing data")
	}
	return &Source{id: providerID, raw: append([]byte(nil), raw...)}, nil
}

func (s *Source) ID() string { return s.id }

func (s *Source) Mode() models.DataSource { return models.DataSourceStatic }

// Fetch returns the dataset record when its epic_no equals epic.
func (s *Source) Fetch(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, providers.NewProviderError(providers.ErrorTimeout, s.id, "lookup cancelled", err)
	}
	return providers.DecodeEnvelope(s.id, s.raw, epic)
}
