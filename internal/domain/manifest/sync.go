package manifest

import (
	"context"
	"encoding/json"

	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/repository"
)

// writeTemporaryStateLocked refreshes the rackTemporaryState working copy
// from the active rack. It is called on every rack and MEP change.
func (s *Service) writeTemporaryStateLocked(ctx context.Context) {
	if s.m.TradeRacks.Active == nil {
		return
	}
	state := TemporaryState{
		Params:             *s.m.TradeRacks.Active,
		TopClearanceInches: s.m.TradeRacks.Active.TopClearance.TotalInches(),
		MEPItems:           s.m.MEPItems.All(),
		IsTemporary:        true,
		LastModified:       s.clock().UTC(),
	}
	raw, err := json.Marshal(state)
	if err == nil {
		err = s.kv.Put(ctx, KeyRackTemporaryState, raw)
	}
	s.met.IncStorageOp("put", err)
	if err != nil {
		s.log.Warn("temporary state write failed", "error", err)
	}
}

func (s *Service) clearTemporaryStateLocked(ctx context.Context) {
	err := s.kv.Delete(ctx, KeyRackTemporaryState)
	s.met.IncStorageOp("delete", err)
	if err != nil {
		s.log.Warn("temporary state clear failed", "error", err)
	}
}

// LoadTemporaryState reads the in-progress working copy, if present.
func (s *Service) LoadTemporaryState(ctx context.Context) (TemporaryState, bool) {
	raw, err := s.kv.Get(ctx, KeyRackTemporaryState)
	s.met.IncStorageOp("get", err)
	if err != nil {
		return TemporaryState{}, false
	}
	var state TemporaryState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.log.Warn("temporary state corrupt", "error", err)
		return TemporaryState{}, false
	}
	return state, true
}

// SyncManifestWithLocalStorage reconciles the manifest with the flat legacy
// keys. Saved configurations present only in the flat mirror are adopted;
// the mirrors are then rewritten from the manifest, so a second invocation
// is a no-op.
func (s *Service) SyncManifestWithLocalStorage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, KeyConfigurations)
	s.met.IncStorageOp("get", err)
	if err == nil {
		var mirrored []rack.SavedConfiguration
		if jsonErr := json.Unmarshal(raw, &mirrored); jsonErr != nil {
			s.log.Warn("configuration mirror corrupt, rewriting", "error", jsonErr)
		} else {
			for _, cfg := range mirrored {
				if _, exists := s.m.FindConfiguration(cfg.ID); exists {
					continue
				}
				if err := cfg.Params.Validate(); err != nil {
					s.log.Warn("skipping invalid mirrored configuration",
						"id", cfg.ID, "error", err)
					continue
				}
				s.m.TradeRacks.Configurations = append(s.m.TradeRacks.Configurations, cfg)
			}
		}
	} else if err != repository.ErrNotFound {
		s.log.Warn("configuration mirror read failed", "error", err)
	}

	return s.persistLocked(ctx)
}

// SyncMEPItemsWithLocalStorage reconciles the MEP collections with the flat
// configurMepItems mirror. When the manifest has no items but the mirror
// does, the mirror wins; otherwise the manifest is rewritten over it.
func (s *Service) SyncMEPItemsWithLocalStorage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.m.MEPItems.TotalCount == 0 {
		raw, err := s.kv.Get(ctx, KeyMEPItems)
		s.met.IncStorageOp("get", err)
		if err == nil {
			var mirrored []mep.Item
			if jsonErr := json.Unmarshal(raw, &mirrored); jsonErr != nil {
				s.log.Warn("mep mirror corrupt, rewriting", "error", jsonErr)
			} else if len(mirrored) > 0 {
				s.m.MEPItems.Replace(mirrored)
			}
		} else if err != repository.ErrNotFound {
			s.log.Warn("mep mirror read failed", "error", err)
		}
	}

	return s.persistLocked(ctx)
}
