package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/measure"
	"github.com/fabworks/rackforge/internal/metrics"
	"github.com/fabworks/rackforge/internal/repository"
)

// Service is the Persistence Manager. It is the single writer for the
// project manifest: every mutation locks, updates the in-memory manifest,
// and mirrors it to the key/value store as one value. Storage failures are
// logged and returned, but the in-memory state stays authoritative; the
// next successful write re-synchronizes.
type Service struct {
	mu       sync.Mutex
	log      *slog.Logger
	kv       repository.KVStore
	changes  repository.ChangeLog
	met      *metrics.Metrics
	clock    func() time.Time
	nextIDFn func() int64

	m      Manifest
	lastID int64
}

// NewService creates a Persistence Manager over the given stores.
func NewService(kv repository.KVStore, changes repository.ChangeLog, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		log:     log,
		kv:      kv,
		changes: changes,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nextID returns a millisecond-timestamp id, bumping by one on collision
// with the previously issued id.
func (s *Service) nextID() int64 {
	if s.nextIDFn != nil {
		return s.nextIDFn()
	}
	id := s.clock().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// InitializeProject loads the persisted manifest or creates a fresh one
// with default shell and rack parameters. Corrupt saved configurations are
// dropped with a diagnostic. The session id is refreshed on every call.
func (s *Service) InitializeProject(ctx context.Context) (Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, KeyProjectManifest)
	s.met.IncStorageOp("get", err)
	switch {
	case err == nil:
		var loaded Manifest
		if jsonErr := json.Unmarshal(raw, &loaded); jsonErr != nil {
			s.log.Warn("manifest corrupt, creating fresh", "error", jsonErr)
			s.m = s.freshManifest()
		} else {
			s.m = loaded
			s.pruneCorruptConfigurations()
			if !s.m.CheckIntegrity() {
				s.log.Warn("active configuration missing, detaching",
					"id", *s.m.TradeRacks.ActiveConfigurationID)
				s.m.TradeRacks.ActiveConfigurationID = nil
			}
		}
	default:
		if err != repository.ErrNotFound {
			s.log.Warn("manifest load failed, creating fresh", "error", err)
		}
		s.m = s.freshManifest()
	}

	s.m.SessionID = uuid.NewString()
	if err := s.persistLocked(ctx); err != nil {
		return s.cloneLocked(), err
	}
	return s.cloneLocked(), nil
}

func (s *Service) freshManifest() Manifest {
	now := s.clock().UTC()
	active := rack.Default()
	return Manifest{
		Version:       SchemaVersion,
		ProjectID:     uuid.NewString(),
		CreatedAt:     now,
		LastUpdated:   now,
		BuildingShell: shell.Default(),
		TradeRacks:    TradeRacks{Active: &active},
	}
}

// pruneCorruptConfigurations drops saved configurations whose parameters no
// longer validate. They are removed from the visible list, not surfaced.
func (s *Service) pruneCorruptConfigurations() {
	kept := s.m.TradeRacks.Configurations[:0]
	for _, cfg := range s.m.TradeRacks.Configurations {
		if err := cfg.Params.Validate(); err != nil {
			s.log.Warn("dropping corrupt saved configuration",
				"id", cfg.ID, "name", cfg.Name, "error", err)
			continue
		}
		kept = append(kept, cfg)
	}
	s.m.TradeRacks.Configurations = kept
}

// Manifest returns a deep copy of the current manifest.
func (s *Service) Manifest() Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

func (s *Service) cloneLocked() Manifest {
	c := s.m
	if s.m.TradeRacks.Active != nil {
		active := *s.m.TradeRacks.Active
		c.TradeRacks.Active = &active
	}
	if s.m.TradeRacks.ActiveConfigurationID != nil {
		id := *s.m.TradeRacks.ActiveConfigurationID
		c.TradeRacks.ActiveConfigurationID = &id
	}
	c.TradeRacks.Configurations = append([]rack.SavedConfiguration(nil), s.m.TradeRacks.Configurations...)
	c.Measurements = append([]measure.Measurement(nil), s.m.Measurements...)
	c.ChangeHistory = append([]ChangeRecord(nil), s.m.ChangeHistory...)
	c.MEPItems = mep.Collections{}
	c.MEPItems.Replace(s.m.MEPItems.All())
	return c
}

// persistLocked writes the manifest and its flat mirrors. The first storage
// error is returned; all writes are still attempted.
func (s *Service) persistLocked(ctx context.Context) error {
	s.m.LastUpdated = s.clock().UTC()

	var firstErr error
	put := func(key string, v any) {
		raw, err := json.Marshal(v)
		if err == nil {
			err = s.kv.Put(ctx, key, raw)
		}
		s.met.IncStorageOp("put", err)
		if err != nil {
			s.log.Warn("storage write failed", "key", key, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("write %s: %w", key, err)
			}
		}
	}

	put(KeyProjectManifest, s.m)
	if s.m.TradeRacks.Active != nil {
		put(KeyRackParameters, s.m.TradeRacks.Active)
	}
	put(KeyMEPItems, s.m.MEPItems.All())
	put(KeyConfigurations, s.m.TradeRacks.Configurations)
	return firstErr
}

// UpdateBuildingShell replaces the shell parameters.
func (s *Service) UpdateBuildingShell(ctx context.Context, p shell.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.BuildingShell = p
	return s.persistLocked(ctx)
}

// BuildingShell returns the current shell parameters.
func (s *Service) BuildingShell() shell.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.BuildingShell
}

// UpdateRackParameters applies an edit to the active rack. Editing detaches
// the manifest from any saved configuration and refreshes the temporary
// working state.
func (s *Service) UpdateRackParameters(ctx context.Context, p rack.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.m.TradeRacks.Active
	s.m.TradeRacks.Active = &p
	s.m.TradeRacks.ActiveConfigurationID = nil
	s.recordParamDiffsLocked(ctx, old, &p, "active")
	s.writeTemporaryStateLocked(ctx)
	return s.persistLocked(ctx)
}

// ActiveRack returns the active rack parameters, if any.
func (s *Service) ActiveRack() (rack.Params, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m.TradeRacks.Active == nil {
		return rack.Params{}, false
	}
	return *s.m.TradeRacks.Active, true
}

// NewRack installs fresh rack parameters and clears the temporary working
// state.
func (s *Service) NewRack(ctx context.Context, p rack.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.TradeRacks.Active = &p
	s.m.TradeRacks.ActiveConfigurationID = nil
	s.clearTemporaryStateLocked(ctx)
	return s.persistLocked(ctx)
}

// UpdateTradeRackConfiguration upserts a saved configuration by id,
// assigning a fresh id when zero. With makeActive the configuration also
// becomes the active rack.
func (s *Service) UpdateTradeRackConfiguration(ctx context.Context, cfg rack.SavedConfiguration, makeActive bool) (rack.SavedConfiguration, error) {
	if err := cfg.Params.Validate(); err != nil {
		return rack.SavedConfiguration{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	if cfg.ID == 0 {
		cfg.ID = s.nextID()
		cfg.SavedAt = now
	} else if existing, ok := s.m.FindConfiguration(cfg.ID); ok {
		cfg.SavedAt = existing.SavedAt
		cfg.UpdatedAt = &now
	} else {
		cfg.SavedAt = now
	}
	cfg.TotalHeight = cfg.Params.TotalHeightFeet()

	replaced := false
	for i := range s.m.TradeRacks.Configurations {
		if s.m.TradeRacks.Configurations[i].ID == cfg.ID {
			s.m.TradeRacks.Configurations[i] = cfg
			replaced = true
			break
		}
	}
	if !replaced {
		s.m.TradeRacks.Configurations = append(s.m.TradeRacks.Configurations, cfg)
	}

	if makeActive {
		params := cfg.Params
		params.Position = cfg.Position
		s.m.TradeRacks.Active = &params
		id := cfg.ID
		s.m.TradeRacks.ActiveConfigurationID = &id
	}
	return cfg, s.persistLocked(ctx)
}

// SetActiveConfiguration marks a saved configuration active and loads its
// parameters as the active rack.
func (s *Service) SetActiveConfiguration(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.m.FindConfiguration(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrConfigurationNotFound, id)
	}
	params := cfg.Params
	params.Position = cfg.Position
	s.m.TradeRacks.Active = &params
	s.m.TradeRacks.ActiveConfigurationID = &cfg.ID
	return s.persistLocked(ctx)
}

// SaveConfigurationToList snapshots the active rack and MEP items under a
// name and marks the snapshot active.
func (s *Service) SaveConfigurationToList(ctx context.Context, name string) (rack.SavedConfiguration, error) {
	if name == "" {
		return rack.SavedConfiguration{}, ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m.TradeRacks.Active == nil {
		return rack.SavedConfiguration{}, ErrNoActiveRack
	}

	cfg := rack.SavedConfiguration{
		ID:          s.nextID(),
		Name:        name,
		Params:      *s.m.TradeRacks.Active,
		TotalHeight: s.m.TradeRacks.Active.TotalHeightFeet(),
		Position:    s.m.TradeRacks.Active.Position,
		SavedAt:     s.clock().UTC(),
		MEPItems:    s.m.MEPItems.All(),
	}
	s.m.TradeRacks.Configurations = append(s.m.TradeRacks.Configurations, cfg)
	id := cfg.ID
	s.m.TradeRacks.ActiveConfigurationID = &id
	return cfg, s.persistLocked(ctx)
}

// RestoreConfiguration makes a saved configuration active, replaces the MEP
// items with its snapshot, and clears the temporary working state. The
// restored parameters and items are returned for the scene rebuild.
func (s *Service) RestoreConfiguration(ctx context.Context, id int64) (rack.Params, []mep.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.m.FindConfiguration(id)
	if !ok {
		return rack.Params{}, nil, fmt.Errorf("%w: %d", ErrConfigurationNotFound, id)
	}

	params := cfg.Params
	params.Position = cfg.Position
	s.m.TradeRacks.Active = &params
	active := cfg.ID
	s.m.TradeRacks.ActiveConfigurationID = &active
	if cfg.MEPItems != nil {
		s.m.MEPItems.Replace(cfg.MEPItems)
	}
	s.clearTemporaryStateLocked(ctx)
	if err := s.persistLocked(ctx); err != nil {
		return params, s.m.MEPItems.All(), err
	}
	return params, s.m.MEPItems.All(), nil
}

// DeleteTradeRackConfiguration removes a saved configuration; deleting the
// active one detaches the active reference.
func (s *Service) DeleteTradeRackConfiguration(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.m.TradeRacks.Configurations[:0]
	found := false
	for _, cfg := range s.m.TradeRacks.Configurations {
		if cfg.ID == id {
			found = true
			continue
		}
		kept = append(kept, cfg)
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrConfigurationNotFound, id)
	}
	s.m.TradeRacks.Configurations = kept
	if s.m.TradeRacks.ActiveConfigurationID != nil && *s.m.TradeRacks.ActiveConfigurationID == id {
		s.m.TradeRacks.ActiveConfigurationID = nil
	}
	return s.persistLocked(ctx)
}

// RenameConfiguration changes a saved configuration's name.
func (s *Service) RenameConfiguration(ctx context.Context, id int64, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.m.FindConfiguration(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrConfigurationNotFound, id)
	}
	now := s.clock().UTC()
	cfg.Name = name
	cfg.UpdatedAt = &now
	return s.persistLocked(ctx)
}

// Configurations returns the saved list, newest first.
func (s *Service) Configurations() []rack.SavedConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]rack.SavedConfiguration(nil), s.m.TradeRacks.Configurations...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortTime().After(out[j].SortTime())
	})
	return out
}
