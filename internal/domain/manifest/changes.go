package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/measure"
	"github.com/fabworks/rackforge/internal/repository"
)

// UpdateMeasurements replaces the persisted measurement list. Writing the
// same list back is idempotent apart from lastUpdated.
func (s *Service) UpdateMeasurements(ctx context.Context, list []measure.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Measurements = append([]measure.Measurement(nil), list...)
	return s.persistLocked(ctx)
}

// Measurements returns a copy of the persisted measurement list.
func (s *Service) Measurements() []measure.Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]measure.Measurement(nil), s.m.Measurements...)
}

// AddRackPositionChange records a rack move in the change history.
func (s *Service) AddRackPositionChange(ctx context.Context, oldPos, newPos rack.Position, rackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendChangeLocked(ctx, ComponentTradeRack, ActionPositionMoved, rackID, map[string]any{
		"oldPosition": oldPos,
		"newPosition": newPos,
		"distance": rack.Position{
			X: newPos.X - oldPos.X,
			Y: newPos.Y - oldPos.Y,
			Z: newPos.Z - oldPos.Z,
		},
	})
	return s.persistLocked(ctx)
}

// AddRackParameterChange records a rack parameter edit in the change
// history.
func (s *Service) AddRackParameterChange(ctx context.Context, name string, oldVal, newVal any, rackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendChangeLocked(ctx, ComponentTradeRack, ActionParameterChanged, rackID, map[string]any{
		"parameterName": name,
		"oldValue":      oldVal,
		"newValue":      newVal,
		"parameterType": fmt.Sprintf("%T", newVal),
	})
	return s.persistLocked(ctx)
}

// recordParamDiffsLocked emits one parameter_changed record per field that
// differs between the previous and new rack parameters. Position is skipped;
// moves are recorded separately as position_moved.
func (s *Service) recordParamDiffsLocked(ctx context.Context, old, next *rack.Params, rackID string) {
	if old == nil || next == nil {
		return
	}
	record := func(name string, oldVal, newVal any) {
		s.appendChangeLocked(ctx, ComponentTradeRack, ActionParameterChanged, rackID, map[string]any{
			"parameterName": name,
			"oldValue":      oldVal,
			"newValue":      newVal,
			"parameterType": fmt.Sprintf("%T", newVal),
		})
	}
	if old.RackLength != next.RackLength {
		record("rackLength", old.RackLength, next.RackLength)
	}
	if old.RackWidth != next.RackWidth {
		record("rackWidth", old.RackWidth, next.RackWidth)
	}
	if old.BayWidth != next.BayWidth {
		record("bayWidth", old.BayWidth, next.BayWidth)
	}
	if old.TierCount != next.TierCount {
		record("tierCount", old.TierCount, next.TierCount)
	}
	if !reflect.DeepEqual(old.TierHeights, next.TierHeights) {
		record("tierHeights", old.TierHeights, next.TierHeights)
	}
	if old.MountType != next.MountType {
		record("mountType", old.MountType, next.MountType)
	}
	if old.ColumnType != next.ColumnType {
		record("columnType", old.ColumnType, next.ColumnType)
	}
	if old.BeamType != next.BeamType {
		record("beamType", old.BeamType, next.BeamType)
	}
	if old.TopClearance != next.TopClearance {
		record("topClearance", old.TopClearance, next.TopClearance)
	}
}

// appendChangeLocked pushes a record onto the bounded ring and mirrors it
// to the append-only change log. Audit failures never fail the mutation.
func (s *Service) appendChangeLocked(ctx context.Context, component, action, rackID string, details map[string]any) {
	rec := ChangeRecord{
		ID:        s.nextID(),
		Component: component,
		Action:    action,
		RackID:    rackID,
		Timestamp: s.clock().UTC(),
		Details:   details,
		SessionID: s.m.SessionID,
	}
	s.m.ChangeHistory = append(s.m.ChangeHistory, rec)
	if len(s.m.ChangeHistory) > MaxChangeHistory {
		s.m.ChangeHistory = s.m.ChangeHistory[len(s.m.ChangeHistory)-MaxChangeHistory:]
	}

	if s.changes == nil {
		return
	}
	payload, err := json.Marshal(details)
	if err != nil {
		s.log.Warn("change details marshal failed", "error", err)
		payload = nil
	}
	err = s.changes.Append(ctx, repository.ChangeEntry{
		ChangeID:  rec.ID,
		Component: component,
		RackID:    rackID,
		Action:    action,
		SessionID: rec.SessionID,
		Details:   payload,
		CreatedAt: rec.Timestamp,
	})
	s.met.IncStorageOp("change_append", err)
	if err != nil {
		s.log.Warn("change log append failed", "error", err)
	}
}

// ChangeHistory returns a copy of the bounded ring, oldest first.
func (s *Service) ChangeHistory() []ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChangeRecord(nil), s.m.ChangeHistory...)
}
