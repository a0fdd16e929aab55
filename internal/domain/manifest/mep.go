package manifest

import (
	"context"
	"fmt"

	"github.com/fabworks/rackforge/internal/domain/mep"
)

// Bulk update scopes for UpdateMEPItems.
const (
	ScopeAll         = "all"
	ScopeColorChange = "color_change"
)

// AddMEPItem validates and stores a new MEP item, assigning a fresh id when
// zero.
func (s *Service) AddMEPItem(ctx context.Context, item mep.Item) (mep.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tierCount := 0
	if s.m.TradeRacks.Active != nil {
		tierCount = s.m.TradeRacks.Active.TierCount
	}
	if err := item.Validate(tierCount); err != nil {
		return mep.Item{}, err
	}
	if item.ID == 0 {
		item.ID = s.nextID()
	} else if _, exists := s.m.MEPItems.Find(item.ID); exists {
		return mep.Item{}, fmt.Errorf("%w: %d", mep.ErrDuplicateID, item.ID)
	}
	if !s.m.MEPItems.Add(item) {
		return mep.Item{}, fmt.Errorf("%w: %q", mep.ErrUnknownType, item.Type)
	}
	s.writeTemporaryStateLocked(ctx)
	return item, s.persistLocked(ctx)
}

// RemoveMEPItem deletes one item from its trade bucket.
func (s *Service) RemoveMEPItem(ctx context.Context, id int64, t mep.ItemType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.m.MEPItems.Remove(id, t) {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	s.writeTemporaryStateLocked(ctx)
	return s.persistLocked(ctx)
}

// RemoveAllMEPItems empties every trade bucket.
func (s *Service) RemoveAllMEPItems(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.MEPItems = mep.Collections{}
	s.writeTemporaryStateLocked(ctx)
	return s.persistLocked(ctx)
}

// UpdateMEPItems applies a bulk update. Scope "all" replaces every bucket;
// "color_change" copies only colors onto matching ids and records a
// parameter change per recolored item; a type name replaces that one
// bucket.
func (s *Service) UpdateMEPItems(ctx context.Context, items []mep.Item, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tierCount := 0
	if s.m.TradeRacks.Active != nil {
		tierCount = s.m.TradeRacks.Active.TierCount
	}

	switch scope {
	case ScopeAll:
		for _, item := range items {
			if err := item.Validate(tierCount); err != nil {
				return err
			}
		}
		s.m.MEPItems.Replace(items)
	case ScopeColorChange:
		for _, item := range items {
			existing, ok := s.m.MEPItems.Find(item.ID)
			if !ok || existing.Color == item.Color {
				continue
			}
			oldColor := existing.Color
			existing.Color = item.Color
			s.replaceItemLocked(existing)
			s.appendChangeLocked(ctx, ComponentMEP, ActionParameterChanged, fmt.Sprintf("mep-%d", item.ID), map[string]any{
				"parameterName": "color",
				"oldValue":      oldColor,
				"newValue":      item.Color,
				"parameterType": "string",
			})
		}
	case string(mep.TypeDuct), string(mep.TypePipe), string(mep.TypeConduit), string(mep.TypeCableTray):
		for _, item := range items {
			if err := item.Validate(tierCount); err != nil {
				return err
			}
		}
		s.m.MEPItems.ReplaceType(mep.ItemType(scope), items)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
	s.writeTemporaryStateLocked(ctx)
	return s.persistLocked(ctx)
}

func (s *Service) replaceItemLocked(item mep.Item) {
	all := s.m.MEPItems.All()
	for i := range all {
		if all[i].ID == item.ID {
			all[i] = item
			break
		}
	}
	s.m.MEPItems.Replace(all)
}

// MEPItems returns a copy of the current collections.
func (s *Service) MEPItems() mep.Collections {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c mep.Collections
	c.Replace(s.m.MEPItems.All())
	return c
}
