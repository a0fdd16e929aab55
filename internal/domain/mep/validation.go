package mep

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType indicates an unrecognized item type discriminator.
	ErrUnknownType = errors.New("unknown mep item type")
	// ErrMissingSpec indicates the payload for the declared type is nil.
	ErrMissingSpec = errors.New("missing spec for mep item type")
	// ErrNonPositiveDimension indicates a geometry value that must be > 0.
	ErrNonPositiveDimension = errors.New("mep dimension must be positive")
	// ErrTierOutOfRange indicates a tier not valid for the current rack.
	ErrTierOutOfRange = errors.New("tier out of range")
	// ErrDuplicateID indicates an id already present in the item set.
	ErrDuplicateID = errors.New("duplicate mep item id")
)

// Validate checks the item against the current rack's tier count.
func (it Item) Validate(tierCount int) error {
	switch it.Tier {
	case TierAbove, TierBelow, NoTier:
	default:
		if it.Tier < 1 || it.Tier > tierCount {
			return fmt.Errorf("%w: tier %d of %d", ErrTierOutOfRange, it.Tier, tierCount)
		}
	}

	switch it.Type {
	case TypeDuct:
		if it.Duct == nil {
			return ErrMissingSpec
		}
		if it.Duct.Width <= 0 || it.Duct.Height <= 0 {
			return fmt.Errorf("%w: duct width/height", ErrNonPositiveDimension)
		}
		if it.Duct.Insulation < 0 {
			return fmt.Errorf("%w: duct insulation", ErrNonPositiveDimension)
		}
	case TypePipe:
		if it.Pipe == nil {
			return ErrMissingSpec
		}
		if it.Pipe.Diameter <= 0 || it.Pipe.Count <= 0 {
			return fmt.Errorf("%w: pipe diameter/count", ErrNonPositiveDimension)
		}
		if it.Pipe.Count > 1 && it.Pipe.Spacing <= 0 {
			return fmt.Errorf("%w: pipe spacing", ErrNonPositiveDimension)
		}
	case TypeConduit:
		if it.Conduit == nil {
			return ErrMissingSpec
		}
		if it.Conduit.Diameter <= 0 || it.Conduit.Count <= 0 {
			return fmt.Errorf("%w: conduit diameter/count", ErrNonPositiveDimension)
		}
		if it.Conduit.Count > 1 && it.Conduit.Spacing <= 0 {
			return fmt.Errorf("%w: conduit spacing", ErrNonPositiveDimension)
		}
	case TypeCableTray:
		if it.Tray == nil {
			return ErrMissingSpec
		}
		if it.Tray.Width <= 0 || it.Tray.Height <= 0 {
			return fmt.Errorf("%w: tray width/height", ErrNonPositiveDimension)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, it.Type)
	}
	return nil
}
