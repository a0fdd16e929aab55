package rack

import (
	"errors"
	"fmt"
)

// Tier count bounds for the rack form.
const (
	MinTierCount = 1
	MaxTierCount = 5
)

var (
	// ErrNonPositiveDimension indicates a rack dimension that is not > 0.
	ErrNonPositiveDimension = errors.New("rack dimension must be positive")
	// ErrBayWiderThanRack indicates bayWidth > rackLength.
	ErrBayWiderThanRack = errors.New("bay width exceeds rack length")
	// ErrTierCountOutOfRange indicates tierCount outside 1..5.
	ErrTierCountOutOfRange = errors.New("tier count out of range")
	// ErrTierHeightsMismatch indicates len(tierHeights) != tierCount.
	ErrTierHeightsMismatch = errors.New("tier heights length does not match tier count")
	// ErrUnknownMountType indicates a mount type other than deck or floor.
	ErrUnknownMountType = errors.New("unknown mount type")
)

// Validate checks the form-level invariants the builder asserts.
func (p Params) Validate() error {
	if !p.RackLength.Positive() {
		return fmt.Errorf("%w: rackLength", ErrNonPositiveDimension)
	}
	if !p.RackWidth.Positive() {
		return fmt.Errorf("%w: rackWidth", ErrNonPositiveDimension)
	}
	if !p.BayWidth.Positive() {
		return fmt.Errorf("%w: bayWidth", ErrNonPositiveDimension)
	}
	if p.BayWidth.TotalFeet() > p.RackLength.TotalFeet() {
		return ErrBayWiderThanRack
	}
	if p.TierCount < MinTierCount || p.TierCount > MaxTierCount {
		return ErrTierCountOutOfRange
	}
	if len(p.TierHeights) != p.TierCount {
		return ErrTierHeightsMismatch
	}
	for _, h := range p.TierHeights {
		if !h.Positive() {
			return fmt.Errorf("%w: tierHeight", ErrNonPositiveDimension)
		}
	}
	switch p.MountType {
	case MountDeck, MountFloor:
	default:
		return ErrUnknownMountType
	}
	return nil
}
