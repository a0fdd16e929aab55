// Package manifest implements the Persistence Manager: the single writer
// for the project manifest and its durable key/value mirror.
package manifest

import (
	"time"

	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/measure"
)

// SchemaVersion is written into every manifest.
const SchemaVersion = "1.0"

// MaxChangeHistory caps the in-memory change ring; the oldest record is
// evicted first. The SQLite change log keeps the full trail.
const MaxChangeHistory = 100

// Storage keys for the durable key/value mirror. projectManifest is
// authoritative; the flat keys are the legacy sync mirror.
const (
	KeyProjectManifest    = "projectManifest"
	KeyRackParameters     = "rackParameters"
	KeyMEPItems           = "configurMepItems"
	KeyConfigurations     = "tradeRackConfigurations"
	KeyRackTemporaryState = "rackTemporaryState"
)

// Change actions recorded in the history.
const (
	ActionPositionMoved    = "position_moved"
	ActionParameterChanged = "parameter_changed"
)

// Components stamped on change records to say which subsystem the change
// touched.
const (
	ComponentTradeRack = "trade_rack"
	ComponentMEP       = "mep"
)

// TradeRacks holds the active rack parameters and the saved configuration
// list. ActiveConfigurationID is nil or refers to an entry in
// Configurations.
type TradeRacks struct {
	Active                *rack.Params              `json:"active,omitempty"`
	ActiveConfigurationID *int64                    `json:"activeConfigurationId,omitempty"`
	Configurations        []rack.SavedConfiguration `json:"configurations"`
}

// ChangeRecord is one entry in the bounded change history.
type ChangeRecord struct {
	ID        int64          `json:"id"`
	Component string         `json:"component"`
	Action    string         `json:"action"`
	RackID    string         `json:"rackId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details"`
	SessionID string         `json:"sessionId"`
}

// Manifest is the full persisted project state. It is updated atomically:
// every writer mutates a copy in memory and writes it back as one value.
type Manifest struct {
	Version       string                `json:"version"`
	ProjectID     string                `json:"projectId"`
	SessionID     string                `json:"sessionId"`
	CreatedAt     time.Time             `json:"createdAt"`
	LastUpdated   time.Time             `json:"lastUpdated"`
	BuildingShell shell.Params          `json:"buildingShell"`
	TradeRacks    TradeRacks            `json:"tradeRacks"`
	MEPItems      mep.Collections       `json:"mepItems"`
	Measurements  []measure.Measurement `json:"measurements"`
	ChangeHistory []ChangeRecord        `json:"changeHistory"`
}

// FindConfiguration returns the saved configuration with the given id.
func (m *Manifest) FindConfiguration(id int64) (*rack.SavedConfiguration, bool) {
	for i := range m.TradeRacks.Configurations {
		if m.TradeRacks.Configurations[i].ID == id {
			return &m.TradeRacks.Configurations[i], true
		}
	}
	return nil, false
}

// CheckIntegrity verifies the active-configuration reference.
func (m *Manifest) CheckIntegrity() bool {
	if m.TradeRacks.ActiveConfigurationID == nil {
		return true
	}
	_, ok := m.FindConfiguration(*m.TradeRacks.ActiveConfigurationID)
	return ok
}

// TemporaryState is the in-progress working copy stored under
// rackTemporaryState while the user drags or nudges the rack. It is cleared
// on a fresh rack and on configuration restore.
type TemporaryState struct {
	rack.Params
	TopClearanceInches float64    `json:"topClearanceInches"`
	MEPItems           []mep.Item `json:"mepItems"`
	IsTemporary        bool       `json:"isTemporary"`
	LastModified       time.Time  `json:"lastModified"`
}
