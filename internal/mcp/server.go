package mcp

import (
	"context"
	"log/slog"

	"github.com/fabworks/rackforge/internal/controller"
	"github.com/fabworks/rackforge/internal/domain/manifest"
	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/measure"
	"github.com/fabworks/rackforge/internal/metrics"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectService defines project, shell, rack, and configuration operations
// needed by MCP.
type ProjectService interface {
	InitializeProject(ctx context.Context) (manifest.Manifest, error)
	Manifest() manifest.Manifest
	UpdateBuildingShell(ctx context.Context, p shell.Params) error
	BuildingShell() shell.Params
	UpdateRackParameters(ctx context.Context, p rack.Params) error
	ActiveRack() (rack.Params, bool)
	NewRack(ctx context.Context, p rack.Params) error
	UpdateTradeRackConfiguration(ctx context.Context, cfg rack.SavedConfiguration, makeActive bool) (rack.SavedConfiguration, error)
	SetActiveConfiguration(ctx context.Context, id int64) error
	SaveConfigurationToList(ctx context.Context, name string) (rack.SavedConfiguration, error)
	RestoreConfiguration(ctx context.Context, id int64) (rack.Params, []mep.Item, error)
	DeleteTradeRackConfiguration(ctx context.Context, id int64) error
	RenameConfiguration(ctx context.Context, id int64, name string) error
	Configurations() []rack.SavedConfiguration
	SyncManifestWithLocalStorage(ctx context.Context) error
	SyncMEPItemsWithLocalStorage(ctx context.Context) error
	ChangeHistory() []manifest.ChangeRecord
	AddRackPositionChange(ctx context.Context, oldPos, newPos rack.Position, rackID string) error
}

// MEPService defines MEP item operations needed by MCP.
type MEPService interface {
	AddMEPItem(ctx context.Context, item mep.Item) (mep.Item, error)
	RemoveMEPItem(ctx context.Context, id int64, t mep.ItemType) error
	RemoveAllMEPItems(ctx context.Context) error
	UpdateMEPItems(ctx context.Context, items []mep.Item, scope string) error
	MEPItems() mep.Collections
}

// Services contains the domain services and scene components needed by MCP.
type Services struct {
	Project ProjectService
	MEP     MEPService
	Scene   *controller.SceneController
	Measure *measure.Tool
	Metrics *metrics.Metrics
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "rackforge",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
