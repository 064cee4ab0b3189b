package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/actionrules/internal/actions"
	"github.com/rendis/actionrules/internal/world"
)

// ActionServerDeps holds the dependencies for creating an ActionServer.
type ActionServerDeps struct {
	Engine *actions.Engine
	World  *world.State
	// Ruleset names the loaded ruleset in logs.
	Ruleset string
	Version string
	Logger  *slog.Logger
}

// ActionServer exposes action queries as MCP tools.
type ActionServer struct {
	engine    *actions.Engine
	world     *world.State
	ruleset   string
	logger    *slog.Logger
	filter    *resultFilter
	mcpServer *server.MCPServer
}

// NewActionServer creates an ActionServer with all 4 tools registered.
func NewActionServer(deps ActionServerDeps) *ActionServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &ActionServer{
		engine:  deps.Engine,
		world:   deps.World,
		ruleset: deps.Ruleset,
		logger:  logger,
		filter:  newResultFilter(),
	}

	mcpSrv := server.NewMCPServer(
		"actionrules",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("actionrules answers whether a unit may perform a game action against a city or unit and how likely it is to succeed. Use actions.list to see the actions, actions.enabled for a yes/no answer, actions.probability for the chance as the actor's player sees it, and actions.matrix for every action at once."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *ActionServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *ActionServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *ActionServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: listTool(), Handler: s.handleList},
		{Tool: enabledTool(), Handler: s.handleEnabled},
		{Tool: probabilityTool(), Handler: s.handleProbability},
		{Tool: matrixTool(), Handler: s.handleMatrix},
	}
}

// --- Tool definitions ---

func listTool() mcp.Tool {
	return mcp.NewTool("actions.list",
		mcp.WithDescription("List the actions of the loaded ruleset"),
		mcp.WithString("filter", mcp.Description("jq expression applied to the result")),
	)
}

func enabledTool() mcp.Tool {
	return mcp.NewTool("actions.enabled",
		mcp.WithDescription("Check whether a unit may perform an action against a target"),
		mcp.WithString("action", mcp.Required(), mcp.Description("Rule name of the action, e.g. \"Establish Embassy\"")),
		mcp.WithNumber("actor_id", mcp.Required(), mcp.Description("ID of the acting unit")),
		mcp.WithNumber("target_city_id", mcp.Description("ID of the target city (city actions)")),
		mcp.WithNumber("target_unit_id", mcp.Description("ID of the target unit (unit actions)")),
	)
}

func probabilityTool() mcp.Tool {
	return mcp.NewTool("actions.probability",
		mcp.WithDescription("Estimate the chance that a unit succeeds in an action, as its owner sees it"),
		mcp.WithString("action", mcp.Required(), mcp.Description("Rule name of the action, e.g. \"Bribe Unit\"")),
		mcp.WithNumber("actor_id", mcp.Required(), mcp.Description("ID of the acting unit")),
		mcp.WithNumber("target_city_id", mcp.Description("ID of the target city (city actions)")),
		mcp.WithNumber("target_unit_id", mcp.Description("ID of the target unit (unit actions)")),
		mcp.WithString("mnemonic", mcp.Description("Mnemonic marker for the display name (default: none)")),
	)
}

func matrixTool() mcp.Tool {
	return mcp.NewTool("actions.matrix",
		mcp.WithDescription("Estimate every action of a unit against one target"),
		mcp.WithNumber("actor_id", mcp.Required(), mcp.Description("ID of the acting unit")),
		mcp.WithNumber("target_city_id", mcp.Description("ID of the target city")),
		mcp.WithNumber("target_unit_id", mcp.Description("ID of the target unit")),
		mcp.WithString("filter", mcp.Description("jq expression applied to the result, e.g. '[.[] | select(.possible)]'")),
	)
}
