package actions

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/rendis/actionrules/internal/effects"
	"github.com/rendis/actionrules/internal/metrics"
	"github.com/rendis/actionrules/internal/requirements"
	"github.com/rendis/actionrules/internal/tristate"
	"github.com/rendis/actionrules/internal/world"
	"github.com/rendis/actionrules/pkg/schema"
)

// World is the game state the engine reads. *world.State implements it.
type World interface {
	Facts(rc world.ReqContext, viewer *world.Player) requirements.Facts
	RealDistance(a, b *world.Tile) int
	CanPlayerSeeUnit(p *world.Player, u *world.Unit) bool
	HasRealEmbassy(p, target *world.Player) bool
	CanSeeTechsOf(p, target *world.Player) bool
	CanSeeCityInternals(p *world.Player, c *world.City) bool
	OwnsUniqueOfType(p *world.Player, ut *world.UnitType) bool
	CanCitiesTrade(a, b *world.City) bool
	CanEstablishTradeRoute(a, b *world.City) bool
	StealableTech(actor, target *world.Player) bool
	UnitsAt(t *world.Tile) []*world.Unit
	CityAt(t *world.Tile) *world.City
	TileHasExtraFlag(t *world.Tile, flag string) bool
	ProductionImprovement(c *world.City) *world.Improvement
}

var _ World = (*world.State)(nil)

// Settings are the ruleset switches the hard requirements consult.
type Settings struct {
	// ForceTradeRoute forbids entering a marketplace when a trade route
	// could be established instead.
	ForceTradeRoute bool
}

// Config configures an Engine.
type Config struct {
	Registry  *Registry
	World     World
	Evaluator *requirements.Evaluator
	Effects   *effects.Set
	Settings  Settings
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

// Engine answers action queries against one game state.
type Engine struct {
	registry *Registry
	world    World
	eval     *requirements.Evaluator
	effects  *effects.Set
	settings Settings
	logger   *slog.Logger
	metrics  *metrics.Recorder

	capMu    sync.Mutex
	capGen   uint64
	capCache map[capKey]bool
}

type capKey struct {
	unitType string
	action   ActionID
}

// NewEngine creates an Engine. Registry, World and Evaluator are required.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Registry == nil || cfg.World == nil || cfg.Evaluator == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "engine needs a registry, a world and an evaluator")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	fx := cfg.Effects
	if fx == nil {
		fx = effects.NewSet(cfg.Evaluator)
	}
	return &Engine{
		registry: cfg.Registry,
		world:    cfg.World,
		eval:     cfg.Evaluator,
		effects:  fx,
		settings: cfg.Settings,
		logger:   logger,
		metrics:  cfg.Metrics,
		capCache: make(map[capKey]bool),
	}, nil
}

// Registry returns the registry the engine reads.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// mustLookup returns the action for id and panics on an invalid id.
func (e *Engine) mustLookup(id ActionID) *Action {
	a, err := e.registry.Lookup(id)
	if err != nil {
		schema.Invariantf("lookup of action %s: %v", id, err)
	}
	return a
}

// unitContext builds the requirement context of a unit as actor or target:
// its owner, the city on its tile, its tile, the unit and its type.
func (e *Engine) unitContext(u *world.Unit) world.ReqContext {
	return world.ReqContext{
		Player:   u.Owner,
		City:     e.world.CityAt(u.Tile),
		Tile:     u.Tile,
		Unit:     u,
		UnitType: u.Type,
	}
}

func cityContext(c *world.City) world.ReqContext {
	return world.ReqContext{
		Player: c.Owner,
		City:   c,
		Tile:   c.Tile,
	}
}

// CanUnitTypeDo reports whether units of type ut could ever perform id:
// at least one enabler's actor requirements do not rule the type out when
// nothing but the unit type is known.
func (e *Engine) CanUnitTypeDo(ctx context.Context, ut *world.UnitType, id ActionID) bool {
	if ut == nil {
		return false
	}
	gen := e.registry.Generation()

	e.capMu.Lock()
	if e.capGen != gen {
		clear(e.capCache)
		e.capGen = gen
	}
	key := capKey{unitType: ut.Name, action: id}
	if v, ok := e.capCache[key]; ok {
		e.capMu.Unlock()
		return v
	}
	e.capMu.Unlock()

	facts := world.UnitTypeFacts(ut)
	capable := false
	for _, en := range e.registry.Enablers(id) {
		if e.eval.Evaluate(ctx, facts, en.ActorReqs) != tristate.No {
			capable = true
			break
		}
	}

	e.capMu.Lock()
	if e.capGen == gen {
		e.capCache[key] = capable
	}
	e.capMu.Unlock()
	return capable
}
