// Package strategies provides the closed set of trading strategies the
// backtest engine can run. Strategies are selected by identifier and
// configured through a declared parameter schema; there is no user-code
// execution path.
package strategies

import (
	"fmt"
	"sort"

	"backtester/market"
)

// Signal is the order intent a strategy emits for one bar.
// At most one intent per instrument per bar.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Strategy is the interface a bar strategy must implement. It is called
// once per bar of a single instrument; the engine creates one instance
// per instrument per run, so implementations may keep internal state but
// must not share it.
type Strategy interface {
	// Name returns the strategy identifier, e.g. "ma-cross".
	Name() string

	// Warmup returns how many bars are needed before the strategy can
	// emit a non-Hold signal. With fewer bars than this it must hold.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// OnBar observes the next bar and whether a position is currently
	// open in the instrument, and returns the order intent for this bar.
	OnBar(b market.Bar, inPosition bool) Signal
}

// Definition describes one registered strategy: its identifier, parameter
// schema, and constructor.
type Definition struct {
	ID          string
	Description string
	Params      []Param

	// Build constructs a strategy from fully-resolved parameter values.
	Build func(v Values) (Strategy, error)
}

// Registry holds the named strategy definitions available to the engine.
type Registry struct {
	defs map[string]Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition, keyed by its ID.
func (r *Registry) Register(d Definition) {
	r.defs[d.ID] = d
}

// Get retrieves a definition by ID.
func (r *Registry) Get(id string) (Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// List returns all definitions sorted by ID.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// New builds a strategy by ID, validating the given parameter values
// against the definition's schema and filling in defaults.
func (r *Registry) New(id string, v Values) (Strategy, error) {
	d, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %v)", id, r.ids())
	}

	resolved, err := resolveParams(d.Params, v)
	if err != nil {
		return nil, fmt.Errorf("strategy %q: %w", id, err)
	}
	return d.Build(resolved)
}

func (r *Registry) ids() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Builtins returns a registry populated with the built-in strategies.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register(MACrossDefinition())
	r.Register(RSIDefinition())
	r.Register(NoopDefinition())
	return r
}
