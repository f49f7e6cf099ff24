package game

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"
)

const (
	StrategyAlwaysCooperate = "always_cooperate"
	StrategyAlwaysDefect    = "always_defect"
	StrategyTitForTat       = "tit_for_tat"
	StrategyRandom          = "random"

	DefaultCooperateProbability = 0.5
)

// Strategy decides the opponent's next action from the other player's
// prior actions in the current session, oldest first.
type Strategy interface {
	Name() string
	Decide(history []Action) Action
	Reset()
}

// StrategyOptions configures strategies that need it. A nil Rand gets a
// time-seeded source; a nil CooperateProbability means 0.5. Only the random
// strategy reads CooperateProbability.
type StrategyOptions struct {
	Rand                 *rand.Rand
	CooperateProbability *float64
}

// ValidateCooperateProbability reports whether p is usable as the random
// strategy's chance to cooperate.
func ValidateCooperateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return &FieldError{Field: "cooperate_probability", Value: p, Reason: "must be within [0, 1]", Err: ErrInvalidConfig}
	}
	return nil
}

type strategyDef struct {
	description string
	build       func(StrategyOptions) (Strategy, error)
}

func fixed(s Strategy) func(StrategyOptions) (Strategy, error) {
	return func(StrategyOptions) (Strategy, error) { return s, nil }
}

var strategyRegistry = map[string]strategyDef{
	StrategyAlwaysCooperate: {
		description: "Always cooperates",
		build:       fixed(constantStrategy{name: StrategyAlwaysCooperate, action: Cooperate}),
	},
	StrategyAlwaysDefect: {
		description: "Always defects",
		build:       fixed(constantStrategy{name: StrategyAlwaysDefect, action: Defect}),
	},
	StrategyTitForTat: {
		description: "Starts cooperating, then mirrors your last action",
		build:       fixed(titForTat{}),
	},
	StrategyRandom: {
		description: "Randomly chooses to cooperate or defect",
		build:       newRandomStrategy,
	},
}

// NewStrategy resolves a strategy by its registered name.
func NewStrategy(name string, opts StrategyOptions) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	def, ok := strategyRegistry[key]
	if !ok {
		return nil, &FieldError{
			Field:  "strategy",
			Value:  name,
			Reason: "available: " + strings.Join(StrategyNames(), ", "),
			Err:    ErrUnknownStrategy,
		}
	}
	return def.build(opts)
}

// StrategyNames returns the registered strategy names in sorted order.
func StrategyNames() []string {
	names := make([]string, 0, len(strategyRegistry))
	for name := range strategyRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DescribeStrategy(name string) (string, bool) {
	def, ok := strategyRegistry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return def.description, true
}

type constantStrategy struct {
	name   string
	action Action
}

func (s constantStrategy) Name() string           { return s.name }
func (s constantStrategy) Decide([]Action) Action { return s.action }
func (s constantStrategy) Reset()                 {}

type titForTat struct{}

func (titForTat) Name() string { return StrategyTitForTat }

func (titForTat) Decide(history []Action) Action {
	if len(history) == 0 {
		return Cooperate
	}
	return history[len(history)-1]
}

func (titForTat) Reset() {}

type randomStrategy struct {
	rnd *rand.Rand
	p   float64
}

func newRandomStrategy(opts StrategyOptions) (Strategy, error) {
	p := DefaultCooperateProbability
	if opts.CooperateProbability != nil {
		p = *opts.CooperateProbability
		if err := ValidateCooperateProbability(p); err != nil {
			return nil, err
		}
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &randomStrategy{rnd: rnd, p: p}, nil
}

func (s *randomStrategy) Name() string { return StrategyRandom }

func (s *randomStrategy) Decide([]Action) Action {
	if s.rnd.Float64() < s.p {
		return Cooperate
	}
	return Defect
}

// Reset keeps the random source; each session owns its own instance.
func (s *randomStrategy) Reset() {}
