// Package templates holds the bot's response wording and rotates through
// interchangeable phrasings so consecutive replies don't repeat.
package templates

import (
	"strconv"
	"strings"
	"sync"
)

// Fixed messages. Placeholders are written as {name}; see Format.
const (
	HelpFormat        = "Try {prefix} [(<nick> <points>) | (stats [<nick>]) | (remove <nick>)]"
	TopFormat         = "Top {count}"
	TopEntryFormat    = "{value} - {nick}"
	NoEntries         = "No recorded points"
	RemovalFormat     = "{source} removed record of points for {target}"
	RemovalHelpFormat = "Use the form: {prefix} remove <nick>"
	NoPointsFormat    = "No points recorded for {target}!"
	PointsHelpFormat  = "Use the format: {prefix} <nick> <value>"
	InternalError     = "Something went wrong keeping score, sorry"
)

// PoolID names a single-phrase rotating pool.
type PoolID int

const (
	SelfRemoval PoolID = iota
	SelfAdjust
)

func (p PoolID) String() string {
	switch p {
	case SelfRemoval:
		return "self_removal"
	case SelfAdjust:
		return "self_adjust"
	default:
		return "pool(" + strconv.Itoa(int(p)) + ")"
	}
}

// Pair is a give/take phrasing of the same message. Both halves are always
// picked together so wording stays matched.
type Pair struct {
	Give string
	Take string
}

// Pick returns the give phrasing for non-negative values and the take
// phrasing otherwise.
func (p Pair) Pick(value int64) string {
	if value >= 0 {
		return p.Give
	}
	return p.Take
}

// Catalog is the full set of rotating phrasings.
type Catalog struct {
	SelfRemoval []string
	SelfAdjust  []string
	Points      []Pair
}

func DefaultCatalog() Catalog {
	return Catalog{
		SelfRemoval: []string{
			"You can't remove yourself!",
			"Why should I let you do that?",
			"Nice try",
			"I don't think I should let you do that",
		},
		SelfAdjust: []string{
			"You can't give yourself points!",
			"That's not allowed",
			"Did you think that was going to work?",
			"It's better to give than to receive!",
		},
		Points: []Pair{
			{
				Give: "{source} gave {value} point{plural} to {target}!",
				Take: "{source} took {value} point{plural} from {target}!",
			},
			{
				Give: "{value} point{plural} to {target}!",
				Take: "{value} point{plural} from {target}!",
			},
			{
				Give: "{target} is the proud owner of {value} more point{plural}",
				Take: "{target} has {value} fewer point{plural} now",
			},
			{
				Give: "{target} is now {value} point{plural} richer!",
				Take: "{target} is now {value} point{plural} poorer",
			},
			{
				Give: "{source} tipped {target} with {value} point{plural}!",
				Take: "{source} stripped {target} of {value} precious point{plural}",
			},
		},
	}
}

// Selector hands out templates round-robin. The first call for a pool
// returns its first entry. Cursors live only in memory.
type Selector struct {
	mu      sync.Mutex
	catalog Catalog
	cursors map[PoolID]int
	pair    int
}

// NewSelector panics if a pool in catalog is empty.
func NewSelector(catalog Catalog) *Selector {
	if len(catalog.SelfRemoval) == 0 || len(catalog.SelfAdjust) == 0 || len(catalog.Points) == 0 {
		panic("templates: every pool needs at least one template")
	}
	return &Selector{
		catalog: catalog,
		cursors: make(map[PoolID]int),
	}
}

func (s *Selector) pool(id PoolID) []string {
	switch id {
	case SelfRemoval:
		return s.catalog.SelfRemoval
	case SelfAdjust:
		return s.catalog.SelfAdjust
	default:
		return nil
	}
}

// Next returns the current template of pool id and advances its cursor.
func (s *Selector) Next(id PoolID) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.pool(id)
	if len(pool) == 0 {
		return ""
	}
	i := s.cursors[id]
	s.cursors[id] = (i + 1) % len(pool)
	return pool[i]
}

// NextPair returns the current give/take pair and advances the shared cursor.
func (s *Selector) NextPair() Pair {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.catalog.Points[s.pair]
	s.pair = (s.pair + 1) % len(s.catalog.Points)
	return p
}

// Reset rewinds every cursor to the first template.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors = make(map[PoolID]int)
	s.pair = 0
}

// Format substitutes {key} placeholders from vars. Unknown placeholders are
// left as they are.
func Format(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	oldnew := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		oldnew = append(oldnew, "{"+k+"}", v)
	}
	return strings.NewReplacer(oldnew...).Replace(tmpl)
}

// Plural is the unit suffix for value: empty for exactly one, "s" otherwise.
func Plural(value int64) string {
	if value == 1 || value == -1 {
		return ""
	}
	return "s"
}
