package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStrategy indicates that a strategy name could not be parsed.
var ErrInvalidStrategy = errors.New("unknown scan strategy")

// Strategy is a bitmask of scan passes composable within one session.
type Strategy uint8

const (
	// StrategyDirect matches signatures at every byte offset of every
	// buffer. It is the base pass and always runs.
	StrategyDirect Strategy = 1 << iota

	// StrategySliding overlaps adjacent reads by one byte less than the
	// longest registered header, so a header straddling a buffer
	// boundary is still seen.
	StrategySliding

	// StrategyFragments parks candidates whose footer lies beyond the
	// current buffer and reassembles them across later buffers.
	StrategyFragments

	// StrategyOffset re-scans regions without candidates after the main
	// pass, catching headers missed at buffer seams when sliding is off.
	StrategyOffset
)

// DefaultStrategies is the composition used when none are configured.
const DefaultStrategies = StrategyDirect | StrategySliding | StrategyFragments

// Has reports whether all passes in flag are enabled.
func (s Strategy) Has(flag Strategy) bool {
	return s&flag == flag
}

// String returns the canonical comma-separated pass list.
func (s Strategy) String() string {
	var parts []string
	for _, e := range strategyNames {
		if s.Has(e.flag) {
			parts = append(parts, e.name)
		}
	}
	if len(parts) == 0 {
		return "direct"
	}
	return strings.Join(parts, ",")
}

var strategyNames = []struct {
	flag Strategy
	name string
}{
	{StrategyDirect, "direct"},
	{StrategySliding, "sliding"},
	{StrategyFragments, "fragments"},
	{StrategyOffset, "offset"},
}

// ParseStrategies parses a comma-separated strategy list. The direct pass
// is always included. Empty input or "default" selects DefaultStrategies;
// "all" enables every pass.
func ParseStrategies(s string) (Strategy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "default" {
		return DefaultStrategies, nil
	}

	var out Strategy = StrategyDirect
	for _, tok := range strings.Split(s, ",") {
		switch strings.TrimSpace(tok) {
		case "", "direct":
			// Already on.
		case "sliding", "window":
			out |= StrategySliding
		case "fragments", "fragmented":
			out |= StrategyFragments
		case "offset":
			out |= StrategyOffset
		case "all":
			out |= StrategySliding | StrategyFragments | StrategyOffset
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, strings.TrimSpace(tok))
		}
	}
	return out, nil
}
