package layout

import (
	"maps"
	"strings"

	"github.com/PeterMaltzoff/huh/pkg/errors"
)

// Kind names a layout strategy.
type Kind string

const (
	Vertical   Kind = "vertical"
	Horizontal Kind = "horizontal"
	Radial     Kind = "radial"
	Force      Kind = "force"
)

// DefaultKind is the layout used for freshly loaded graphs.
const DefaultKind = Radial

// OptionEngine is the option key that selects the Graphviz engine.
const OptionEngine = "layout"

// Kinds returns all layout kinds in menu order.
func Kinds() []Kind {
	return []Kind{Vertical, Horizontal, Radial, Force}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case Vertical, Horizontal, Radial, Force:
		return true
	}
	return false
}

// Next returns the kind after k in menu order, wrapping around.
func (k Kind) Next() Kind {
	all := Kinds()
	for i, kk := range all {
		if kk == k {
			return all[(i+1)%len(all)]
		}
	}
	return DefaultKind
}

// ParseKind parses a kind name, ignoring case and surrounding space. The
// empty string yields [DefaultKind].
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultKind, nil
	}
	if k := Kind(s); k.Valid() {
		return k, nil
	}
	return "", errors.New(errors.ErrCodeInvalidLayout, "unknown layout kind %q (want vertical, horizontal, radial or force)", s)
}

// Spacing below converts pixel distances to Graphviz inches (72 px each).
var (
	common = map[string]string{
		"splines": "line",
		"pad":     "0.7",
	}

	defaults = map[Kind]map[string]string{
		Vertical: {
			OptionEngine: "dot",
			"rankdir":    "TB",
			"ranksep":    "2.08",
			"nodesep":    "1.39",
		},
		Horizontal: {
			OptionEngine: "dot",
			"rankdir":    "LR",
			"ranksep":    "2.78",
			"nodesep":    "2.08",
		},
		Radial: {
			OptionEngine: "twopi",
			"ranksep":    "2.08",
			"overlap":    "false",
		},
		Force: {
			OptionEngine: "fdp",
			"maxiter":    "300",
			"K":          "1.67",
			"overlap":    "false",
		},
	}
)

// DefaultOptions returns a fresh copy of the options for k.
func DefaultOptions(k Kind) map[string]string {
	out := maps.Clone(common)
	maps.Copy(out, defaults[k])
	return out
}

// MergeOptions returns the defaults for k with overrides applied on top.
func MergeOptions(k Kind, overrides map[string]string) map[string]string {
	out := DefaultOptions(k)
	maps.Copy(out, overrides)
	return out
}
