package screenshot

import (
	"fmt"
	"strconv"
)

type selectorKind int

const (
	selLast selectorKind = iota
	selAll
	selByIndex
	selLatest
)

// Selector is a closed variant describing which screenshot(s) to return:
// Last (highest recorded sequence), All (full listing), ByIndex (one exact
// sequence number), or Latest (trigger a fresh on-demand capture). Last and
// Latest are deliberately distinct: Last is always historical, Latest is
// always a new capture.
type Selector struct {
	kind  selectorKind
	index int
}

func Last() Selector { return Selector{kind: selLast} }

func All() Selector { return Selector{kind: selAll} }

func ByIndex(n int) Selector { return Selector{kind: selByIndex, index: n} }

func Latest() Selector { return Selector{kind: selLatest} }

// ParseSelector maps the dispatcher-facing string form onto the variant:
// "last", "all", "latest", or a sequence number.
func ParseSelector(s string) (Selector, error) {
	switch s {
	case "", "latest":
		return Latest(), nil
	case "last":
		return Last(), nil
	case "all":
		return All(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid screenshot selector %q: use 'latest', 'last', 'all', or a number", s)
	}
	return ByIndex(n), nil
}

func (s Selector) String() string {
	switch s.kind {
	case selLast:
		return "last"
	case selAll:
		return "all"
	case selLatest:
		return "latest"
	default:
		return strconv.Itoa(s.index)
	}
}
