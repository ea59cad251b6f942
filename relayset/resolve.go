// Package relayset turns relay lists such as "1,lamp" into channel masks,
// following aliases, and merges the per-action masks of one invocation.
package relayset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bangzek/k8090"
)

// MaxExpansions bounds the number of aliases one Resolve call may follow.
const MaxExpansions = 9999

var (
	ErrInvalidInput = errors.New("invalid relay list")
	ErrAliasCycle   = errors.New("circular aliasing")
)

// Resolver resolves relay lists against an alias store. A nil Store knows
// no aliases.
type Resolver struct {
	Store Store
}

// Resolve returns the union of every channel named by list and the number
// of aliases followed to get there. Each token is looked up as an alias
// first and only then parsed as a channel number.
func (r *Resolver) Resolve(list string) (k8090.Mask, int, error) {
	x := expansion{store: r.Store, budget: MaxExpansions}
	err := x.resolve(list)
	return x.mask, x.hops, err
}

type expansion struct {
	store  Store
	budget int
	path   []string

	mask k8090.Mask
	hops int
}

func (x *expansion) lookup(name string) (string, bool, error) {
	if x.store == nil {
		return "", false, nil
	}
	return x.store.Lookup(name)
}

func (x *expansion) resolve(list string) error {
	if list == "" {
		return fmt.Errorf("%w: empty list", ErrInvalidInput)
	}

	tokens := 0
	for tok := range strings.SplitSeq(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		tokens++

		target, ok, err := x.lookup(tok)
		if err != nil {
			return err
		} else if ok {
			if err := x.follow(tok, target); err != nil {
				return err
			}
			continue
		}

		n, err := parseRelay(tok)
		if err != nil {
			return err
		}
		x.mask |= k8090.Relay(n)
	}

	if tokens == 0 {
		return fmt.Errorf("%w: no relay in %q", ErrInvalidInput, list)
	}
	return nil
}

func (x *expansion) follow(name, target string) error {
	for i, p := range x.path {
		if p == name {
			loop := append(x.path[i:len(x.path):len(x.path)], name)
			return fmt.Errorf("%w: %s", ErrAliasCycle, strings.Join(loop, " -> "))
		}
	}
	if x.budget == 0 {
		return fmt.Errorf("%w: more than %d aliases followed",
			ErrAliasCycle, MaxExpansions)
	}
	x.budget--
	x.hops++

	x.path = append(x.path, name)
	err := x.resolve(target)
	x.path = x.path[:len(x.path)-1]
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func parseRelay(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a relay number or alias",
			ErrInvalidInput, s)
	}
	if n < 1 || n > k8090.Relays {
		return 0, fmt.Errorf("%w: relay %d out of range 1-%d",
			ErrInvalidInput, n, k8090.Relays)
	}
	return n, nil
}
