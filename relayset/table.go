package relayset

import (
	"fmt"
	"strconv"

	"github.com/bangzek/k8090"
)

// Alias is a resolved alias.
type Alias struct {
	Name string
	Mask k8090.Mask
	Hops int
}

// Table maps channels to display names.
type Table struct {
	names   [k8090.Relays]string
	aliases []Alias
}

// BuildTable keeps the aliases that name exactly one channel directly, as in
// lamp -> 3. Groups (lamps -> 1,2), aliases of aliases (light -> lamp) and
// empty aliases are left out. When several aliases name the same channel the
// first one by name wins.
func BuildTable(r *Resolver) (*Table, error) {
	t := new(Table)
	if r.Store == nil {
		return t, nil
	}
	es, err := r.Store.Entries()
	if err != nil {
		return nil, err
	}

	for _, e := range es {
		// Resolving the name rather than the target counts the alias itself
		// as the first hop.
		m, hops, err := r.Resolve(e.Name)
		if err != nil {
			return nil, fmt.Errorf("alias %s: %w", e.Name, err)
		}
		if hops > 1 || !m.IsSingle() {
			continue
		}

		t.aliases = append(t.aliases, Alias{e.Name, m, hops})
		if n := m.Channels()[0]; t.names[n-1] == "" {
			t.names[n-1] = e.Name
		}
	}
	return t, nil
}

// Name returns the alias of channel n, or "#n" when there is none.
func (t *Table) Name(n int) string {
	if n >= 1 && n <= k8090.Relays && t.names[n-1] != "" {
		return t.names[n-1]
	}
	return "#" + strconv.Itoa(n)
}

func (t *Table) Aliases() []Alias {
	return t.aliases
}
