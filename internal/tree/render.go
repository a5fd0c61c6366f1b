package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Namer returns a display label for a person, or "" when it has none.
type Namer func(types.ID) string

// StoreNamer labels persons with the name field of their person row.
func StoreNamer(s types.Store) Namer {
	return func(id types.ID) string {
		rec, err := s.GetTable(types.TablePerson).Get(id)
		if err != nil {
			return ""
		}
		return types.PersonOf(id, rec).Name
	}
}

// Render writes a plain-text outline of t, one line per family slot and one
// line per child of the focal union. A nil namer prints bare ids.
func Render(w io.Writer, t Tree, namer Namer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "depth %d\n", t.Depth)
	for g, gen := range t.Generations {
		fmt.Fprintf(&b, "generation %d\n", g)
		for i, f := range gen {
			fmt.Fprintf(&b, "  [%d] %s\n", i, familyLine(f, namer))
			if g != 0 {
				continue
			}
			for _, c := range f.Children {
				b.WriteString("      child ")
				b.WriteString(label(c.ID, namer))
				if c.Adopted {
					b.WriteString(" adopted")
				}
				if c.HasUnion {
					b.WriteString(" +unions")
				}
				b.WriteByte('\n')
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func familyLine(f Family, namer Namer) string {
	if f.Empty() {
		return "unknown"
	}
	head := "single"
	if f.Known {
		head = "union " + f.UnionID.String()
	}
	return fmt.Sprintf("%s: %s + %s", head, partnerLabel(f.Partner1, namer), partnerLabel(f.Partner2, namer))
}

func partnerLabel(p Partner, namer Namer) string {
	if !p.Known {
		return "?"
	}
	return label(p.ID, namer)
}

func label(id types.ID, namer Namer) string {
	if namer != nil {
		if name := namer(id); name != "" {
			return fmt.Sprintf("%s (%d)", name, id)
		}
	}
	return "#" + id.String()
}
