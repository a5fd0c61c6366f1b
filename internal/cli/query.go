package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/internal/dates"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

func newPartnersCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "partners <union-id>",
		Short: "List the partners of a union",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("union id", args[0])
			if err != nil {
				return err
			}
			e, err := flags.openEngine(cmd, engineHooks{})
			if err != nil {
				return err
			}
			partners := e.rel.PartnersOf(id)
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, map[string]any{"union_id": id, "partners": nonNil(partners)})
			}
			for _, p := range partners {
				fmt.Fprintln(out, e.label(p))
			}
			return nil
		},
	}
}

// childView is the JSON form of one child of a union.
type childView struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name,omitempty"`
	Adopted  bool     `json:"adopted"`
	HasUnion bool     `json:"has_union"`
}

func newChildrenCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "children <union-id>",
		Short: "List the children of a union",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("union id", args[0])
			if err != nil {
				return err
			}
			e, err := flags.openEngine(cmd, engineHooks{})
			if err != nil {
				return err
			}
			children := []childView{}
			for _, c := range e.rel.ChildrenOf(id) {
				children = append(children, childView{
					ID:       c,
					Name:     e.namer(c),
					Adopted:  e.rel.IsAdopted(c),
					HasUnion: e.rel.HasUnion(c),
				})
			}
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, map[string]any{"union_id": id, "children": children})
			}
			for _, c := range children {
				line := e.label(c.ID)
				if c.Adopted {
					line += " adopted"
				}
				if c.HasUnion {
					line += " +unions"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newParentsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "parents <person-id>",
		Short: "Show the union a person descends from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("person id", args[0])
			if err != nil {
				return err
			}
			e, err := flags.openEngine(cmd, engineHooks{})
			if err != nil {
				return err
			}
			union, found := e.rel.ParentsUnionOf(id)
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				v := map[string]any{"person_id": id, "found": found}
				if found {
					v["union_id"] = union
					v["partners"] = nonNil(e.rel.PartnersOf(union))
				}
				return printJSON(out, v)
			}
			if !found {
				fmt.Fprintf(out, "no parents recorded for %s\n", e.label(id))
				return nil
			}
			names := make([]string, 0, 2)
			for _, p := range e.rel.PartnersOf(union) {
				names = append(names, e.label(p))
			}
			fmt.Fprintf(out, "union %d: %s\n", union, strings.Join(names, " + "))
			return nil
		},
	}
}

// unionView is the JSON form of one union of a person.
type unionView struct {
	UnionID types.ID `json:"union_id"`
	Partner types.ID `json:"partner_id,omitempty"`
	Year    string   `json:"year,omitempty"`
}

func newUnionsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unions <person-id>",
		Short: "List the unions a person is a partner in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("person id", args[0])
			if err != nil {
				return err
			}
			e, err := flags.openEngine(cmd, engineHooks{})
			if err != nil {
				return err
			}
			unions := []unionView{}
			for _, u := range e.rel.SiblingUnionsOf(id) {
				v := unionView{UnionID: u}
				v.Partner, _ = e.rel.OtherPartner(u, id)
				v.Year, _ = e.dates.EarliestUnionYear(u)
				unions = append(unions, v)
			}
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, map[string]any{"person_id": id, "unions": unions})
			}
			for i, u := range unions {
				line := fmt.Sprintf("%d/%d union %d", i+1, len(unions), u.UnionID)
				if u.Partner.Valid() {
					line += " with " + e.label(u.Partner)
				}
				if u.Year != "" {
					line += " (" + u.Year + ")"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newAdoptedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "adopted <person-id>",
		Short: "Report whether a person has an adoption event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("person id", args[0])
			if err != nil {
				return err
			}
			e, err := flags.openEngine(cmd, engineHooks{})
			if err != nil {
				return err
			}
			adopted := e.rel.IsAdopted(id)
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"person_id": id, "adopted": adopted})
			}
			fmt.Fprintln(cmd.OutOrStdout(), adopted)
			return nil
		},
	}
}

// dateView is the JSON form of a resolved event date.
type dateView struct {
	Text      string `json:"text"`
	Year      int    `json:"year"`
	Qualifier string `json:"qualifier"`
	Calendar  string `json:"calendar"`
	Place     string `json:"place,omitempty"`
	EventID   int64  `json:"event_id"`
}

func newDateView(m dates.Match, place types.Place, hasPlace bool) *dateView {
	v := &dateView{
		Text:      m.Date.Text,
		Year:      m.Date.Year(),
		Qualifier: m.Date.Qualifier.String(),
		Calendar:  m.Date.Calendar,
		EventID:   int64(m.Event.ID),
	}
	if hasPlace {
		v.Place = place.Name
	}
	return v
}

func (v *dateView) line(label string) string {
	if v == nil {
		return label + ": unknown"
	}
	s := fmt.Sprintf("%s: %s (%s, %s)", label, v.Text, v.Qualifier, v.Calendar)
	if v.Place != "" {
		s += " " + v.Place
	}
	return s
}

func newDatesCmd(flags *rootFlags) *cobra.Command {
	var union bool
	cmd := &cobra.Command{
		Use:   "dates <id>",
		Short: "Show birth and death of a person, or the date of a union",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("id", args[0])
			if err != nil {
				return err
			}
			e, err := flags.openEngine(cmd, engineHooks{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if union {
				var v *dateView
				if m, ok := e.dates.EarliestUnionDate(id); ok {
					place, hasPlace := e.dates.EarliestUnionPlace(id)
					v = newDateView(m, place, hasPlace)
				}
				if flags.jsonMode {
					return printJSON(out, map[string]any{"union_id": id, "date": v})
				}
				fmt.Fprintln(out, v.line("union"))
				return nil
			}

			var birth, death *dateView
			if m, ok := e.dates.EarliestBirth(id); ok {
				place, hasPlace := e.dates.BirthPlace(id)
				birth = newDateView(m, place, hasPlace)
			}
			if m, ok := e.dates.LatestDeath(id); ok {
				place, hasPlace := e.dates.DeathPlace(id)
				death = newDateView(m, place, hasPlace)
			}
			if flags.jsonMode {
				return printJSON(out, map[string]any{"person_id": id, "birth": birth, "death": death})
			}
			fmt.Fprintln(out, birth.line("birth"))
			fmt.Fprintln(out, death.line("death"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&union, "union", false, "treat the id as a union and show its earliest dated event")
	return cmd
}
