package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/internal/session"
	"github.com/mesh-intelligence/lineage/internal/tree"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

const browseHelp = `commands:
  open <person> [union]   move to a person or union
  back | forward          walk the history
  next <partner>          next union of a partner
  prev <partner>          previous union of a partner
  parents [1|2]           move to the parents of a focal partner
  child <person>          move to a child of the focal union
  offset <n>              scroll the children list of the focal union
  history                 list visited focal points
  show                    print the current view
  quit                    leave
`

func newBrowseCmd(flags *rootFlags) *cobra.Command {
	var person, union int64
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Navigate the family tree interactively",
		Long:  "Read navigation commands from stdin and print the tree after each step.\n\n" + browseHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.openEngine(cmd, engineHooks{})
			if err != nil {
				return err
			}
			reg := session.NewRegistry(e.rel, e.builder, session.WithLogger(e.logger))
			b := &browser{
				sess:  reg.New(),
				out:   cmd.OutOrStdout(),
				namer: e.namer,
				json:  flags.jsonMode,
			}
			defer reg.Close(b.sess.ID())

			if person > 0 || union > 0 {
				if err := b.show(b.sess.Open(types.ID(person), types.ID(union))); err != nil {
					return err
				}
			}
			return b.run(cmd.InOrStdin())
		},
	}
	cmd.Flags().Int64Var(&person, "person", 0, "person to open first")
	cmd.Flags().Int64Var(&union, "union", 0, "union to open first")
	return cmd
}

// browser runs one interactive session over a line-oriented reader.
type browser struct {
	sess  *session.Session
	out   io.Writer
	namer tree.Namer
	json  bool
}

func (b *browser) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		quit, err := b.exec(fields[0], fields[1:])
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return sysError("read commands: %w", err)
	}
	return nil
}

// exec runs one command. Malformed input is reported on out and does not end
// the session.
func (b *browser) exec(name string, args []string) (quit bool, err error) {
	ids, perr := parseIDs(args)
	if perr != nil {
		fmt.Fprintln(b.out, perr)
		return false, nil
	}

	switch name {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		_, err = io.WriteString(b.out, browseHelp)
	case "open":
		if len(ids) == 0 || len(ids) > 2 {
			return false, b.usage("open <person> [union]")
		}
		person, union := ids[0], types.NoID
		if len(ids) == 2 {
			union = ids[1]
		}
		err = b.show(b.sess.Open(person, union))
	case "back":
		err = b.show(b.sess.Back())
	case "forward":
		err = b.show(b.sess.Forward())
	case "next", "prev":
		if len(ids) != 1 {
			return false, b.usage(name + " <partner>")
		}
		if name == "next" {
			err = b.show(b.sess.NextUnion(ids[0]))
		} else {
			err = b.show(b.sess.PreviousUnion(ids[0]))
		}
	case "parents":
		side := 1
		if len(ids) == 1 {
			side = int(ids[0])
		}
		if len(ids) > 1 || (side != 1 && side != 2) {
			return false, b.usage("parents [1|2]")
		}
		err = b.show(b.sess.Parents(side))
	case "child":
		if len(ids) != 1 {
			return false, b.usage("child <person>")
		}
		err = b.show(b.sess.Child(ids[0]))
	case "offset":
		if len(args) != 1 {
			return false, b.usage("offset <n>")
		}
		n, _ := strconv.Atoi(args[0])
		err = b.show(b.sess.SetChildrenOffset(n), true)
	case "history":
		err = b.history()
	case "show":
		err = b.show(b.sess.View(), true)
	default:
		fmt.Fprintf(b.out, "unknown command %q; type help\n", name)
	}
	return false, err
}

func (b *browser) usage(text string) error {
	_, err := fmt.Fprintln(b.out, "usage:", text)
	return err
}

// show prints v when the step moved, and a short notice otherwise.
func (b *browser) show(v session.View, moved bool) error {
	if !moved {
		_, err := fmt.Fprintln(b.out, "no move")
		return err
	}
	if b.json {
		return printJSON(b.out, v)
	}
	fmt.Fprintf(b.out, "focal %s\n", v.Focal)
	for _, p := range v.Positions {
		fmt.Fprintf(b.out, "partner %d: union %d of %d\n", p.PartnerID, p.Index+1, p.Count)
	}
	if v.ChildrenOffset > 0 {
		fmt.Fprintf(b.out, "children from %d\n", v.ChildrenOffset)
	}
	return tree.Render(b.out, v.Tree, b.namer)
}

func (b *browser) history() error {
	entries, pos := b.sess.History()
	for i, fp := range entries {
		marker := " "
		if i == pos {
			marker = "*"
		}
		if _, err := fmt.Fprintf(b.out, "%s %d %s\n", marker, i, fp); err != nil {
			return err
		}
	}
	return nil
}

// parseIDs parses every argument as a record id. Non-numeric arguments are
// only accepted by commands that read args themselves.
func parseIDs(args []string) ([]types.ID, error) {
	ids := make([]types.ID, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", a)
		}
		ids = append(ids, types.ID(n))
	}
	return ids, nil
}
