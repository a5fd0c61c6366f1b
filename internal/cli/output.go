package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseIDArg parses a positional id argument.
func parseIDArg(name, raw string) (types.ID, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !types.ID(n).Valid() {
		return types.NoID, userError("invalid %s %q: must be a positive integer", name, raw)
	}
	return types.ID(n), nil
}

// nonNil keeps empty listings as [] in JSON output.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
