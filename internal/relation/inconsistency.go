package relation

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Kind classifies a data inconsistency.
type Kind string

// Inconsistency kinds.
const (
	// KindMultipleParentUnions: a person is child or adoptee of more than one union.
	KindMultipleParentUnions Kind = "multiple_parent_unions"
	// KindExcessPartners: a union has more than two partner junctions.
	KindExcessPartners Kind = "excess_partners"
)

// Inconsistency reports data that violates a store invariant. The resolver
// has already picked the first candidate by ID and carried on; Chosen is
// that candidate and Candidates lists all of them in ID order.
type Inconsistency struct {
	Kind       Kind
	Subject    types.ID
	Chosen     types.ID
	Candidates []types.ID
}

func (i Inconsistency) String() string {
	switch i.Kind {
	case KindMultipleParentUnions:
		return fmt.Sprintf("person %d is child of unions %v; using %d", i.Subject, i.Candidates, i.Chosen)
	case KindExcessPartners:
		return fmt.Sprintf("union %d has partners %v; using the first two", i.Subject, i.Candidates)
	default:
		return fmt.Sprintf("%s on %d: %v", i.Kind, i.Subject, i.Candidates)
	}
}

// Observer receives inconsistencies as the resolver meets them.
type Observer func(Inconsistency)

// LogObserver returns an Observer that logs each inconsistency as a warning.
func LogObserver(logger *slog.Logger) Observer {
	return func(i Inconsistency) {
		logger.Warn("data inconsistency",
			"kind", string(i.Kind),
			"subject", int64(i.Subject),
			"chosen", int64(i.Chosen),
			"candidates", fmt.Sprint(i.Candidates),
		)
	}
}

// Collector accumulates inconsistencies, for hosts that want to show them
// after a query instead of logging them.
type Collector struct {
	Found []Inconsistency
}

// Observe appends i to the collector.
func (c *Collector) Observe(i Inconsistency) {
	c.Found = append(c.Found, i)
}

// Tee returns an Observer that forwards each inconsistency to every non-nil
// observer in order.
func Tee(observers ...Observer) Observer {
	return func(i Inconsistency) {
		for _, o := range observers {
			if o != nil {
				o(i)
			}
		}
	}
}
