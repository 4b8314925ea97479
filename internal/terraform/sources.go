package terraform

import (
	"context"
	"fmt"

	"plandrift/internal/config"
)

// Sources picks the PlanSource for a target by its source kind
type Sources map[string]PlanSource

// FetchPlan implements PlanSource by delegating on target.Source.
func (s Sources) FetchPlan(ctx context.Context, target *config.Target) (string, error) {
	source, ok := s[target.Source]
	if !ok {
		return "", fmt.Errorf("no plan source registered for %q (target %s)", target.Source, target.Name)
	}
	return source.FetchPlan(ctx, target)
}
