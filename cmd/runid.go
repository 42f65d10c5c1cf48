package cmd

import (
	"fmt"
	"strings"

	"github.com/fakeyudi/stride/internal/store"
	"github.com/fakeyudi/stride/internal/tracker"
)

// resolveRunID expands a unique id prefix, as printed by history, to the
// full run id.
func resolveRunID(svc *tracker.Service, prefix string) (string, error) {
	runs, err := svc.History(logCtx)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range runs {
		if r.ID == prefix {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("run id %q is ambiguous", prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%q: %w", prefix, store.ErrRunNotFound)
	}
	return match, nil
}
