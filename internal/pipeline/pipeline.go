// Package pipeline implements the stages that move candidates through
// the selection pipeline: operator CSV imports, the market saturation
// analysis, and the final score rollup. Stages read and write the shared
// database only; they fetch nothing remote.
package pipeline

import (
	"context"
	"fmt"

	"github.com/stordev/sitescout/internal/sites"
)

// listPageSize bounds one candidate page. Stages collect every page
// before mutating rows so score updates cannot shift later pages.
const listPageSize = 200

func listAllCandidates(ctx context.Context, store sites.CandidateStore, state string) ([]sites.SiteCandidate, error) {
	var all []sites.SiteCandidate
	for offset := 0; ; offset += listPageSize {
		page, err := store.List(ctx, sites.CandidateFilter{State: state, Limit: listPageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			return all, nil
		}
	}
}
