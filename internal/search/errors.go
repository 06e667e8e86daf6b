// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "fmt"

// EntrezMaxResults is the hard ceiling of the E-utilities retrieval path.
// NCBI's retstart+retmax window stops at 10,000 records; searches with
// more matches must go through the Entrez Direct path.
const EntrezMaxResults = 10000

// ResultLimitError reports a search whose match count exceeds
// EntrezMaxResults. The search fails outright rather than returning a
// silently truncated table.
type ResultLimitError struct {
	// Count is the total number of matches reported by ESearch.
	Count int
}

func (e *ResultLimitError) Error() string {
	return fmt.Sprintf("search matched %d results, above the %d supported by the Entrez path; use the edirect path instead",
		e.Count, EntrezMaxResults)
}
