package discovery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/util"
)

// MakeCacheKey derives the pool cache key for one discovery request. The key
// must be stable under query-term reordering and niche casing, and must change
// whenever a filter field that narrows the candidate pool changes.
func MakeCacheKey(mode string, niche string, queryTerms []string, filters domain.FilterState) string {
	terms := make([]string, 0, len(queryTerms))
	for _, t := range queryTerms {
		t = util.Normalize(t)
		if t != "" {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)

	var b strings.Builder
	b.WriteString(mode)
	b.WriteByte('|')
	b.WriteString(util.Normalize(niche))
	b.WriteByte('|')
	b.WriteString(strings.Join(terms, ","))
	b.WriteByte('|')
	b.WriteString(string(filters.ContentType))
	b.WriteByte('|')
	b.WriteString(string(filters.DateRange))
	b.WriteByte('|')
	fmt.Fprintf(&b, "%d", filters.MinViewsPerDay)
	b.WriteByte('|')
	b.WriteString(formatOptionalInt64(filters.MaxViewsPerDay))
	b.WriteByte('|')
	b.WriteString(formatOptionalInt64(filters.MinTotalViews))
	b.WriteByte('|')
	b.WriteString(formatOptionalInt64(filters.MaxTotalViews))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

// makeRangeKey builds the durable-cache range key for one page of one date
// range. Pages cache independently so "Load More" never invalidates page 0.
func makeRangeKey(dateRange domain.DateRange, poolKey string, page int) string {
	return fmt.Sprintf("%s:%s:p%d", dateRange, poolKey, page)
}

func formatOptionalInt64(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
