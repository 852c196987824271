package poll

import (
	"sort"
	"strings"

	"github.com/outagewatch/outagewatch/internal/status"
)

// Rank sorts results in place by severity (most severe first), then by
// case-insensitive name. The sort is stable so equal rows keep their order.
func Rank(results []status.SourceResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := results[i].Level.Rank(), results[j].Level.Rank()
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(results[i].Descriptor.Name) < strings.ToLower(results[j].Descriptor.Name)
	})
}
