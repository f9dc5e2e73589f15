// Package catalog lists the equipment identifiers and locations offered to
// users when recording an allocation. The lists are informational; entries
// are not validated against them.
package catalog

import (
	"fmt"
	"strconv"
)

// Catalog is the selectable id space.
type Catalog struct {
	Robots     []string `json:"robots"`
	Surrogates []string `json:"surrogates"`
	Headsets   []string `json:"headsets"`
	Locations  []string `json:"locations"`
}

// Default returns the standard catalogue:
// robots B-001..B-040 and C-100..C-140, surrogates TB-001..TB-040 and
// TC-001..TC-040, headsets 1..40 and five rooms plus UPS.
func Default() *Catalog {
	c := &Catalog{
		Locations: []string{"Room A", "Room B", "Room C", "Room D", "Room E", "UPS"},
	}
	c.Robots = append(series("B-%03d", 1, 40), series("C-%d", 100, 140)...)
	c.Surrogates = append(series("TB-%03d", 1, 40), series("TC-%03d", 1, 40)...)
	for i := 1; i <= 40; i++ {
		c.Headsets = append(c.Headsets, strconv.Itoa(i))
	}
	return c
}

func series(format string, from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf(format, i))
	}
	return out
}
