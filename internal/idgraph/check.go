package idgraph

import (
	"fmt"
	"slices"

	"alsdoctor/internal/alsfile"
)

// Report summarises reference integrity for one tree.
type Report struct {
	Owners     int          `json:"owners"`
	References int          `json:"references"`
	Max        Identifier   `json:"max_identifier"`
	Duplicates []Identifier `json:"duplicate_owners,omitempty"`
	Dangling   []Identifier `json:"dangling_references,omitempty"`
}

// OK reports whether every reference resolves and no owner identifier repeats.
func (r Report) OK() bool {
	return len(r.Duplicates) == 0 && len(r.Dangling) == 0
}

func (r Report) String() string {
	if r.OK() {
		return fmt.Sprintf("%d owners, %d references, all resolved", r.Owners, r.References)
	}
	return fmt.Sprintf("%d owners, %d references, %d duplicate owners, %d dangling references",
		r.Owners, r.References, len(r.Duplicates), len(r.Dangling))
}

// Check scans root for duplicate owners and references without an owner.
// Reported identifiers are sorted and distinct.
func Check(root *alsfile.RawNode) Report {
	owners := map[Identifier]int{}
	var refs []Identifier
	var report Report

	root.Walk(func(n *alsfile.RawNode) bool {
		switch role, id := Classify(n); role {
		case RoleOwner:
			owners[id]++
			report.Owners++
			report.Max = max(report.Max, id)
		case RoleReference:
			refs = append(refs, id)
			report.References++
		}
		return true
	})

	for id, count := range owners {
		if count > 1 {
			report.Duplicates = append(report.Duplicates, id)
		}
	}
	for _, id := range refs {
		if _, ok := owners[id]; !ok {
			report.Dangling = append(report.Dangling, id)
		}
	}
	slices.Sort(report.Duplicates)
	slices.Sort(report.Dangling)
	report.Dangling = slices.Compact(report.Dangling)
	return report
}
