// Package template builds new tracks from existing ones.
//
// A track is copied as a raw subtree, renumbered through idgraph so that its
// owner identifiers start above everything already in the target document,
// and inserted into the target's track list. The document's NextPointeeId
// counter is advanced past the new identifiers. An insertion that would leave
// a reference pointing at nothing is rolled back.
package template
