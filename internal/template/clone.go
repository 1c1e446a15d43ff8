package template

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"alsdoctor/internal/alsfile"
	"alsdoctor/internal/idgraph"
	"alsdoctor/internal/liveset"
)

const nextPointeeTag = "NextPointeeId"

// TrackRef describes a track inserted by DuplicateTrack or ImportTrack.
type TrackRef struct {
	// Index is the new track's position inside the Tracks container.
	Index int    `json:"index"`
	Name  string `json:"name"`
	// First is the first identifier given to the clone; Next is the next free
	// one after it.
	First      idgraph.Identifier `json:"first_identifier"`
	Next       idgraph.Identifier `json:"next_identifier"`
	Renumbered int                `json:"owners_renumbered"`
	Report     idgraph.Report     `json:"report"`
}

// DuplicateTrack copies the track at index and inserts the copy right after
// it. An empty newName keeps the source name.
func DuplicateTrack(doc *alsfile.Document, index int, newName string) (TrackRef, error) {
	_, tracks, err := trackContainer(doc)
	if err != nil {
		return TrackRef{}, err
	}
	if index < 0 || index >= len(tracks.Children) {
		return TrackRef{}, indexError(index, len(tracks.Children))
	}
	return insertClone(doc, tracks.Children[index], index+1, newName)
}

// ImportTrack copies the track at index in src and appends it to the track
// list of dst. References from the copied track to identifiers outside it are
// kept and must resolve in dst.
func ImportTrack(dst, src *alsfile.Document, index int, newName string) (TrackRef, error) {
	_, srcTracks, err := trackContainer(src)
	if err != nil {
		return TrackRef{}, fmt.Errorf("source: %w", err)
	}
	if index < 0 || index >= len(srcTracks.Children) {
		return TrackRef{}, indexError(index, len(srcTracks.Children))
	}
	_, dstTracks, err := trackContainer(dst)
	if err != nil {
		return TrackRef{}, fmt.Errorf("destination: %w", err)
	}
	return insertClone(dst, srcTracks.Children[index], len(dstTracks.Children), newName)
}

func insertClone(doc *alsfile.Document, source *alsfile.RawNode, at int, newName string) (TrackRef, error) {
	liveSet, tracks, _ := trackContainer(doc)
	before := idgraph.Check(doc.Root)

	start := before.Max + 1
	counter := liveSet.Child(nextPointeeTag)
	if counter != nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(counter.AttrValue("Value")), 10, 64); err == nil {
			start = max(start, idgraph.Identifier(n))
		}
	}

	clone, next, mapping := idgraph.CloneWithMapping(source, start)
	if newName != "" {
		rename(clone, newName)
	}
	tracks.InsertChild(at, clone)

	after := idgraph.Check(doc.Root)
	if bad := compare(before, after); bad != nil {
		tracks.Children = slices.Delete(tracks.Children, at, at+1)
		return TrackRef{}, bad
	}

	if counter == nil {
		counter = alsfile.NewNode(nextPointeeTag)
		liveSet.InsertChild(0, counter)
	}
	counter.SetAttr("Value", strconv.FormatInt(int64(next), 10))

	name := newName
	if name == "" {
		name = currentName(clone)
	}
	return TrackRef{
		Index:      at,
		Name:       name,
		First:      start,
		Next:       next,
		Renumbered: len(mapping),
		Report:     after,
	}, nil
}

// compare returns an IntegrityError listing problems present after the clone
// that were not present before it.
func compare(before, after idgraph.Report) error {
	var e IntegrityError
	for _, id := range after.Dangling {
		if !slices.Contains(before.Dangling, id) {
			e.Dangling = append(e.Dangling, id)
		}
	}
	for _, id := range after.Duplicates {
		if !slices.Contains(before.Duplicates, id) {
			e.Duplicates = append(e.Duplicates, id)
		}
	}
	if len(e.Dangling) == 0 && len(e.Duplicates) == 0 {
		return nil
	}
	return &e
}

func trackContainer(doc *alsfile.Document) (liveSet, tracks *alsfile.RawNode, err error) {
	if doc == nil || doc.Root == nil {
		return nil, nil, &liveset.ModelError{Err: liveset.ErrNoTracks, Detail: "empty document"}
	}
	liveSet = doc.Root
	if liveSet.Tag != "LiveSet" {
		liveSet = doc.Root.Child("LiveSet")
	}
	if liveSet == nil {
		return nil, nil, &liveset.ModelError{Err: liveset.ErrNoTracks, Detail: "no LiveSet element"}
	}
	tracks = liveSet.Child("Tracks")
	if tracks == nil {
		return nil, nil, &liveset.ModelError{Err: liveset.ErrNoTracks, Detail: "LiveSet has no Tracks element"}
	}
	return liveSet, tracks, nil
}

func rename(track *alsfile.RawNode, name string) {
	names := track.Child("Name")
	if names == nil {
		names = alsfile.NewNode("Name")
		track.InsertChild(0, names)
	}
	for _, tag := range []string{"EffectiveName", "UserName"} {
		n := names.Child(tag)
		if n == nil {
			n = alsfile.NewNode(tag)
			names.Append(n)
		}
		n.SetAttr("Value", name)
	}
}

func currentName(track *alsfile.RawNode) string {
	for _, path := range [][]string{{"Name", "UserName"}, {"Name", "EffectiveName"}} {
		if v, ok := track.ValueAt(path...); ok && v != "" {
			return v
		}
	}
	return track.Tag
}
