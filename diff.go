package inplace

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// AnchorInfo describes one translatable anchor of a document.
type AnchorInfo struct {
	Index int    // Position among the document's anchors
	Tag   string // Element name
	Path  string // Structural path, e.g. "body>div#main>p:2"
	Text  string // Trimmed text content
	Hash  string // HashText of Text
}

// Describe lists the anchors Anchors(selector) would return.
func (d *Document) Describe(selector string) []AnchorInfo {
	anchors := d.Anchors(selector)
	infos := make([]AnchorInfo, len(anchors))
	for i, n := range anchors {
		text := strings.TrimSpace(goquery.NewDocumentFromNode(n).Text())
		infos[i] = AnchorInfo{
			Index: i,
			Tag:   n.Data,
			Path:  nodePath(n),
			Text:  text,
			Hash:  HashText(text),
		}
	}
	return infos
}

func nodePath(n *html.Node) string {
	var parts []string
	for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if p.Data == "html" {
			break
		}
		part := p.Data
		if id, _ := getAttr(p, "id"); id != "" {
			part += "#" + id
		} else if nth := sameTagIndex(p); nth > 1 {
			part += ":" + strconv.Itoa(nth)
		}
		parts = append(parts, part)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ">")
}

func sameTagIndex(n *html.Node) int {
	idx := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.Data == n.Data {
			idx++
		}
	}
	return idx
}

// DiffResult represents the difference between the anchors of two versions
// of a page.
type DiffResult struct {
	// Added contains anchors whose text is new.
	Added []AnchorInfo

	// Removed contains anchors whose text no longer appears.
	Removed []AnchorInfo

	// Unchanged contains anchors present in both versions.
	Unchanged []AnchorInfo

	// Modified pairs a removed and an added anchor at the same path.
	Modified []ModifiedAnchor
}

// ModifiedAnchor represents an anchor whose text changed in place.
type ModifiedAnchor struct {
	Old AnchorInfo
	New AnchorInfo
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
	Modified  int `json:"modified"`
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the anchors of the new version that have no
// translation yet: added and modified ones, in document order.
func (d *DiffResult) NeedsTranslation() []AnchorInfo {
	result := make([]AnchorInfo, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result
}

// DiffAnchors compares two anchor lists by text hash, then pairs leftover
// removed and added anchors that share a path as modified. Results keep
// document order.
func DiffAnchors(oldAnchors, newAnchors []AnchorInfo) *DiffResult {
	result := &DiffResult{}

	oldHashes := make(map[string]bool, len(oldAnchors))
	newHashes := make(map[string]bool, len(newAnchors))
	for _, a := range oldAnchors {
		oldHashes[a.Hash] = true
	}
	for _, a := range newAnchors {
		newHashes[a.Hash] = true
	}

	var removed, added []AnchorInfo
	for _, a := range oldAnchors {
		if newHashes[a.Hash] {
			result.Unchanged = append(result.Unchanged, a)
		} else {
			removed = append(removed, a)
		}
	}
	for _, a := range newAnchors {
		if !oldHashes[a.Hash] {
			added = append(added, a)
		}
	}

	addedByPath := make(map[string]int, len(added))
	for i, a := range added {
		if _, dup := addedByPath[a.Path]; !dup {
			addedByPath[a.Path] = i
		}
	}

	matched := make(map[int]bool)
	for _, r := range removed {
		if i, ok := addedByPath[r.Path]; ok && !matched[i] {
			matched[i] = true
			result.Modified = append(result.Modified, ModifiedAnchor{Old: r, New: added[i]})
			continue
		}
		result.Removed = append(result.Removed, r)
	}
	for i, a := range added {
		if !matched[i] {
			result.Added = append(result.Added, a)
		}
	}

	return result
}
