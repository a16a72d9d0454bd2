package docparser

import "strings"

// tagTable maps a lower-cased component directory name to the extra tags
// inferred for it (spec §4.1 step 5). Keys not present here fall back to
// defaultTags.
var tagTable = map[string][]string{
	"button": {"form", "action", "ui", "interactive"},

	"input":    {"form", "data-entry", "ui"},
	"select":   {"form", "data-entry", "ui"},
	"checkbox": {"form", "data-entry", "ui"},
	"radio":    {"form", "data-entry", "ui"},
	"switch":   {"form", "data-entry", "ui"},
	"slider":   {"form", "data-entry", "ui"},
	"upload":   {"form", "data-entry", "ui"},

	"form": {"data-entry", "validation", "ui"},

	"table": {"data-display", "list", "ui"},

	"modal":   {"feedback", "overlay", "ui"},
	"tooltip": {"feedback", "overlay", "ui"},
	"popover": {"data-display", "overlay", "ui"},

	"alert":    {"feedback", "message", "ui"},
	"progress": {"feedback", "loading", "ui"},
	"spin":     {"feedback", "loading", "ui"},

	"card":   {"data-display", "ui"},
	"avatar": {"data-display", "ui"},
	"badge":  {"data-display", "ui"},
	"tag":    {"data-display", "ui"},

	"menu":       {"navigation", "ui"},
	"breadcrumb": {"navigation", "ui"},
	"tabs":       {"navigation", "ui"},
	"dropdown":   {"navigation", "ui"},

	"pagination": {"navigation", "data-display", "ui"},
}

// universalTags are appended to every component regardless of its inferred tags.
var universalTags = []string{"react", "component"}

// defaultTags is used when a directory name has no entry in tagTable.
var defaultTags = []string{"ui", "react", "component"}

// tagsFor returns the deduplicated tag set for a component directory name.
func tagsFor(componentDirName string) []string {
	key := strings.ToLower(componentDirName)
	extra, ok := tagTable[key]
	if !ok {
		return dedupe(defaultTags)
	}
	return dedupe(append(append([]string{}, extra...), universalTags...))
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
