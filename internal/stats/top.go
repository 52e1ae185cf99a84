package stats

import (
	"sort"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

// TagCount is a tag and the number of tasks carrying it.
type TagCount struct {
	Tag   string
	Count int
}

// TopTags returns the n most used tags, counting each task once per tag.
func TopTags(tasks []model.Task, n int) []TagCount {
	if n <= 0 || len(tasks) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, t := range tasks {
		seen := map[string]bool{}
		for _, tag := range t.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			counts[tag]++
		}
	}
	items := make([]TagCount, 0, len(counts))
	for tag, c := range counts {
		items = append(items, TagCount{Tag: tag, Count: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Tag < items[j].Tag
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
