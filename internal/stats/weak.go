package stats

import (
	"sort"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

// OverdueTasks selects the open tasks that are most overdue, oldest due first.
func OverdueTasks(tasks []model.Task, now time.Time, top int) []model.Task {
	var candidates []model.Task
	for _, t := range tasks {
		if t.Overdue(now) {
			candidates = append(candidates, t)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Due.Before(*candidates[j].Due)
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}
