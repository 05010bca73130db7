// Package track evaluates a track's requirement buckets against a
// student's completed courses. Evaluation is a single ordered pass over an
// immutable remaining pool, which is what guarantees determinism and
// no-double-counting: a course consumed by one group is never visible to a
// later group.
package track

import (
	"sort"

	"github.com/campusflow/compass-backend/internal/model"
)

// GroupResult is the outcome for one requirement bucket.
type GroupResult struct {
	Key       string   `json:"key"`
	Need      int      `json:"need"`
	Consumed  []string `json:"consumed"`
	Remaining int      `json:"remaining"`
}

// Satisfied reports whether the bucket is fully met.
func (r GroupResult) Satisfied() bool {
	return r.Remaining == 0
}

// Result is the full evaluation of one track for one student.
type Result struct {
	TrackID  string        `json:"track_id"`
	Groups   []GroupResult `json:"groups"`
	Consumed map[string]string
}

// Complete reports whether every bucket is met.
func (r Result) Complete() bool {
	for _, g := range r.Groups {
		if !g.Satisfied() {
			return false
		}
	}
	return true
}

// Evaluate folds the track's groups, in their fixed declared order, over
// the student's completed-course set. For each group: intersect the
// remaining pool with the group list, take up to Need courses ascending by
// id, then remove the consumed courses from the pool. Identical input
// always yields identical per-group results.
func Evaluate(t model.Track, completed map[string]bool) Result {
	pool := make(map[string]bool, len(completed))
	for id, ok := range completed {
		if ok {
			pool[id] = true
		}
	}

	res := Result{
		TrackID:  t.ID,
		Groups:   make([]GroupResult, 0, len(t.Groups)),
		Consumed: make(map[string]string),
	}

	for _, grp := range t.Groups {
		candidates := make([]string, 0, len(grp.Courses))
		for _, id := range grp.Courses {
			if pool[id] {
				candidates = append(candidates, id)
			}
		}
		sort.Strings(candidates)

		take := grp.Need
		if take > len(candidates) {
			take = len(candidates)
		}
		consumed := candidates[:take]

		for _, id := range consumed {
			delete(pool, id)
			res.Consumed[id] = grp.Key
		}

		res.Groups = append(res.Groups, GroupResult{
			Key:       grp.Key,
			Need:      grp.Need,
			Consumed:  consumed,
			Remaining: grp.Need - take,
		})
	}
	return res
}

// Unmet returns, per unsatisfied group, the course ids that could still
// fill it: group courses neither consumed by this evaluation nor already
// used by an earlier group. Order follows the group's declared list.
func (r Result) Unmet(t model.Track) map[string][]string {
	out := make(map[string][]string)
	for i, grp := range t.Groups {
		if r.Groups[i].Satisfied() {
			continue
		}
		var open []string
		for _, id := range grp.Courses {
			if _, used := r.Consumed[id]; !used {
				open = append(open, id)
			}
		}
		out[grp.Key] = open
	}
	return out
}
