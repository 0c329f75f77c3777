// Package leaderboard is a pure view-model: it derives a ranking from the
// subscribed student snapshot and never mutates remote state.
package leaderboard

import (
	"sort"

	"github.com/trezcool/darasa/core/student"
)

// Entry is one rendered leaderboard row.
type Entry struct {
	Rank      int    `json:"rank"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Completed int    `json:"completed"`
}

// Rank orders students descending by completed-topic count. The sort is
// stable: ties keep their relative order from the given snapshot. Equal
// counts share a rank value. The input slice is not modified.
func Rank(students []student.Student) []Entry {
	ordered := make([]student.Student, len(students))
	copy(ordered, students)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].CompletedTopics) > len(ordered[j].CompletedTopics)
	})

	out := make([]Entry, 0, len(ordered))
	rank := 0
	prev := -1
	for i, s := range ordered {
		count := len(s.CompletedTopics)
		if count != prev {
			rank = i + 1
			prev = count
		}
		out = append(out, Entry{
			Rank:      rank,
			StudentID: s.ID,
			Name:      s.Name,
			Completed: count,
		})
	}
	return out
}
