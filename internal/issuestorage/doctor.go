package issuestorage

import (
	"fmt"
	"sort"
)

// Doctor checks state for broken epic/story references and, if fix is true,
// repairs them in place. It returns a sorted description of every problem
// found (before fixing).
//
// Problems detected:
//   - an epic lists a story ID that is not in Stories
//   - a story ID is listed twice, or under more than one epic
//   - a story is not listed under any epic
//   - an epic or story key is greater than LastItemID
//
// Fixing drops dangling and duplicate references (the first listing wins),
// deletes orphaned stories, and raises LastItemID to the highest key.
func Doctor(state *State, fix bool) []string {
	var problems []string

	// Taken before any fix so deleted orphans still count toward the counter.
	var maxID uint32
	for id := range state.Epics {
		maxID = max(maxID, id)
	}
	for id := range state.Stories {
		maxID = max(maxID, id)
	}

	owner := make(map[uint32]uint32) // story ID -> first epic listing it
	for _, epicID := range SortedIDs(state.Epics) {
		epic := state.Epics[epicID]
		kept := make([]uint32, 0, len(epic.Stories))
		for _, storyID := range epic.Stories {
			if _, ok := state.Stories[storyID]; !ok {
				problems = append(problems, fmt.Sprintf("dangling story reference: epic %d lists missing story %d", epicID, storyID))
				continue
			}
			if prev, ok := owner[storyID]; ok {
				if prev == epicID {
					problems = append(problems, fmt.Sprintf("duplicate story reference: epic %d lists story %d more than once", epicID, storyID))
				} else {
					problems = append(problems, fmt.Sprintf("shared story: story %d is listed under epics %d and %d", storyID, prev, epicID))
				}
				continue
			}
			owner[storyID] = epicID
			kept = append(kept, storyID)
		}
		if fix {
			epic.Stories = kept
		}
	}

	for _, storyID := range SortedIDs(state.Stories) {
		if _, ok := owner[storyID]; !ok {
			problems = append(problems, fmt.Sprintf("orphaned story: story %d is not listed under any epic", storyID))
			if fix {
				delete(state.Stories, storyID)
			}
		}
	}

	if maxID > state.LastItemID {
		problems = append(problems, fmt.Sprintf("counter behind: last_item_id is %d but ID %d is in use", state.LastItemID, maxID))
		if fix {
			state.LastItemID = maxID
		}
	}

	sort.Strings(problems)
	return problems
}

// SortedIDs returns the keys of m in ascending order.
func SortedIDs[V any](m map[uint32]V) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
