package course

// PassedLookup reports whether the user has a passed ledger entry for the test.
type PassedLookup func(testID int) bool

// Progress is the outcome of evaluating a user's sequential progress through a course.
type Progress struct {
	// Unlocked holds the IDs of the topics the user may open.
	Unlocked map[int]bool
	// Cleared is the number of leading topics that are cleared: no test, or test passed.
	Cleared int
}

func (p Progress) IsUnlocked(topicID int) bool {
	return p.Unlocked[topicID]
}

// Evaluate walks topics (sorted, see SortTopics) in order.
// The first topic is always unlocked; every next topic is unlocked only if the
// previous one is cleared. Evaluation stops at the first topic that is not cleared,
// so every topic after it stays locked whatever its own result.
func Evaluate(topics []Topic, passed PassedLookup) Progress {
	p := Progress{Unlocked: make(map[int]bool, len(topics))}
	for _, t := range topics {
		p.Unlocked[t.ID] = true
		if t.HasTest() && !passed(*t.TestID) {
			break
		}
		p.Cleared++
	}
	return p
}

// testIDs returns the IDs of the tests owned by topics.
func testIDs(topics []Topic) []int {
	ids := make([]int, 0, len(topics))
	for _, t := range topics {
		if t.HasTest() {
			ids = append(ids, *t.TestID)
		}
	}
	return ids
}
