package domain

type JobCardStatus string

const (
	JobCardOpen       JobCardStatus = "open"
	JobCardInProgress JobCardStatus = "in_progress"
	JobCardCompleted  JobCardStatus = "completed"
	JobCardRejected   JobCardStatus = "rejected"
)

var jobCardTransitions = map[JobCardStatus][]JobCardStatus{
	JobCardOpen:       {JobCardInProgress, JobCardCompleted, JobCardRejected},
	JobCardInProgress: {JobCardCompleted, JobCardRejected},
}

func (s JobCardStatus) Valid() bool {
	switch s {
	case JobCardOpen, JobCardInProgress, JobCardCompleted, JobCardRejected:
		return true
	}
	return false
}

// Terminal reports whether the card can no longer change.
func (s JobCardStatus) Terminal() bool {
	return s == JobCardCompleted || s == JobCardRejected
}

// CanTransition reports whether the status may move to next. Terminal states
// allow no further transitions.
func (s JobCardStatus) CanTransition(next JobCardStatus) bool {
	for _, allowed := range jobCardTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
