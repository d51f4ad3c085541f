package volunteer

// ChoiceItem is one projected major entry: the stored row decorated with the
// externally computed admission score. Score is nil when the score engine
// had no answer (or was unavailable).
type ChoiceItem struct {
	Choice *Choice  `json:"choice"`
	Score  *float64 `json:"score,omitempty"`
}

// TargetGroup is the sub-bucket of a GroupView: all items applied to one
// program group, plus catalog display metadata when available.
type TargetGroup struct {
	GroupCode  *string       `json:"group_code,omitempty"`
	SchoolCode string        `json:"school_code,omitempty"`
	SchoolName string        `json:"school_name,omitempty"`
	City       string        `json:"city,omitempty"`
	GroupName  string        `json:"group_name,omitempty"`
	Items      []*ChoiceItem `json:"items"`
}

// GroupView is one preference tier of the projected list.
type GroupView struct {
	GroupRank int            `json:"group_rank"`
	Groups    []*TargetGroup `json:"groups"`
}

// List is the full projection returned to the mini-app: ordered tiers plus
// the "selected / total" slot summary and a profile echo for the header.
type List struct {
	Groups    []*GroupView `json:"groups"`
	Selected  int          `json:"selected"`
	Total     int          `json:"total"`
	ExamScore int          `json:"exam_score"`
	ExamRank  int          `json:"exam_rank"`
}
