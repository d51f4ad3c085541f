package student

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the student's current exam profile. Volunteer partitioning is
// derived from it on every call; editing the profile never rewrites choices
// that were created under an older profile.
type Profile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Region    string `gorm:"size:32;not null" json:"region"`
	Track     string `gorm:"size:32;not null" json:"track"`       // 首选科目: physics / history
	Subjects  string `gorm:"size:64" json:"subjects"`             // comma-joined 再选科目, e.g. "化学,生物"
	CycleYear int    `gorm:"column:cycle_year" json:"cycle_year"` // 0 = use configured current year

	ExamScore  int    `gorm:"column:exam_score" json:"exam_score"`
	ExamRank   int    `gorm:"column:exam_rank" json:"exam_rank"`
	GroupLabel string `gorm:"size:64;column:group_label" json:"group_label"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string { return "student_profile" }
