package volunteer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Choice is one (school program group, major) entry in a student's volunteer
// list. Rows are partitioned by (user, region, track, subject combo, cycle
// year); GroupRank orders program groups inside a partition and ItemRank
// orders majors inside a group. The uq_choice_slot constraint (created in
// migrate.go as DEFERRABLE, since rank swaps need commit-time checking) is
// the storage-level guarantee that no two rows ever occupy the same slot.
type Choice struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID       uuid.UUID `gorm:"type:uuid;not null;index;index:idx_choice_partition,priority:1" json:"user_id"`
	Region       string    `gorm:"size:32;not null;index:idx_choice_partition,priority:2" json:"region"`
	Track        string    `gorm:"size:32;not null;index:idx_choice_partition,priority:3" json:"track"`
	SubjectCombo string    `gorm:"size:64;not null;column:subject_combo;index:idx_choice_partition,priority:4" json:"subject_combo"`
	CycleYear    int       `gorm:"not null;column:cycle_year;index:idx_choice_partition,priority:5" json:"cycle_year"`

	GroupRank int `gorm:"not null;column:group_rank" json:"group_rank"`
	ItemRank  int `gorm:"not null;column:item_rank" json:"item_rank"`

	// GroupCode is the external program-group reference (院校专业组). Nil for
	// legacy standalone entries, which form their own single-item group.
	GroupCode *string `gorm:"size:64;column:group_code;index" json:"group_code,omitempty"`

	MajorName string `gorm:"size:128;not null;column:major_name" json:"major_name"`
	Batch     string `gorm:"size:64" json:"batch"`
	Quota     string `gorm:"size:64" json:"quota"`
	Tuition   string `gorm:"size:64" json:"tuition"`
	Remark    string `gorm:"size:255" json:"remark"`

	// ScoreLines is the historical admission snapshot captured at creation,
	// write-once. JSON array of ScoreLine.
	ScoreLines datatypes.JSON `gorm:"type:jsonb;column:score_lines" json:"score_lines,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Choice) TableName() string { return "volunteer_choice" }

// ScoreLine is one year of historical admission data for the applied major,
// denormalized onto the choice at creation time.
type ScoreLine struct {
	Year     int    `json:"year"`
	MinScore *int   `json:"min_score,omitempty"`
	MinRank  *int   `json:"min_rank,omitempty"`
	Note     string `json:"note,omitempty"`
}

// PartitionKey scopes rank uniqueness and grouping. Two choices belong to
// the same partition iff all five fields match, with Subjects compared as a
// set.
type PartitionKey struct {
	UserID    uuid.UUID
	Region    string
	Track     string
	Subjects  SubjectSet
	CycleYear int
}

// Combo is the canonical stored form of the subject set.
func (k PartitionKey) Combo() string { return k.Subjects.Combo() }

// LockToken is the string hashed into the partition-scoped advisory lock.
func (k PartitionKey) LockToken() string {
	return fmt.Sprintf("volunteer:%s|%s|%s|%s|%d", k.UserID, k.Region, k.Track, k.Combo(), k.CycleYear)
}

// Matches reports whether a stored row belongs to this partition.
func (k PartitionKey) Matches(c *Choice) bool {
	return c != nil &&
		c.UserID == k.UserID &&
		c.Region == k.Region &&
		c.Track == k.Track &&
		c.SubjectCombo == k.Combo() &&
		c.CycleYear == k.CycleYear
}
