package db

import (
	"gorm.io/gorm"

	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Profile{},
		&types.Choice{},
	); err != nil {
		return err
	}
	return migrateConstraints(db)
}

// migrateConstraints adds the slot uniqueness constraint GORM tags cannot
// express: it must be DEFERRABLE so single-statement rank swaps are checked
// at commit instead of per row.
func migrateConstraints(db *gorm.DB) error {
	return db.Exec(`
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'uq_choice_slot') THEN
		ALTER TABLE volunteer_choice
			ADD CONSTRAINT uq_choice_slot
			UNIQUE (user_id, region, track, subject_combo, cycle_year, group_rank, item_rank)
			DEFERRABLE INITIALLY IMMEDIATE;
	END IF;
END
$$;`).Error
}
