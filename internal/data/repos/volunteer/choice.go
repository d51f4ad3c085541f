package volunteer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

// RankUpdate is one row of a bulk rank rewrite.
type RankUpdate struct {
	ID        uuid.UUID
	GroupRank int
	ItemRank  int
}

// ChoiceRepo is the ledger store for volunteer choices. All mutations are
// physical; rank invariants are backed by the uq_choice_slot constraint, so
// allocator races surface as unique violations instead of corrupt ranks.
type ChoiceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Choice) error

	GetByOwnerAndID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*types.Choice, error)
	GetBySlot(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupRank, itemRank int) (*types.Choice, error)

	ListByPartition(ctx context.Context, tx *gorm.DB, key types.PartitionKey) ([]*types.Choice, error)
	ListGroup(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupRank int) ([]*types.Choice, error)
	ListAllOrdered(ctx context.Context, tx *gorm.DB) ([]*types.Choice, error)

	FindDuplicate(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupCode *string, majorName, batch, remark string) (*types.Choice, error)
	GroupRankForCode(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupCode string) (int, bool, error)
	MaxGroupRank(ctx context.Context, tx *gorm.DB, key types.PartitionKey) (int, error)
	MaxItemRank(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupRank int) (int, error)
	CountGroup(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupRank int) (int64, error)

	BulkUpdateRanks(ctx context.Context, tx *gorm.DB, updates []RankUpdate) (int64, error)
	DeleteByOwnerAndIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	LockPartition(ctx context.Context, tx *gorm.DB, key types.PartitionKey) error
	LockAll(ctx context.Context, tx *gorm.DB) error
}

type choiceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChoiceRepo(db *gorm.DB, baseLog *logger.Logger) ChoiceRepo {
	return &choiceRepo{db: db, log: baseLog.With("repo", "ChoiceRepo")}
}

func (r *choiceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func partitionScope(t *gorm.DB, key types.PartitionKey) *gorm.DB {
	return t.Where(
		"user_id = ? AND region = ? AND track = ? AND subject_combo = ? AND cycle_year = ?",
		key.UserID, key.Region, key.Track, key.Combo(), key.CycleYear,
	)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505), the signature of a lost allocation race.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *choiceRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Choice) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *choiceRepo) GetByOwnerAndID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*types.Choice, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Choice
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *choiceRepo) GetBySlot(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupRank, itemRank int) (*types.Choice, error) {
	var out []*types.Choice
	if err := partitionScope(r.conn(tx).WithContext(ctx), key).
		Where("group_rank = ? AND item_rank = ?", groupRank, itemRank).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *choiceRepo) ListByPartition(ctx context.Context, tx *gorm.DB, key types.PartitionKey) ([]*types.Choice, error) {
	var out []*types.Choice
	if err := partitionScope(r.conn(tx).WithContext(ctx), key).
		Order("group_rank ASC, item_rank ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *choiceRepo) ListGroup(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupRank int) ([]*types.Choice, error) {
	var out []*types.Choice
	if err := partitionScope(r.conn(tx).WithContext(ctx), key).
		Where("group_rank = ?", groupRank).
		Order("item_rank ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListAllOrdered feeds the repair job. Ordering must be stable so repeated
// repairs assign identical ranks. Creation time comes before subject_combo:
// partitions are re-bucketed on the normalized combo, so rows stored with
// different combo spellings still renumber in creation order.
func (r *choiceRepo) ListAllOrdered(ctx context.Context, tx *gorm.DB) ([]*types.Choice, error) {
	var out []*types.Choice
	if err := r.conn(tx).WithContext(ctx).
		Order("user_id ASC, region ASC, track ASC, cycle_year ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *choiceRepo) FindDuplicate(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupCode *string, majorName, batch, remark string) (*types.Choice, error) {
	var out []*types.Choice
	if err := partitionScope(r.conn(tx).WithContext(ctx), key).
		Where("group_code IS NOT DISTINCT FROM ? AND major_name = ? AND batch = ? AND remark = ?",
			groupCode, majorName, batch, remark).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *choiceRepo) GroupRankForCode(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupCode string) (int, bool, error) {
	var ranks []int
	if err := partitionScope(r.conn(tx).WithContext(ctx).Model(&types.Choice{}), key).
		Where("group_code = ?", groupCode).
		Limit(1).
		Pluck("group_rank", &ranks).Error; err != nil {
		return 0, false, err
	}
	if len(ranks) == 0 {
		return 0, false, nil
	}
	return ranks[0], true, nil
}

func (r *choiceRepo) MaxGroupRank(ctx context.Context, tx *gorm.DB, key types.PartitionKey) (int, error) {
	var max int
	if err := partitionScope(r.conn(tx).WithContext(ctx).Model(&types.Choice{}), key).
		Select("COALESCE(MAX(group_rank), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *choiceRepo) MaxItemRank(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupRank int) (int, error) {
	var max int
	if err := partitionScope(r.conn(tx).WithContext(ctx).Model(&types.Choice{}), key).
		Where("group_rank = ?", groupRank).
		Select("COALESCE(MAX(item_rank), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *choiceRepo) CountGroup(ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupRank int) (int64, error) {
	var n int64
	if err := partitionScope(r.conn(tx).WithContext(ctx).Model(&types.Choice{}), key).
		Where("group_rank = ?", groupRank).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// BulkUpdateRanks rewrites rank fields for an arbitrary row set in one
// statement, deferring the slot constraint so swaps are checked at commit
// rather than per row. Must be called inside a transaction.
func (r *choiceRepo) BulkUpdateRanks(ctx context.Context, tx *gorm.DB, updates []RankUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	if err := r.conn(tx).WithContext(ctx).Exec(`SET CONSTRAINTS uq_choice_slot DEFERRED`).Error; err != nil {
		return 0, err
	}
	var sb strings.Builder
	args := make([]interface{}, 0, len(updates)*3)
	for i, u := range updates {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?::uuid, ?::int, ?::int)")
		args = append(args, u.ID, u.GroupRank, u.ItemRank)
	}
	sql := `UPDATE volunteer_choice AS c
		SET group_rank = d.group_rank, item_rank = d.item_rank, updated_at = now()
		FROM (VALUES ` + sb.String() + `) AS d(id, group_rank, item_rank)
		WHERE c.id = d.id
		  AND (c.group_rank <> d.group_rank OR c.item_rank <> d.item_rank)`
	res := r.conn(tx).WithContext(ctx).Exec(sql, args...)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *choiceRepo) DeleteByOwnerAndIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if userID == uuid.Nil || len(ids) == 0 {
		return 0, nil
	}
	res := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&types.Choice{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// LockPartition takes a transaction-scoped advisory lock on the partition so
// that max(rank)+1 allocation is race-free. Released at commit or rollback.
func (r *choiceRepo) LockPartition(ctx context.Context, tx *gorm.DB, key types.PartitionKey) error {
	return r.conn(tx).WithContext(ctx).
		Exec(`SELECT pg_advisory_xact_lock(hashtextextended(?, 0))`, key.LockToken()).Error
}

// LockAll blocks all concurrent choice mutations for the duration of the
// surrounding transaction. Used only by the repair job.
func (r *choiceRepo) LockAll(ctx context.Context, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).
		Exec(`LOCK TABLE volunteer_choice IN EXCLUSIVE MODE`).Error
}
