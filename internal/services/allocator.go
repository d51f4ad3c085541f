package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	volRepos "github.com/zhiyuanbang/gaokao-backend/internal/data/repos/volunteer"
	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
)

// MaxGroupItems caps how many majors fit into one program group.
const MaxGroupItems = 6

type allocation struct {
	GroupRank int
	ItemRank  int
}

// allocateSlot decides the (groupRank, itemRank) for a new choice. Must run
// inside a transaction holding the partition advisory lock: the max(rank)+1
// reads below are only race-free under that lock, with the slot unique index
// as the final backstop.
func allocateSlot(ctx context.Context, tx *gorm.DB, repo volRepos.ChoiceRepo, key types.PartitionKey, groupCode *string, majorName, batch, remark string) (allocation, error) {
	dup, err := repo.FindDuplicate(ctx, tx, key, groupCode, majorName, batch, remark)
	if err != nil {
		return allocation{}, err
	}
	if dup != nil {
		return allocation{}, fmt.Errorf("%w: %q already applied in this partition", ErrDuplicateChoice, majorName)
	}

	// A nil group code never joins an existing group: each standalone choice
	// forms its own single-item group.
	groupRank := 0
	if groupCode != nil {
		rank, found, err := repo.GroupRankForCode(ctx, tx, key, *groupCode)
		if err != nil {
			return allocation{}, err
		}
		if found {
			groupRank = rank
		}
	}
	if groupRank == 0 {
		maxGroup, err := repo.MaxGroupRank(ctx, tx, key)
		if err != nil {
			return allocation{}, err
		}
		groupRank = maxGroup + 1
	}

	maxItem, err := repo.MaxItemRank(ctx, tx, key, groupRank)
	if err != nil {
		return allocation{}, err
	}
	itemRank := maxItem + 1

	count, err := repo.CountGroup(ctx, tx, key, groupRank)
	if err != nil {
		return allocation{}, err
	}
	if count >= MaxGroupItems {
		return allocation{}, fmt.Errorf("%w: group %d already holds %d majors", ErrGroupCapacityExceeded, groupRank, count)
	}

	return allocation{GroupRank: groupRank, ItemRank: itemRank}, nil
}
