package services

import (
	"sort"

	"github.com/zhiyuanbang/gaokao-backend/internal/clients/catalog"
	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
)

// buildGroupViews reconstructs the two-level volunteer view from flat ledger
// rows. Rows bucket by groupRank, then by group code inside each bucket; a
// nil group code forms its own single-item sub-bucket (legacy standalone
// entries). Enrichment maps are best-effort: absent keys project as nulls.
func buildGroupViews(rows []*types.Choice, scores map[string]float64, infos map[string]*catalog.GroupInfo) []*types.GroupView {
	byRank := make(map[int][]*types.Choice)
	for _, row := range rows {
		byRank[row.GroupRank] = append(byRank[row.GroupRank], row)
	}

	ranks := make([]int, 0, len(byRank))
	for rank := range byRank {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)

	views := make([]*types.GroupView, 0, len(ranks))
	for _, rank := range ranks {
		bucket := byRank[rank]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].ItemRank < bucket[j].ItemRank })

		view := &types.GroupView{GroupRank: rank}
		coded := make(map[string]*types.TargetGroup)
		for _, row := range bucket {
			var tg *types.TargetGroup
			if row.GroupCode != nil {
				tg = coded[*row.GroupCode]
			}
			if tg == nil {
				tg = &types.TargetGroup{GroupCode: row.GroupCode}
				if row.GroupCode != nil {
					if info := infos[*row.GroupCode]; info != nil {
						tg.SchoolCode = info.SchoolCode
						tg.SchoolName = info.SchoolName
						tg.City = info.City
						tg.GroupName = info.GroupName
					}
					coded[*row.GroupCode] = tg
				}
				view.Groups = append(view.Groups, tg)
			}

			item := &types.ChoiceItem{Choice: row}
			if s, ok := scores[row.MajorName]; ok {
				v := s
				item.Score = &v
			}
			tg.Items = append(tg.Items, item)
		}
		views = append(views, view)
	}
	return views
}

// uniqueMajors lists each applied major once, so a projection with N copies
// of one major still costs a single score lookup.
func uniqueMajors(rows []*types.Choice) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.MajorName]; ok {
			continue
		}
		seen[row.MajorName] = struct{}{}
		out = append(out, row.MajorName)
	}
	return out
}

func uniqueGroupCodes(rows []*types.Choice) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.GroupCode == nil {
			continue
		}
		if _, ok := seen[*row.GroupCode]; ok {
			continue
		}
		seen[*row.GroupCode] = struct{}{}
		out = append(out, *row.GroupCode)
	}
	return out
}

func distinctGroupRanks(rows []*types.Choice) int {
	seen := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		seen[row.GroupRank] = struct{}{}
	}
	return len(seen)
}
