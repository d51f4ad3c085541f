package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/zhiyuanbang/gaokao-backend/internal/clients/catalog"
	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
)

func choiceRow(group *string, groupRank, itemRank int, major string) *types.Choice {
	return &types.Choice{
		ID:        uuid.New(),
		GroupRank: groupRank,
		ItemRank:  itemRank,
		GroupCode: group,
		MajorName: major,
	}
}

func strPtr(v string) *string { return &v }

func TestBuildGroupViewsOrdering(t *testing.T) {
	g1 := strPtr("G-1001")
	g2 := strPtr("G-2002")
	rows := []*types.Choice{
		choiceRow(g2, 2, 1, "法学"),
		choiceRow(g1, 1, 2, "软件工程"),
		choiceRow(g1, 1, 1, "计算机科学与技术"),
	}

	views := buildGroupViews(rows, nil, nil)
	if len(views) != 2 {
		t.Fatalf("expected 2 group views, got %d", len(views))
	}
	if views[0].GroupRank != 1 || views[1].GroupRank != 2 {
		t.Fatalf("group views out of order: %d, %d", views[0].GroupRank, views[1].GroupRank)
	}

	first := views[0].Groups
	if len(first) != 1 {
		t.Fatalf("expected one sub-bucket at rank 1, got %d", len(first))
	}
	items := first[0].Items
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Choice.MajorName != "计算机科学与技术" || items[1].Choice.MajorName != "软件工程" {
		t.Fatalf("items out of item-rank order: %s, %s", items[0].Choice.MajorName, items[1].Choice.MajorName)
	}
}

func TestBuildGroupViewsNullGroupCode(t *testing.T) {
	rows := []*types.Choice{
		choiceRow(nil, 1, 1, "临床医学"),
	}
	views := buildGroupViews(rows, nil, nil)
	if len(views) != 1 || len(views[0].Groups) != 1 {
		t.Fatalf("standalone choice should form its own sub-bucket")
	}
	tg := views[0].Groups[0]
	if tg.GroupCode != nil {
		t.Fatalf("expected nil group code, got %v", *tg.GroupCode)
	}
	if len(tg.Items) != 1 {
		t.Fatalf("expected single item, got %d", len(tg.Items))
	}
}

func TestBuildGroupViewsEnrichment(t *testing.T) {
	g1 := strPtr("G-1001")
	rows := []*types.Choice{
		choiceRow(g1, 1, 1, "计算机科学与技术"),
		choiceRow(g1, 1, 2, "数学与应用数学"),
	}
	scores := map[string]float64{"计算机科学与技术": 91.5}
	infos := map[string]*catalog.GroupInfo{
		"G-1001": {GroupCode: "G-1001", GroupName: "第01组", SchoolCode: "10001", SchoolName: "北京大学", City: "北京"},
	}

	views := buildGroupViews(rows, scores, infos)
	tg := views[0].Groups[0]
	if tg.SchoolName != "北京大学" || tg.GroupName != "第01组" {
		t.Fatalf("catalog metadata not attached: %+v", tg)
	}
	if tg.Items[0].Score == nil || *tg.Items[0].Score != 91.5 {
		t.Fatalf("expected score 91.5 on first item, got %v", tg.Items[0].Score)
	}
	if tg.Items[1].Score != nil {
		t.Fatalf("expected nil score for major without enrichment")
	}
}

func TestUniqueMajors(t *testing.T) {
	g1 := strPtr("G-1001")
	g2 := strPtr("G-2002")
	rows := []*types.Choice{
		choiceRow(g1, 1, 1, "法学"),
		choiceRow(g2, 2, 1, "法学"),
		choiceRow(g2, 2, 2, "会计学"),
	}
	majors := uniqueMajors(rows)
	if len(majors) != 2 {
		t.Fatalf("expected 2 unique majors, got %v", majors)
	}
	if majors[0] != "法学" || majors[1] != "会计学" {
		t.Fatalf("unexpected majors order: %v", majors)
	}
}

func TestDistinctGroupRanks(t *testing.T) {
	g1 := strPtr("G-1001")
	rows := []*types.Choice{
		choiceRow(g1, 1, 1, "a"),
		choiceRow(g1, 1, 2, "b"),
		choiceRow(nil, 3, 1, "c"),
	}
	if got := distinctGroupRanks(rows); got != 2 {
		t.Fatalf("distinctGroupRanks = %d, want 2", got)
	}
	if got := distinctGroupRanks(nil); got != 0 {
		t.Fatalf("distinctGroupRanks(nil) = %d, want 0", got)
	}
}
