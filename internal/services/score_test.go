package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

type fakeScoreClient struct {
	scores map[string]float64
	err    error
	calls  int
}

func (f *fakeScoreClient) ScoreForMajors(ctx context.Context, userID uuid.UUID, majorNames []string) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64, len(majorNames))
	for _, m := range majorNames {
		if v, ok := f.scores[m]; ok {
			out[m] = v
		}
	}
	return out, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestScoresForMapsResults(t *testing.T) {
	client := &fakeScoreClient{scores: map[string]float64{"法学": 88, "会计学": 76.5}}
	svc := NewScoreService(testLogger(t), client, nil)

	got := svc.ScoresFor(context.Background(), uuid.New(), []string{"法学", "会计学", "哲学"})
	if len(got) != 2 {
		t.Fatalf("expected 2 scores, got %v", got)
	}
	if got["法学"] != 88 || got["会计学"] != 76.5 {
		t.Fatalf("unexpected scores: %v", got)
	}
}

func TestScoresForDegradesOnFailure(t *testing.T) {
	client := &fakeScoreClient{err: errors.New("engine down")}
	svc := NewScoreService(testLogger(t), client, nil)

	got := svc.ScoresFor(context.Background(), uuid.New(), []string{"法学"})
	if len(got) != 0 {
		t.Fatalf("expected empty map on engine failure, got %v", got)
	}
}

func TestScoresForNilClient(t *testing.T) {
	svc := NewScoreService(testLogger(t), nil, nil)
	got := svc.ScoresFor(context.Background(), uuid.New(), []string{"法学"})
	if len(got) != 0 {
		t.Fatalf("expected empty map with no client, got %v", got)
	}
}

func TestScoresForEmptyInput(t *testing.T) {
	client := &fakeScoreClient{scores: map[string]float64{"法学": 88}}
	svc := NewScoreService(testLogger(t), client, nil)
	got := svc.ScoresFor(context.Background(), uuid.New(), nil)
	if len(got) != 0 || client.calls != 0 {
		t.Fatalf("expected no engine call for empty input, calls=%d got=%v", client.calls, got)
	}
}
