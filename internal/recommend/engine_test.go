// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend"
	"github.com/tomtom215/eventrec/internal/recommend/algorithms"
)

var asOf = time.Date(2018, 10, 7, 0, 0, 0, 0, time.UTC)

type memorySource struct {
	selected []recommend.Interaction
	events   []recommend.Event
	err      error
}

func (m *memorySource) SelectedEvents(context.Context) ([]recommend.Interaction, error) {
	return m.selected, m.err
}

func (m *memorySource) Events(context.Context) ([]recommend.Event, error) {
	return m.events, m.err
}

type memorySink struct {
	calls []recommend.Recommendations
	err   error
}

func (s *memorySink) PersistRecommendations(_ context.Context, recs recommend.Recommendations, _ string, _ time.Time) (recommend.PersistResult, error) {
	if s.err != nil {
		return recommend.PersistResult{}, s.err
	}
	s.calls = append(s.calls, recs)
	return recommend.PersistResult{
		UsersConsidered: len(recs),
		UsersWithRecs:   recs.UsersWithRecommendations(),
		TotalRecs:       recs.Total(),
	}, nil
}

func calendarAdd(user string, event int64, daysBefore int) recommend.Interaction {
	return recommend.Interaction{
		UserID:        user,
		EventID:       event,
		SelectionType: recommend.SelectionCalendar,
		DateSelected:  asOf.AddDate(0, 0, -daysBefore),
	}
}

// community builds a store in which users share taste in pairs, so the
// factorization has structure to find.
func community() *memorySource {
	src := &memorySource{}
	groups := map[string][]int64{
		"alice": {1, 2, 3},
		"bob":   {1, 2, 4},
		"carol": {5, 6, 7},
		"dave":  {5, 6, 8},
		"erin":  {1, 3, 4},
	}
	for user, events := range groups {
		for i, ev := range events {
			src.selected = append(src.selected, calendarAdd(user, ev, i+1))
		}
	}
	for id := int64(1); id <= 8; id++ {
		start := asOf.AddDate(0, 0, -5)
		if id%2 == 0 || id >= 5 {
			start = asOf.AddDate(0, 0, 10)
		}
		src.events = append(src.events, recommend.Event{ID: id, StartTime: start})
	}
	return src
}

func newEngine(t *testing.T, src recommend.InteractionSource, cfg *recommend.Config) *recommend.Engine {
	t.Helper()
	engine, err := recommend.NewEngine(cfg, recommend.NewRepository(src), algorithms.NewSVD(zerolog.Nop()), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestNewEngine_Validation(t *testing.T) {
	repo := recommend.NewRepository(&memorySource{})
	svd := algorithms.NewSVD(zerolog.Nop())

	if _, err := recommend.NewEngine(&recommend.Config{MinUserActions: 1, VectorSize: 1, Threshold: 2, MaxRecentActionDays: 1}, repo, svd, zerolog.Nop()); err == nil {
		t.Error("expected error for threshold above 1")
	}
	if _, err := recommend.NewEngine(nil, nil, svd, zerolog.Nop()); err == nil {
		t.Error("expected error for missing repository")
	}
	if _, err := recommend.NewEngine(nil, repo, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for missing factorizer")
	}
}

func TestEngine_Generate(t *testing.T) {
	src := community()
	cfg := &recommend.Config{MinUserActions: 3, VectorSize: 2, Threshold: 0.3, MaxRecentActionDays: 30}
	engine := newEngine(t, src, cfg)

	recs, err := engine.Generate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(recs) != 5 {
		t.Fatalf("Generate() returned %d users, want 5", len(recs))
	}

	added := recommend.GroupByUser(src.selected)
	future := make(recommend.EventSet)
	for _, ev := range src.events {
		if ev.StartTime.After(asOf) {
			future.Add(ev.ID)
		}
	}
	for user, events := range recs {
		for id := range events {
			if added[user].Has(id) {
				t.Errorf("%s was recommended already-added event %d", user, id)
			}
			if !future.Has(id) {
				t.Errorf("%s was recommended past event %d", user, id)
			}
		}
	}
	if recs.Total() == 0 {
		t.Error("expected at least one recommendation from a structured store")
	}
}

func TestEngine_Generate_InsufficientData(t *testing.T) {
	tests := []struct {
		name      string
		selected  []recommend.Interaction
		wantUsers []string
	}{
		{
			name:      "no interactions",
			selected:  nil,
			wantUsers: []string{},
		},
		{
			name:      "one eligible user",
			selected:  []recommend.Interaction{calendarAdd("alice", 1, 1), calendarAdd("alice", 2, 1)},
			wantUsers: []string{"alice"},
		},
		{
			name:      "one shared event",
			selected:  []recommend.Interaction{calendarAdd("alice", 1, 1), calendarAdd("bob", 1, 2)},
			wantUsers: []string{"alice", "bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &recommend.Config{MinUserActions: 1, VectorSize: 5, Threshold: 0.5, MaxRecentActionDays: 30}
			engine := newEngine(t, &memorySource{selected: tt.selected}, cfg)

			recs, err := engine.Generate(context.Background(), asOf)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got := recs.Users(); !reflect.DeepEqual(got, tt.wantUsers) {
				t.Errorf("users = %v, want %v", got, tt.wantUsers)
			}
			if recs.Total() != 0 {
				t.Errorf("Total() = %d, want 0", recs.Total())
			}
		})
	}
}

// TestEngine_Generate_MinActionsBoundary checks that a user with one add
// fewer than the minimum never reaches the matrix.
func TestEngine_Generate_MinActionsBoundary(t *testing.T) {
	src := community()
	for i := int64(0); i < 4; i++ {
		src.selected = append(src.selected, calendarAdd("frank", 1+i, 1))
	}
	for i := int64(0); i < 5; i++ {
		src.selected = append(src.selected, calendarAdd("grace", 4+i, 1))
	}
	cfg := &recommend.Config{MinUserActions: 5, VectorSize: 2, Threshold: 0.5, MaxRecentActionDays: 30}

	recs, err := newEngine(t, src, cfg).Generate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// Only grace has five adds; alone she cannot form a matrix
	if got := recs.Users(); !reflect.DeepEqual(got, []string{"grace"}) {
		t.Errorf("users = %v, want [grace]", got)
	}
}

func TestEngine_Generate_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	engine := newEngine(t, &memorySource{err: storeErr}, nil)

	if _, err := engine.Generate(context.Background(), asOf); !errors.Is(err, storeErr) {
		t.Errorf("Generate() error = %v, want wrapped %v", err, storeErr)
	}
}

func TestEngine_Run(t *testing.T) {
	cfg := &recommend.Config{MinUserActions: 3, VectorSize: 2, Threshold: 0.3, MaxRecentActionDays: 30}
	now := asOf.Add(6 * time.Hour)

	t.Run("persists generated recommendations", func(t *testing.T) {
		sink := &memorySink{}
		result, err := newEngine(t, community(), cfg).Run(context.Background(), asOf, sink, "svd-test", now)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(sink.calls) != 1 {
			t.Fatalf("sink called %d times, want 1", len(sink.calls))
		}
		if result.UsersConsidered != 5 {
			t.Errorf("UsersConsidered = %d, want 5", result.UsersConsidered)
		}
		if result.TotalRecs != sink.calls[0].Total() {
			t.Errorf("TotalRecs = %d, want %d", result.TotalRecs, sink.calls[0].Total())
		}
	})

	t.Run("sink error is returned", func(t *testing.T) {
		sinkErr := errors.New("deadlock")
		_, err := newEngine(t, community(), cfg).Run(context.Background(), asOf, &memorySink{err: sinkErr}, "svd-test", now)
		if !errors.Is(err, sinkErr) {
			t.Errorf("Run() error = %v, want wrapped %v", err, sinkErr)
		}
	})

	t.Run("store error writes nothing", func(t *testing.T) {
		sink := &memorySink{}
		_, err := newEngine(t, &memorySource{err: errors.New("down")}, cfg).Run(context.Background(), asOf, sink, "svd-test", now)
		if err == nil {
			t.Fatal("Run() expected error")
		}
		if len(sink.calls) != 0 {
			t.Errorf("sink called %d times, want 0", len(sink.calls))
		}
	})
}

func TestEngine_Run_LogsWithRunID(t *testing.T) {
	var buf bytes.Buffer
	cfg := &recommend.Config{MinUserActions: 3, VectorSize: 2, Threshold: 0.3, MaxRecentActionDays: 30}
	engine, err := recommend.NewEngine(cfg, recommend.NewRepository(community()),
		algorithms.NewSVD(zerolog.Nop()), logging.NewTestLogger(&buf))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	ctx := logging.ContextWithRunID(context.Background(), "prod0001")
	if _, err := engine.Run(ctx, asOf, &memorySink{}, "svd-test", asOf); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"run_id":"prod0001"`, `"message":"persisted recommendations"`, `"model_version":"svd-test"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log output, got: %s", want, out)
		}
	}
}

// TestSelect_ThreeByFourScenario factorizes a 3x4 matrix containing an
// all-zero user row at rank 2 and checks the selection against the scores.
func TestSelect_ThreeByFourScenario(t *testing.T) {
	m := &recommend.InteractionMatrix{
		Users:  []string{"a", "b", "c"},
		Events: []int64{1, 2, 3, 4},
		Cells: mat.NewDense(3, 4, []float64{
			1, 1, 0, 1,
			0, 1, 1, 0,
			0, 0, 0, 0,
		}),
	}
	future := recommend.NewEventSet(1, 2, 3, 4)

	scores, err := algorithms.NewSVD(zerolog.Nop()).Factorize(context.Background(), m.Cells, 2)
	if err != nil {
		t.Fatalf("Factorize() error = %v", err)
	}
	recs, err := recommend.Select(scores, m, future, 0.5)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	for i, user := range m.Users {
		want := make(recommend.EventSet)
		for j, id := range m.Events {
			if !m.Added(i, j) && scores.At(i, j) > 0.5 {
				want.Add(id)
			}
		}
		got, ok := recs[user]
		if !ok {
			t.Fatalf("missing entry for %s", user)
		}
		if !reflect.DeepEqual(got.Sorted(), want.Sorted()) {
			t.Errorf("recs[%s] = %v, want %v", user, got.Sorted(), want.Sorted())
		}
	}

	// The zero row reconstructs to zero, which rescales to the same value
	// everywhere: the empty user gets all or nothing, never a partial set.
	if n := len(recs["c"]); n != 0 && n != 4 {
		t.Errorf("recs[c] has %d events, want 0 or 4", n)
	}
}
