// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestGenerateRunID(t *testing.T) {
	t.Parallel()

	id1 := GenerateRunID()
	id2 := GenerateRunID()

	if len(id1) != 8 {
		t.Errorf("expected 8-character run ID, got %d", len(id1))
	}
	if id1 == id2 {
		t.Error("expected unique run IDs")
	}
}

func TestRunIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if id := RunIDFromContext(ctx); id != "" {
		t.Errorf("expected empty run ID, got %s", id)
	}

	ctx = ContextWithRunID(ctx, "run-123")
	if id := RunIDFromContext(ctx); id != "run-123" {
		t.Errorf("expected 'run-123', got '%s'", id)
	}
}

func TestCheckpointContext(t *testing.T) {
	t.Parallel()

	if _, ok := CheckpointFromContext(context.Background()); ok {
		t.Error("expected no checkpoint on empty context")
	}

	cp := time.Date(2018, 10, 7, 0, 0, 0, 0, time.UTC)
	ctx := ContextWithCheckpoint(context.Background(), cp)
	got, ok := CheckpointFromContext(ctx)
	if !ok || !got.Equal(cp) {
		t.Errorf("CheckpointFromContext = %v, %v; want %v, true", got, ok, cp)
	}
}

func TestCtx_AddsContextFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRunID(ctx, "abc12345")
	ctx = ContextWithCheckpoint(ctx, time.Date(2018, 10, 7, 0, 0, 0, 0, time.UTC))

	Ctx(ctx).Info().Msg("checkpoint complete")

	out := buf.String()
	if !strings.Contains(out, `"run_id":"abc12345"`) {
		t.Errorf("expected run_id field, got: %s", out)
	}
	if !strings.Contains(out, `"checkpoint":"2018-10-07"`) {
		t.Errorf("expected checkpoint field, got: %s", out)
	}
}

func TestAttach_JoinsRunContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithRunID(context.Background(), "run-0042")

	Attach(ctx, NewTestLogger(&buf)).Info().Str("stage", "persist").Msg("stage complete")

	out := buf.String()
	for _, want := range []string{`"run_id":"run-0042"`, `"stage":"persist"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
	if strings.Contains(out, `"checkpoint"`) {
		t.Errorf("unexpected checkpoint field without a checkpoint: %s", out)
	}
}
