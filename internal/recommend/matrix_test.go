// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildMatrix(t *testing.T) {
	adds := []Interaction{
		add("u2", 30, 0),
		add("u1", 10, 0),
		add("u1", 30, 0),
		add("u3", 20, 0),
	}

	m, err := BuildMatrix(adds)
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}

	if want := []string{"u1", "u2", "u3"}; !reflect.DeepEqual(m.Users, want) {
		t.Errorf("Users = %v, want %v", m.Users, want)
	}
	if want := []int64{10, 20, 30}; !reflect.DeepEqual(m.Events, want) {
		t.Errorf("Events = %v, want %v", m.Events, want)
	}

	want := [][]float64{
		{1, 0, 1},
		{0, 0, 1},
		{0, 1, 0},
	}
	for i := range want {
		for j := range want[i] {
			if got := m.Cells.At(i, j); got != want[i][j] {
				t.Errorf("cell(%s, %d) = %v, want %v", m.Users[i], m.Events[j], got, want[i][j])
			}
		}
	}
	if !m.Added(0, 2) || m.Added(1, 0) {
		t.Error("Added() disagrees with cells")
	}
}

func TestBuildMatrix_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		adds []Interaction
	}{
		{"no adds", nil},
		{"single user", []Interaction{add("u1", 1, 0), add("u1", 2, 0)}},
		{"single event", []Interaction{add("u1", 1, 0), add("u2", 1, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildMatrix(tt.adds); !errors.Is(err, ErrInsufficientData) {
				t.Errorf("BuildMatrix() error = %v, want ErrInsufficientData", err)
			}
		})
	}
}
