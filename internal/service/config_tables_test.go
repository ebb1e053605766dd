package service

import (
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/Evdoha25/timurBot/internal/domain/entities"
	"github.com/Evdoha25/timurBot/internal/repository"
)

func TestWeightTableFromConfig(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name string
		raw  map[string]int
		want map[entities.Level]int
	}{
		{
			name: "empty falls back to defaults",
			raw:  nil,
			want: repository.DefaultLevelWeights(),
		},
		{
			name: "valid table with lowercase keys",
			raw:  map[string]int{"a1": 10, "a2": 20, "b1": 30, "b2": 40},
			want: map[entities.Level]int{
				entities.LevelA1: 10,
				entities.LevelA2: 20,
				entities.LevelB1: 30,
				entities.LevelB2: 40,
			},
		},
		{
			name: "unknown level key falls back",
			raw:  map[string]int{"a1": 1, "a2": 2, "b1": 3, "c1": 4},
			want: repository.DefaultLevelWeights(),
		},
		{
			name: "non-positive weight falls back",
			raw:  map[string]int{"a1": 1, "a2": 0, "b1": 3, "b2": 4},
			want: repository.DefaultLevelWeights(),
		},
		{
			name: "missing level falls back",
			raw:  map[string]int{"a1": 1, "a2": 2, "b1": 3},
			want: repository.DefaultLevelWeights(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightTableFromConfig(tt.raw, logger)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WeightTableFromConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThresholdsFromConfig(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name string
		raw  map[string]int
		want []LevelThreshold
	}{
		{
			name: "empty falls back to defaults",
			raw:  nil,
			want: DefaultThresholds(),
		},
		{
			name: "valid custom scale",
			raw:  map[string]int{"a1": 30, "a2": 60, "b1": 90},
			want: []LevelThreshold{
				{Max: 30, Level: entities.LevelA1},
				{Max: 60, Level: entities.LevelA2},
				{Max: 90, Level: entities.LevelB1},
			},
		},
		{
			name: "b2 bound is not configurable",
			raw:  map[string]int{"a1": 25, "a2": 50, "b1": 75, "b2": 100},
			want: DefaultThresholds(),
		},
		{
			name: "non-increasing bounds fall back",
			raw:  map[string]int{"a1": 50, "a2": 50, "b1": 75},
			want: DefaultThresholds(),
		},
		{
			name: "bound above 100 falls back",
			raw:  map[string]int{"a1": 25, "a2": 50, "b1": 101},
			want: DefaultThresholds(),
		},
		{
			name: "missing level falls back",
			raw:  map[string]int{"a1": 25, "b1": 75},
			want: DefaultThresholds(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ThresholdsFromConfig(tt.raw, logger)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ThresholdsFromConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommendationsFromConfig_MergesOverDefaults(t *testing.T) {
	logger := zap.NewNop()

	got := RecommendationsFromConfig(map[string]string{
		"b1": "custom B1 text",
		"xx": "ignored",
		"b2": "",
	}, logger)

	if got[entities.LevelB1] != "custom B1 text" {
		t.Errorf("B1 = %q, want the configured text", got[entities.LevelB1])
	}
	for _, level := range []entities.Level{entities.LevelA1, entities.LevelA2, entities.LevelB2} {
		if got[level] != DefaultRecommendations()[level] {
			t.Errorf("%s = %q, want the default text", level, got[level])
		}
	}
}

func TestQuotasFromConfig(t *testing.T) {
	logger := zap.NewNop()

	if got := QuotasFromConfig(nil, logger); got != nil {
		t.Errorf("QuotasFromConfig(nil) = %v, want nil", got)
	}

	got := QuotasFromConfig(map[string]int{"a1": 3, "b2": 2, "c1": 5, "a2": -1}, logger)
	want := map[entities.Level]int{
		entities.LevelA1: 3,
		entities.LevelB2: 2,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QuotasFromConfig() = %v, want %v", got, want)
	}

	// Only invalid entries: same as no quotas at all.
	if got := QuotasFromConfig(map[string]int{"c1": 5}, logger); got != nil {
		t.Errorf("QuotasFromConfig(all invalid) = %v, want nil", got)
	}
}
