package engine

import (
	"errors"
	"math"
	"testing"
)

func TestBuildLadderUniform(t *testing.T) {
	tests := []struct {
		name      string
		lower     float64
		upper     float64
		gridCount int
	}{
		{"small", 90, 110, 2},
		{"ten levels", 100, 200, 10},
		{"odd count", 50, 75, 7},
		{"tight range", 0.5, 0.6, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ladder, err := BuildLadder(GridConfig{
				LowerPrice: tt.lower,
				UpperPrice: tt.upper,
				GridCount:  tt.gridCount,
				Spacing:    SpacingUniform,
			})
			if err != nil {
				t.Fatalf("BuildLadder failed: %v", err)
			}
			if len(ladder) != tt.gridCount+1 {
				t.Fatalf("Expected %d levels, got %d", tt.gridCount+1, len(ladder))
			}
			if ladder[0] != tt.lower || ladder[len(ladder)-1] != tt.upper {
				t.Errorf("Bounds not pinned: got [%v, %v]", ladder[0], ladder[len(ladder)-1])
			}

			step := (tt.upper - tt.lower) / float64(tt.gridCount)
			for i := 1; i < len(ladder); i++ {
				if ladder[i] <= ladder[i-1] {
					t.Errorf("Ladder not strictly increasing at %d: %v <= %v", i, ladder[i], ladder[i-1])
				}
				diff := ladder[i] - ladder[i-1]
				if math.Abs(diff-step) > 1e-9 {
					t.Errorf("Non-constant step at %d: got %v, want %v", i, diff, step)
				}
			}
		})
	}
}

func TestBuildLadderGeometric(t *testing.T) {
	ladder, err := BuildLadder(GridConfig{
		LowerPrice: 100,
		UpperPrice: 400,
		GridCount:  4,
		Spacing:    SpacingGeometric,
	})
	if err != nil {
		t.Fatalf("BuildLadder failed: %v", err)
	}
	if len(ladder) != 5 {
		t.Fatalf("Expected 5 levels, got %d", len(ladder))
	}
	if ladder[0] != 100 || ladder[4] != 400 {
		t.Errorf("Bounds not pinned: got [%v, %v]", ladder[0], ladder[4])
	}

	want := math.Pow(4, 0.25)
	for i := 1; i < len(ladder); i++ {
		ratio := ladder[i] / ladder[i-1]
		if math.Abs(ratio-want) > 1e-9 {
			t.Errorf("Non-constant ratio at %d: got %v, want %v", i, ratio, want)
		}
	}
}

func TestBuildLadderDefaultsToUniform(t *testing.T) {
	ladder, err := BuildLadder(GridConfig{LowerPrice: 90, UpperPrice: 110, GridCount: 2})
	if err != nil {
		t.Fatalf("BuildLadder failed: %v", err)
	}
	if ladder[1] != 100 {
		t.Errorf("Expected midpoint 100, got %v", ladder[1])
	}
}

func TestBuildLadderErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  GridConfig
		want error
	}{
		{"zero lower", GridConfig{LowerPrice: 0, UpperPrice: 100, GridCount: 2}, ErrInvalidPrice},
		{"negative lower", GridConfig{LowerPrice: -5, UpperPrice: 100, GridCount: 2}, ErrInvalidPrice},
		{"inverted range", GridConfig{LowerPrice: 110, UpperPrice: 90, GridCount: 2}, ErrInvalidRange},
		{"equal bounds", GridConfig{LowerPrice: 100, UpperPrice: 100, GridCount: 2}, ErrInvalidRange},
		{"grid count too small", GridConfig{LowerPrice: 90, UpperPrice: 110, GridCount: 1}, ErrInvalidGridCount},
		{"unknown spacing", GridConfig{LowerPrice: 90, UpperPrice: 110, GridCount: 2, Spacing: "fibonacci"}, ErrInvalidSpacing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildLadder(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunConfigValidate(t *testing.T) {
	if err := (RunConfig{InvestmentAmount: 0, Leverage: 1}).Validate(); !errors.Is(err, ErrInvalidInvestment) {
		t.Errorf("Expected ErrInvalidInvestment, got %v", err)
	}
	if err := (RunConfig{InvestmentAmount: 1000, Leverage: 0.5}).Validate(); !errors.Is(err, ErrInvalidLeverage) {
		t.Errorf("Expected ErrInvalidLeverage, got %v", err)
	}
	if err := (RunConfig{InvestmentAmount: 1000, Leverage: 3}).Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}
