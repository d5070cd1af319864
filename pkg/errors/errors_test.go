package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewInsufficientDataError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		required int
		got      int
		wantMsg  string
	}{
		{
			name:     "detector below neighbor count",
			op:       "autocorr.Detect",
			required: 6,
			got:      5,
			wantMsg:  "spatcv: autocorr.Detect: insufficient data: need at least 6 samples, got 5",
		},
		{
			name:     "trainer below minimum",
			op:       "boost.Train",
			required: 10,
			got:      3,
			wantMsg:  "spatcv: boost.Train: insufficient data: need at least 10 samples, got 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewInsufficientDataError(tt.op, tt.required, tt.got)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var dataErr *InsufficientDataError
			if !As(err, &dataErr) {
				t.Error("Error should be castable to *InsufficientDataError")
			}
		})
	}
}

func TestNewDegenerateBlockError(t *testing.T) {
	err := NewDegenerateBlockError(3, 5, 50000)

	want := "spatcv: spatial blocking degenerate: 3 non-empty blocks at 50000m cannot fill 5 folds"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var blockErr *DegenerateBlockError
	if !As(err, &blockErr) {
		t.Fatal("Error should be castable to *DegenerateBlockError")
	}
	if blockErr.Blocks != 3 || blockErr.Folds != 5 {
		t.Errorf("unexpected fields: %+v", blockErr)
	}
}

func TestNewNonConvergenceError(t *testing.T) {
	err := NewNonConvergenceError(21, 1.25)

	if !strings.Contains(err.Error(), "no validation improvement in 21 rounds") {
		t.Errorf("unexpected message: %v", err.Error())
	}

	var convErr *NonConvergenceError
	if !As(err, &convErr) {
		t.Error("Error should be castable to *NonConvergenceError")
	}
}

func TestNewFeatureMismatchError(t *testing.T) {
	t.Run("missing layers named", func(t *testing.T) {
		err := NewFeatureMismatchError("predict.Surface", []string{"elevation", "ndvi"}, 4, 2)

		want := "spatcv: predict.Surface: covariate schema mismatch: missing layer(s) [elevation, ndvi]"
		if err.Error() != want {
			t.Errorf("Error() = %v, want %v", err.Error(), want)
		}
	})

	t.Run("count mismatch only", func(t *testing.T) {
		err := NewFeatureMismatchError("boost.Predict", nil, 4, 3)

		want := "spatcv: boost.Predict: covariate schema mismatch: expected 4 features, got 3"
		if err.Error() != want {
			t.Errorf("Error() = %v, want %v", err.Error(), want)
		}

		var fmErr *FeatureMismatchError
		if !As(err, &fmErr) {
			t.Error("Error should be castable to *FeatureMismatchError")
		}
	})
}

func TestNewInvalidConfigurationError(t *testing.T) {
	err := NewInvalidConfigurationError("alpha", "must be in (0, 1)", 1.5)

	want := "spatcv: invalid configuration for 'alpha': must be in (0, 1) (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var cfgErr *InvalidConfigurationError
	if !As(err, &cfgErr) {
		t.Error("Error should be castable to *InvalidConfigurationError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("geo.DistanceMatrix", 20, 18, 0)

	want := "spatcv: geo.DistanceMatrix: dimension mismatch on axis 0 (rows). Expected 20, got 18"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(func(w error) {})

	w := NewOverfitWarning(42, 0.9, 0.5)
	Warn(w)

	if captured == nil {
		t.Fatal("Expected warning to reach handler")
	}
	if !strings.Contains(captured.Error(), "iteration 42") {
		t.Errorf("unexpected warning message: %v", captured.Error())
	}
}

func TestCheckValues(t *testing.T) {
	if err := CheckValues("test", []float64{1, 2, 3}, 0); err != nil {
		t.Errorf("finite values should pass: %v", err)
	}

	err := CheckValues("test", []float64{1, math.NaN(), 3}, 7)
	if err == nil {
		t.Fatal("NaN should be rejected")
	}
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Error("Error should be castable to *NumericalInstabilityError")
	}
	if numErr.Iteration != 7 {
		t.Errorf("Iteration = %d, want 7", numErr.Iteration)
	}
}
