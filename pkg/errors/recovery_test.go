package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecoverWithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "boost.Train")
		panic("split scan out of range")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected PanicError, got %T", err)
	}
	if panicErr.Operation != "boost.Train" {
		t.Errorf("expected operation 'boost.Train', got %q", panicErr.Operation)
	}
	if panicErr.PanicValue != "split scan out of range" {
		t.Errorf("unexpected panic value: %v", panicErr.PanicValue)
	}
	if panicErr.StackTrace == "" {
		t.Error("expected non-empty stack trace")
	}
	if want := "panic in boost.Train: split scan out of range"; panicErr.Error() != want {
		t.Errorf("expected error message %q, got %q", want, panicErr.Error())
	}
}

func TestRecoverWithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "boost.Train")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecoverWithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("fold assignment rejected")

	testFunc := func() (err error) {
		defer Recover(&err, "boost.Train")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	msg := err.Error()
	if !strings.Contains(msg, "panic in boost.Train") {
		t.Errorf("error message should carry the panic context: %s", msg)
	}
	if !strings.Contains(msg, "fold assignment rejected") {
		t.Errorf("error message should carry the original error: %s", msg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("original error should survive errors.Is through the wrap")
	}
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("grid sweep", func() error { return nil }); err != nil {
		t.Fatalf("expected no error for successful operation, got: %v", err)
	}

	originalErr := fmt.Errorf("layer missing")
	if err := SafeExecute("grid sweep", func() error { return originalErr }); err != originalErr {
		t.Fatalf("expected original error, got: %v", err)
	}

	err := SafeExecute("grid sweep", func() error {
		panic("cell index out of range")
	})
	if err == nil {
		t.Fatal("expected error from panic, got nil")
	}
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected PanicError, got %T", err)
	}
	if panicErr.PanicValue != "cell index out of range" {
		t.Errorf("unexpected panic value: %v", panicErr.PanicValue)
	}
}

func TestPanicErrorInterface(t *testing.T) {
	panicErr := NewPanicError("predict.Surface", "bad cell")

	if want := "panic in predict.Surface: bad cell"; panicErr.Error() != want {
		t.Errorf("expected %q, got %q", want, panicErr.Error())
	}

	str := panicErr.String()
	if !strings.Contains(str, "Stack trace:") {
		t.Error("String() should include the stack trace")
	}
	if panicErr.Unwrap() != nil {
		t.Error("PanicError.Unwrap() should return nil")
	}
}

func TestRecoverPanicValueTypes(t *testing.T) {
	testCases := []struct {
		name       string
		panicValue interface{}
	}{
		{"string", "boom"},
		{"int", 42},
		{"error", fmt.Errorf("wrapped")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testFunc := func() (err error) {
				defer Recover(&err, "typeTest")
				panic(tc.panicValue)
			}

			err := testFunc()
			if err == nil {
				t.Fatal("expected error from panic")
			}
			var panicErr *PanicError
			if !errors.As(err, &panicErr) {
				t.Fatalf("expected PanicError, got %T", err)
			}
			if fmt.Sprintf("%v", panicErr.PanicValue) != fmt.Sprintf("%v", tc.panicValue) {
				t.Errorf("expected panic value %v, got %v", tc.panicValue, panicErr.PanicValue)
			}
		})
	}
}

func BenchmarkRecoverNoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		func() (err error) {
			defer Recover(&err, "bench")
			return nil
		}()
	}
}
