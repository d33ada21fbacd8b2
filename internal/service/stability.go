package service

import (
	"errors"
	"fmt"

	"github.com/luraaya/factengine/internal/domain"
)

// Signal is a derived discrete value that can be evaluated at one anchor,
// such as the zodiac sign of a body at the start of a day interval.
type Signal[T comparable] interface {
	Evaluate() (T, error)
}

// SignalFunc adapts a function to Signal.
type SignalFunc[T comparable] func() (T, error)

func (f SignalFunc[T]) Evaluate() (T, error) { return f() }

// KindedError lets a signal failure name its own kind in a StabilityResult.
type KindedError interface {
	error
	Kind() string
}

const panicKind = "panic"

// EvaluateStability evaluates a signal at both ends of an interval and
// reports whether it keeps its value. Both signals are always evaluated.
// Failures, including panics, become an EvaluationError result and are never
// returned to the caller.
func EvaluateStability[T comparable](atStart, atEnd Signal[T]) domain.StabilityResult {
	s1, err1 := safeEvaluate(atStart)
	s2, err2 := safeEvaluate(atEnd)

	for _, err := range []error{err1, err2} {
		if err != nil {
			return domain.StabilityResult{
				Stable:    false,
				Reason:    domain.EvaluationError,
				ErrorKind: errorKind(err),
			}
		}
	}

	if s1 == s2 {
		return domain.StabilityResult{Stable: true, Reason: domain.StableOverInterval}
	}
	return domain.StabilityResult{Stable: false, Reason: domain.ChangesWithinInterval}
}

type panicError struct {
	value any
}

func (e panicError) Error() string { return fmt.Sprintf("signal panicked: %v", e.value) }
func (e panicError) Kind() string  { return panicKind }

func safeEvaluate[T comparable](s Signal[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return s.Evaluate()
}

func errorKind(err error) string {
	var k KindedError
	if errors.As(err, &k) && k.Kind() != "" {
		return k.Kind()
	}
	return fmt.Sprintf("%T", err)
}
