package obslog

import (
	"errors"
	"testing"
)

func TestAggregateNilWhenAllNil(t *testing.T) {
	if err := Aggregate(nil, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAggregateCombinesNonNil(t *testing.T) {
	err := Aggregate(errors.New("a"), nil, errors.New("b"))
	if err == nil {
		t.Fatal("expected a combined error")
	}
}

func TestNewExchangeIDIsUnique(t *testing.T) {
	a, b := NewExchangeID(), NewExchangeID()
	if a == b {
		t.Fatal("expected distinct exchange ids")
	}
}
