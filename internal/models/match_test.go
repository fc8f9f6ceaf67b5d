package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestOrderedPairCanonical(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("99999999-9999-9999-9999-999999999999")

	lowAB, highAB := OrderedPair(a, b)
	lowBA, highBA := OrderedPair(b, a)

	if lowAB != lowBA || highAB != highBA {
		t.Fatalf("pair ordering depends on argument order")
	}
	if lowAB != a || highAB != b {
		t.Fatalf("expected (a, b), got (%s, %s)", lowAB, highAB)
	}
}

func TestOrderedPairEqual(t *testing.T) {
	a := uuid.New()
	low, high := OrderedPair(a, a)
	if low != a || high != a {
		t.Fatalf("expected identity for equal ids")
	}
}
