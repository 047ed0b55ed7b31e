package vm

import "testing"

func TestStackPushPop(t *testing.T) {
	var s Stack

	s.Push(1.5)
	s.Push(-2)
	if got := s.Depth(); got != 2 {
		t.Errorf("Expected depth 2, got %d", got)
	}
	if got := s.Pop(); got != -2 {
		t.Errorf("Expected -2, got %g", got)
	}
	if got := s.Pop(); got != 1.5 {
		t.Errorf("Expected 1.5, got %g", got)
	}
	if got := s.Depth(); got != 0 {
		t.Errorf("Expected empty stack, got depth %d", got)
	}
}

func TestStackPeek(t *testing.T) {
	var s Stack

	s.Push(3)
	if got := s.Peek(); got != 3 {
		t.Errorf("Expected 3, got %g", got)
	}
	if got := s.Depth(); got != 1 {
		t.Errorf("Peek consumed the value: depth %d", got)
	}
}

func TestStackReset(t *testing.T) {
	var s Stack

	for i := 0; i < 10; i++ {
		s.Push(Sample(i))
	}
	s.Reset()
	if got := s.Depth(); got != 0 {
		t.Errorf("Expected depth 0 after reset, got %d", got)
	}

	// The stack must be fully usable again after a reset.
	s.Push(7)
	if got := s.Pop(); got != 7 {
		t.Errorf("Expected 7 after reset, got %g", got)
	}
}

func TestStackFullCapacity(t *testing.T) {
	var s Stack

	for i := 0; i < MaxDepth; i++ {
		s.Push(Sample(i))
	}
	if got := s.Depth(); got != MaxDepth {
		t.Fatalf("Expected depth %d, got %d", MaxDepth, got)
	}
	for i := MaxDepth - 1; i >= 0; i-- {
		if got := s.Pop(); got != Sample(i) {
			t.Fatalf("Pop %d: expected %d, got %g", i, i, got)
		}
	}
}
