package vm

// MaxDepth is the capacity of the evaluation stack. The compiler rejects
// programs whose static depth would exceed it, so the running machine
// never range-checks.
const MaxDepth = 256

// Stack is a fixed-capacity LIFO of Samples. It is reset at the start of
// every frame and never carries values across frames.
//
// Push and Pop are deliberately unchecked: every program that reaches the
// machine has had its stack effect verified instruction by instruction at
// build time, so underflow and overflow cannot occur at runtime.
type Stack struct {
	data [MaxDepth]Sample
	top  int
}

// Push places x on top of the stack.
func (s *Stack) Push(x Sample) {
	s.data[s.top] = x
	s.top++
}

// Pop removes and returns the top of the stack.
func (s *Stack) Pop() Sample {
	s.top--
	return s.data[s.top]
}

// Peek returns the top of the stack without removing it.
func (s *Stack) Peek() Sample {
	return s.data[s.top-1]
}

// Depth returns the number of values on the stack.
func (s *Stack) Depth() int {
	return s.top
}

// Reset empties the stack. O(1): values are abandoned, not zeroed.
func (s *Stack) Reset() {
	s.top = 0
}
