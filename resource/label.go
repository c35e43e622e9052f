package resource

import (
	"fmt"
	"sync"
)

// Label groups resources for bulk destruction.
type Label uint32

const (
	// DefaultLabel is at the bottom of every LabelStack.
	DefaultLabel Label = 0xFFFFFFFE

	// InvalidLabel is never assigned to a resource.
	InvalidLabel Label = 0xFFFFFFFF
)

// String formats the label.
func (l Label) String() string {
	switch l {
	case DefaultLabel:
		return "Default"
	case InvalidLabel:
		return "Invalid"
	default:
		return fmt.Sprintf("Label(%d)", uint32(l))
	}
}

// LabelStack tracks the label new resources are registered under.
//
// The stack always contains DefaultLabel at its bottom, so PeekLabel never
// fails. LabelStack is safe for concurrent use.
type LabelStack struct {
	mu       sync.Mutex
	labels   []Label
	capacity int
	next     Label
}

// NewLabelStack creates a stack that holds up to capacity pushed labels.
func NewLabelStack(capacity int) *LabelStack {
	if capacity < 1 {
		capacity = 1
	}
	s := &LabelStack{capacity: capacity}
	s.labels = make([]Label, 1, capacity+1)
	s.labels[0] = DefaultLabel
	return s
}

// PushLabel allocates a fresh label and pushes it.
func (s *LabelStack) PushLabel() (Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.labels)-1 >= s.capacity {
		return InvalidLabel, ErrLabelStackOverflow
	}
	l := s.next
	s.next++
	if s.next >= DefaultLabel {
		s.next = 0
	}
	s.labels = append(s.labels, l)
	return l, nil
}

// PushExistingLabel pushes a label previously returned by PushLabel.
func (s *LabelStack) PushExistingLabel(l Label) error {
	if l == InvalidLabel {
		return ErrInvalidLabel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.labels)-1 >= s.capacity {
		return ErrLabelStackOverflow
	}
	s.labels = append(s.labels, l)
	return nil
}

// PopLabel removes and returns the top label. DefaultLabel cannot be popped.
func (s *LabelStack) PopLabel() (Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.labels) <= 1 {
		return InvalidLabel, ErrLabelStackUnderflow
	}
	l := s.labels[len(s.labels)-1]
	s.labels = s.labels[:len(s.labels)-1]
	return l, nil
}

// PeekLabel returns the top label without removing it.
func (s *LabelStack) PeekLabel() Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.labels[len(s.labels)-1]
}

// Depth returns the number of pushed labels, excluding DefaultLabel.
func (s *LabelStack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.labels) - 1
}
