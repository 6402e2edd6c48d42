package common

import (
	"strconv"
	"sync"
)

// OrderSequence hands out increasing numeric order numbers.
type OrderSequence struct {
	mutex sync.Mutex
	start int64
	next  int64
}

func MakeOrderSequence(start int64) *OrderSequence {
	return &OrderSequence{start: start, next: start}
}

func (seq *OrderSequence) Next() string {
	seq.mutex.Lock()
	defer seq.mutex.Unlock()
	n := seq.next
	seq.next++
	return strconv.FormatInt(n, 10)
}

// Returns how many numbers have been issued.
func (seq *OrderSequence) Issued() int64 {
	seq.mutex.Lock()
	defer seq.mutex.Unlock()
	return seq.next - seq.start
}
