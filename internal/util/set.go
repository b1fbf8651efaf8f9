package util

import (
	"github.com/gatewaykit/gateway/event"
	"github.com/gatewaykit/gateway/intent"
	"github.com/gatewaykit/gateway/opcode"
)

var emptyStruct = struct{}{}

type Set[T event.Type | intent.Type | opcode.Op] map[T]struct{}

func (s Set[T]) Add(elements ...T) {
	for _, element := range elements {
		s[element] = emptyStruct
	}
}

func (s Set[T]) Remove(elements ...T) {
	for _, element := range elements {
		delete(s, element)
	}
}

func (s Set[T]) Contains(element T) bool {
	_, ok := s[element]
	return ok
}

func (s Set[T]) ToSlice() []T {
	elements := make([]T, 0, len(s))
	for element := range s {
		elements = append(elements, element)
	}

	return elements
}
