package store

import (
	"container/list"
	"fmt"
	"sort"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindList
	KindSet
)

// String returns the name TYPE reports for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a closed union over *String, *List and *Set. The unexported
// method keeps other packages from adding variants, so every type switch over
// Value in this package is exhaustive.
type Value interface {
	Kind() Kind
	value()
}

// String holds a plain string value.
type String struct {
	Text string
}

// List holds an ordered sequence mutated at both ends.
type List struct {
	items *list.List
}

// Set holds unique members; order is irrelevant.
type Set struct {
	members map[string]struct{}
}

func (*String) Kind() Kind { return KindString }
func (*List) Kind() Kind   { return KindList }
func (*Set) Kind() Kind    { return KindSet }

func (*String) value() {}
func (*List) value()   {}
func (*Set) value()    {}

// NewString returns a string value.
func NewString(text string) *String {
	return &String{Text: text}
}

// NewList returns a list holding values in order.
func NewList(values ...string) *List {
	l := &List{items: list.New()}
	for _, v := range values {
		l.items.PushBack(v)
	}
	return l
}

// NewSet returns a set holding the distinct members.
func NewSet(members ...string) *Set {
	s := &Set{members: make(map[string]struct{}, len(members))}
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	return s
}

// AsString returns v as *String and panics on any other variant.
func AsString(v Value) *String {
	s, ok := v.(*String)
	if !ok {
		panic(fmt.Sprintf("store: value is a %s, not a string", v.Kind()))
	}
	return s
}

// AsList returns v as *List and panics on any other variant.
func AsList(v Value) *List {
	l, ok := v.(*List)
	if !ok {
		panic(fmt.Sprintf("store: value is a %s, not a list", v.Kind()))
	}
	return l
}

// AsSet returns v as *Set and panics on any other variant.
func AsSet(v Value) *Set {
	s, ok := v.(*Set)
	if !ok {
		panic(fmt.Sprintf("store: value is a %s, not a set", v.Kind()))
	}
	return s
}

// Len returns the number of elements.
func (l *List) Len() int { return l.items.Len() }

// PushFront inserts values at the head one at a time, so the last value ends
// up first, matching LPUSH.
func (l *List) PushFront(values ...string) {
	for _, v := range values {
		l.items.PushFront(v)
	}
}

// PushBack appends values at the tail in order.
func (l *List) PushBack(values ...string) {
	for _, v := range values {
		l.items.PushBack(v)
	}
}

// PopFront removes and returns up to n elements from the head.
func (l *List) PopFront(n int) []string {
	out := make([]string, 0, min(n, l.items.Len()))
	for len(out) < n && l.items.Len() > 0 {
		out = append(out, l.items.Remove(l.items.Front()).(string))
	}
	return out
}

// PopBack removes and returns up to n elements from the tail.
func (l *List) PopBack(n int) []string {
	out := make([]string, 0, min(n, l.items.Len()))
	for len(out) < n && l.items.Len() > 0 {
		out = append(out, l.items.Remove(l.items.Back()).(string))
	}
	return out
}

// Range returns the elements with indexes in [start, stop]. Negative indexes
// count from the tail; the result is empty when the normalized range is
// inverted or starts past the end.
func (l *List) Range(start, stop int64) []string {
	n := int64(l.items.Len())
	if start < 0 {
		start += n
	}
	if start < 0 {
		start = 0
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return []string{}
	}

	out := make([]string, 0, stop-start+1)
	var i int64
	for e := l.items.Front(); e != nil && i <= stop; e = e.Next() {
		if i >= start {
			out = append(out, e.Value.(string))
		}
		i++
	}
	return out
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.members) }

// Add inserts members and returns how many were new.
func (s *Set) Add(members ...string) int64 {
	var added int64
	for _, m := range members {
		if _, ok := s.members[m]; ok {
			continue
		}
		s.members[m] = struct{}{}
		added++
	}
	return added
}

// Remove deletes members and returns how many were present.
func (s *Set) Remove(members ...string) int64 {
	var removed int64
	for _, m := range members {
		if _, ok := s.members[m]; ok {
			delete(s.members, m)
			removed++
		}
	}
	return removed
}

// Contains reports whether m is a member.
func (s *Set) Contains(m string) bool {
	_, ok := s.members[m]
	return ok
}

// Members returns the members in sorted order.
func (s *Set) Members() []string {
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
