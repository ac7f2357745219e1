package song

import (
	"errors"
	"iter"

	"github.com/jsphweid/utsu/model"
)

var (
	ErrDuplicatePosition = errors.New("a note already exists at this position")
	ErrNotFound          = errors.New("no note at this position")
)

// NodeID names a note stored in a NoteList. IDs of removed notes are reused.
type NodeID int

// NoNode is the NodeID of a missing neighbor.
const NoNode NodeID = -1

type node struct {
	note     Note
	position int
	prev     NodeID
	next     NodeID
	live     bool
}

// NoteList keeps a song's notes in position order. Notes are stored in an
// arena and linked by id, and a position index gives direct lookups.
// Positions are unique. A NoteList is not safe for concurrent use.
type NoteList struct {
	nodes []node
	free  []NodeID
	index map[int]NodeID
	head  NodeID
	tail  NodeID
}

func NewNoteList() *NoteList {
	return &NoteList{
		index: make(map[int]NodeID),
		head:  NoNode,
		tail:  NoNode,
	}
}

func (l *NoteList) Len() int {
	return len(l.index)
}

func (l *NoteList) at(id NodeID) *node {
	return &l.nodes[id]
}

func (l *NoteList) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(l.nodes) && l.nodes[id].live
}

// Insert adds note at position, searching for its place from the head.
func (l *NoteList) Insert(note Note, position int) (NodeID, error) {
	return l.InsertFrom(note, position, NoNode)
}

// InsertFrom adds note at position, searching for its place from hint.
// hint only speeds up the search: any live node, or NoNode, gives the same
// result. The note's delta and its successor's delta are set to match the
// new neighbors.
func (l *NoteList) InsertFrom(note Note, position int, hint NodeID) (NodeID, error) {
	if _, ok := l.index[position]; ok {
		return NoNode, ErrDuplicatePosition
	}

	prev := l.findPrev(position, hint)
	next := l.head
	prevPosition := 0
	if prev != NoNode {
		next = l.at(prev).next
		prevPosition = l.at(prev).position
	}
	note.delta = position - prevPosition

	id := l.alloc(node{note: note, position: position, prev: prev, next: next, live: true})
	if prev == NoNode {
		l.head = id
	} else {
		l.at(prev).next = id
	}
	if next == NoNode {
		l.tail = id
	} else {
		nx := l.at(next)
		nx.prev = id
		nx.note.delta = nx.position - position
	}
	l.index[position] = id
	return id, nil
}

func (l *NoteList) alloc(n node) NodeID {
	if len(l.free) > 0 {
		id := l.free[len(l.free)-1]
		l.free = l.free[:len(l.free)-1]
		l.nodes[id] = n
		return id
	}
	l.nodes = append(l.nodes, n)
	return NodeID(len(l.nodes) - 1)
}

// findPrev returns the last node placed before position, walking from start.
func (l *NoteList) findPrev(position int, start NodeID) NodeID {
	cur := start
	if !l.valid(cur) {
		cur = l.head
	}
	for cur != NoNode && l.at(cur).position > position {
		cur = l.at(cur).prev
	}
	if cur == NoNode {
		return NoNode
	}
	for {
		next := l.at(cur).next
		if next == NoNode || l.at(next).position >= position {
			return cur
		}
		cur = next
	}
}

// Removal describes a removed note and the neighbors it left behind.
type Removal struct {
	Note         Note
	Position     int
	HasPrev      bool
	PrevPosition int
	HasNext      bool
	NextPosition int
}

// Remove unlinks the note at position. The successor's delta is
// recomputed against its new predecessor.
func (l *NoteList) Remove(position int) (Removal, error) {
	id, ok := l.index[position]
	if !ok {
		return Removal{}, ErrNotFound
	}
	n := l.at(id)
	res := Removal{Note: n.note, Position: position}

	prevPosition := 0
	if n.prev != NoNode {
		res.HasPrev = true
		res.PrevPosition = l.at(n.prev).position
		prevPosition = res.PrevPosition
		l.at(n.prev).next = n.next
	} else {
		l.head = n.next
	}
	if n.next != NoNode {
		nx := l.at(n.next)
		res.HasNext = true
		res.NextPosition = nx.position
		nx.prev = n.prev
		nx.note.delta = nx.position - prevPosition
	} else {
		l.tail = n.prev
	}

	delete(l.index, position)
	*n = node{prev: NoNode, next: NoNode}
	l.free = append(l.free, id)
	return res, nil
}

// Lookup returns the node at exactly position.
func (l *NoteList) Lookup(position int) (NodeID, bool) {
	id, ok := l.index[position]
	return id, ok
}

func (l *NoteList) Note(id NodeID) Note {
	return l.at(id).note
}

func (l *NoteList) Position(id NodeID) int {
	return l.at(id).position
}

func (l *NoteList) Prev(id NodeID) (NodeID, bool) {
	prev := l.at(id).prev
	return prev, prev != NoNode
}

func (l *NoteList) Next(id NodeID) (NodeID, bool) {
	next := l.at(id).next
	return next, next != NoNode
}

// Head is the first node, if any.
func (l *NoteList) Head() (NodeID, bool) {
	return l.head, l.head != NoNode
}

// Tail is the last node, if any.
func (l *NoteList) Tail() (NodeID, bool) {
	return l.tail, l.tail != NoNode
}

// update replaces the note stored at id. Delta is owned by the list and is
// never taken from note.
func (l *NoteList) update(id NodeID, note Note) {
	n := l.at(id)
	note.delta = n.note.delta
	n.note = note
}

// All yields every note with its position, in position order.
func (l *NoteList) All() iter.Seq2[int, Note] {
	return func(yield func(int, Note) bool) {
		for cur := l.head; cur != NoNode; cur = l.at(cur).next {
			n := l.at(cur)
			if !yield(n.position, n.note) {
				return
			}
		}
	}
}

// Bounded yields the notes positioned inside region, in position order.
// The sequence can be ranged over more than once.
func (l *NoteList) Bounded(region model.RegionBounds) iter.Seq2[int, Note] {
	return func(yield func(int, Note) bool) {
		if !region.IsValid() {
			return
		}
		for cur := l.head; cur != NoNode; cur = l.at(cur).next {
			n := l.at(cur)
			if n.position > region.Max {
				return
			}
			if !region.Contains(n.position) {
				continue
			}
			if !yield(n.position, n.note) {
				return
			}
		}
	}
}
