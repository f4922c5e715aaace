package gzinga

import (
	"bytes"
	"strconv"
)

// Entry is one checkpoint recorded in a container: the application key and
// the byte offset of the header that starts the checkpoint's member.
type Entry struct {
	Key    int64
	Offset int64
}

// Index maps checkpoint keys to container offsets, preserving insertion
// order. The Index handed out by Reader and Writer is a read-only snapshot.
type Index struct {
	entries []Entry
	pos     map[int64]int
}

func newIndex() *Index {
	return &Index{pos: make(map[int64]int)}
}

// add records key at off. A repeated key keeps its original position and
// takes the new offset.
func (ix *Index) add(key, off int64) {
	if i, ok := ix.pos[key]; ok {
		ix.entries[i].Offset = off
		return
	}
	ix.pos[key] = len(ix.entries)
	ix.entries = append(ix.entries, Entry{Key: key, Offset: off})
}

func (ix *Index) clone() *Index {
	c := &Index{
		entries: make([]Entry, len(ix.entries)),
		pos:     make(map[int64]int, len(ix.pos)),
	}
	copy(c.entries, ix.entries)
	for k, v := range ix.pos {
		c.pos[k] = v
	}
	return c
}

// Len returns the number of checkpoints.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Lookup returns the offset recorded for key.
func (ix *Index) Lookup(key int64) (int64, bool) {
	if ix == nil {
		return 0, false
	}
	i, ok := ix.pos[key]
	if !ok {
		return 0, false
	}
	return ix.entries[i].Offset, true
}

func (ix *Index) Contains(key int64) bool {
	_, ok := ix.Lookup(key)
	return ok
}

// Entries returns a copy of the checkpoints in insertion order.
func (ix *Index) Entries() []Entry {
	if ix == nil {
		return nil
	}
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Keys returns the checkpoint keys in insertion order.
func (ix *Index) Keys() []int64 {
	if ix == nil {
		return nil
	}
	out := make([]int64, len(ix.entries))
	for i, e := range ix.entries {
		out[i] = e.Key
	}
	return out
}

// Range calls fn for every checkpoint in insertion order until fn returns
// false.
func (ix *Index) Range(fn func(key, off int64) bool) {
	if ix == nil {
		return
	}
	for _, e := range ix.entries {
		if !fn(e.Key, e.Offset) {
			return
		}
	}
}

// floor returns the entry with the greatest key <= key. Only meaningful for
// indexes whose keys grow with insertion order, like the ones written by the
// block and rsyncable writers.
func (ix *Index) floor(key int64) (Entry, bool) {
	var best Entry
	found := false
	for _, e := range ix.entries {
		if e.Key <= key && (!found || e.Key >= best.Key) {
			best, found = e, true
		}
	}
	return best, found
}

func (ix *Index) String() string {
	return string(ix.appendComment(nil))
}

// appendComment serializes the whole index as "key:offset;" tokens.
func (ix *Index) appendComment(buf []byte) []byte {
	if ix == nil {
		return buf
	}
	for _, e := range ix.entries {
		buf = strconv.AppendInt(buf, e.Key, 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, e.Offset, 10)
		buf = append(buf, ';')
	}
	return buf
}

// parseComment decodes a header comment. Empty tokens are skipped; anything
// else that is not "int:int" fails the whole parse.
func parseComment(comment []byte) (*Index, error) {
	ix := newIndex()
	for _, tok := range bytes.Split(comment, []byte{';'}) {
		if len(tok) == 0 {
			continue
		}
		sep := bytes.IndexByte(tok, ':')
		if sep < 0 {
			return nil, &ParseError{Token: string(tok)}
		}
		key, err := strconv.ParseInt(string(tok[:sep]), 10, 64)
		if err != nil {
			return nil, &ParseError{Token: string(tok), cause: err}
		}
		off, err := strconv.ParseInt(string(tok[sep+1:]), 10, 64)
		if err != nil {
			return nil, &ParseError{Token: string(tok), cause: err}
		}
		ix.add(key, off)
	}
	return ix, nil
}
