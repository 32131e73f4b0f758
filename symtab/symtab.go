// Package symtab implements the symbol table collaborator described in
// spec.md: a bijection between integer labels and human-readable symbol
// strings. It is the label-alphabet analogue of github.com/kho/word's
// Vocab, generalized from a closed 3-word LM vocabulary to an open-ended,
// growable label alphabet used by FST input/output symbols.
package symtab

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// NoSymbol is returned by FindLabel when a string has no known label.
const NoSymbol int64 = -1

// Table is a growable bijection between int64 labels and strings. The
// zero value is not usable; construct with New.
type Table struct {
	name     string
	id2str   []string
	str2id   map[string]int64
	nextFree int64
}

// New creates an empty table. name is carried through for diagnostics and
// AT&T-style dumps (e.g. "isyms", "osyms").
func New(name string) *Table {
	return &Table{
		name:     name,
		str2id:   map[string]int64{},
		nextFree: 0,
	}
}

// Name returns the table's diagnostic name.
func (t *Table) Name() string { return t.name }

// FindLabel looks up the label for a symbol. Returns (NoSymbol, false) if
// absent.
func (t *Table) FindLabel(symbol string) (int64, bool) {
	id, ok := t.str2id[symbol]
	if !ok {
		return NoSymbol, false
	}
	return id, true
}

// FindSymbol looks up the symbol for a label. Returns ("", false) if
// absent.
func (t *Table) FindSymbol(label int64) (string, bool) {
	if label < 0 || label >= int64(len(t.id2str)) {
		return "", false
	}
	s := t.id2str[label]
	if s == "" && label != 0 {
		// Tombstoned slot (never assigned).
		_, ok := t.str2id[s]
		if !ok {
			return "", false
		}
	}
	return s, true
}

// AddSymbol adds symbol with an automatically assigned label, or returns
// its existing label if already present.
func (t *Table) AddSymbol(symbol string) int64 {
	if id, ok := t.str2id[symbol]; ok {
		return id
	}
	return t.AddSymbolAt(symbol, t.nextFree)
}

// AddSymbolAt adds symbol at an explicit label, overwriting whatever used
// to be there. Panics if symbol is already bound to a different label,
// mirroring the teacher's "do not corrupt a shared vocabulary" discipline
// in Vocab.Copy.
func (t *Table) AddSymbolAt(symbol string, label int64) int64 {
	if id, ok := t.str2id[symbol]; ok && id != label {
		panic(fmt.Sprintf("symtab: %q already bound to label %d", symbol, id))
	}
	for int64(len(t.id2str)) <= label {
		t.id2str = append(t.id2str, "")
	}
	t.id2str[label] = symbol
	t.str2id[symbol] = label
	if label >= t.nextFree {
		t.nextFree = label + 1
	}
	return label
}

// NumSymbols returns the number of distinct symbols in the table.
func (t *Table) NumSymbols() int { return len(t.str2id) }

// Copy returns a deep copy that can be mutated independently, exactly as
// Vocab.Copy does for the teacher's vocabulary.
func (t *Table) Copy() *Table {
	c := &Table{
		name:     t.name,
		id2str:   append([]string(nil), t.id2str...),
		str2id:   make(map[string]int64, len(t.str2id)),
		nextFree: t.nextFree,
	}
	for k, v := range t.str2id {
		c.str2id[k] = v
	}
	return c
}

type gobTable struct {
	Name     string
	Id2Str   []string
	Str2Id   map[string]int64
	NextFree int64
}

// MarshalBinary implements encoding.BinaryMarshaler using gob, the same
// serialization the teacher uses for Vocab.
func (t *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobTable{t.name, t.id2str, t.str2id, t.nextFree}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Table) UnmarshalBinary(data []byte) error {
	var g gobTable
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return err
	}
	t.name, t.id2str, t.str2id, t.nextFree = g.Name, g.Id2Str, g.Str2Id, g.NextFree
	return nil
}

// WriteText writes the table in the plain-text "symbol<TAB>label" format
// AT&T-style tools expect, one entry per line in ascending label order.
func (t *Table) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for label, sym := range t.id2str {
		if sym == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", sym, label); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadText reads the "symbol<TAB>label" text format into a new table.
func ReadText(name string, r io.Reader) (*Table, error) {
	t := New(name)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		parts := bytes.Split(line, []byte{'\t'})
		if len(parts) != 2 {
			return nil, errors.New("symtab: malformed line: " + string(line))
		}
		label, err := strconv.ParseInt(string(parts[1]), 10, 64)
		if err != nil {
			return nil, err
		}
		t.AddSymbolAt(string(parts[0]), label)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}
