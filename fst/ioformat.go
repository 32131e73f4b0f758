package fst

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"reflect"
	"syscall"
	"unsafe"

	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

// binaryMagic identifies a const-form FST file, per spec.md §6's 32-bit
// magic number requirement.
const binaryMagic uint32 = 0x7EB2B596

const binaryVersion uint32 = 1

// weightSlotSize is the fixed byte width reserved per encoded weight in a
// const-form file. Every semiring implemented in package weight marshals
// to 4 bytes or fewer; 8 leaves room without forcing a variable-length
// record, matching the teacher's fixed xqwEntry record size.
const weightSlotSize = 8

// constArcRecord is the plain-old-data wire shape of one Arc: labels and
// next-state as int64, and the arc's weight as a fixed byte run decoded
// through the semiring's UnmarshalBinary. It is the positional-arc analogue
// of the teacher's xqwEntry (hashed.go), which packs key/state/weight into
// one fixed-size struct reinterpreted via unsafe.Pointer/reflect.SliceHeader.
type constArcRecord struct {
	ILabel, OLabel int64
	NextState      int64
	WeightBytes    [weightSlotSize]byte
}

// constStateRecord is the plain-old-data wire shape of one state.
type constStateRecord struct {
	FinalBytes           [weightSlotSize]byte
	ArcStart, NumArcs    int32
	NumIEps, NumOEps     int32
}

type binaryHeader struct {
	FstType    string
	ArcType    string
	Version    uint32
	Flags      uint32
	Properties uint64
	Start      int64
	NumStates  int64
	NumArcs    int64
	HasISyms   bool
	HasOSyms   bool
}

func encodeWeightSlot(w weight.Weight) ([weightSlotSize]byte, error) {
	var slot [weightSlotSize]byte
	data, err := w.MarshalBinary()
	if err != nil {
		return slot, err
	}
	if len(data) > weightSlotSize {
		return slot, fmt.Errorf("fst: weight encoding of %d bytes exceeds slot size %d", len(data), weightSlotSize)
	}
	copy(slot[:], data)
	return slot, nil
}

// MappedFile is an open, read-only memory-mapped file, grounded directly
// on the teacher's MappedFile (hashed.go): ReadConstFst mmaps the file once
// and keeps the mapping in the returned ConstFst until Close is called;
// the ConstFst's arc/state arrays are decoded copies, not views into it.
type MappedFile struct {
	file *os.File
	data []byte
}

func openMappedFile(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(stat.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &MappedFile{file: f, data: data}, nil
}

func (m *MappedFile) Close() error {
	err1 := syscall.Munmap(m.data)
	err2 := m.file.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// WriteConstFst serializes f to path in the const binary format: magic,
// varint-length-prefixed gob header (with optional symbol tables), then
// the alignment-padded state and arc record arrays, following the
// teacher's WriteBinary layout.
func WriteConstFst(f *ConstFst, path string) (err error) {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	var magicBytes [4]byte
	binary.LittleEndian.PutUint32(magicBytes[:], binaryMagic)
	if _, err = w.Write(magicBytes[:]); err != nil {
		return err
	}

	var headerBuf bytes.Buffer
	enc := gob.NewEncoder(&headerBuf)
	h := binaryHeader{
		FstType:    f.Type(),
		ArcType:    f.sr.TypeName(),
		Version:    binaryVersion,
		Properties: uint64(f.props),
		Start:      int64(f.start),
		NumStates:  int64(len(f.states)),
		NumArcs:    int64(len(f.arcs)),
		HasISyms:   f.iSyms != nil,
		HasOSyms:   f.oSyms != nil,
	}
	if err = enc.Encode(h); err != nil {
		return err
	}
	if h.HasISyms {
		if err = enc.Encode(f.iSyms); err != nil {
			return err
		}
	}
	if h.HasOSyms {
		if err = enc.Encode(f.oSyms); err != nil {
			return err
		}
	}
	header := headerBuf.Bytes()

	lenBytes := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(lenBytes, uint64(len(header)))
	if _, err = w.Write(lenBytes[:n]); err != nil {
		return err
	}
	if _, err = w.Write(header); err != nil {
		return err
	}

	written, err := w.Seek(0, 1)
	if err != nil {
		return err
	}
	align := int64(unsafe.Alignof(constStateRecord{}))
	if pad := (align - written%align) % align; pad > 0 {
		if _, err = w.Write(make([]byte, pad)); err != nil {
			return err
		}
	}

	stateRecords := make([]constStateRecord, len(f.states))
	for i, s := range f.states {
		slot, werr := encodeWeightSlot(s.final)
		if werr != nil {
			return werr
		}
		stateRecords[i] = constStateRecord{
			FinalBytes: slot,
			ArcStart:   s.arcStart,
			NumArcs:    s.numArcs,
			NumIEps:    s.nIEps,
			NumOEps:    s.nOEps,
		}
	}
	if err = writePODSlice(w, stateRecords); err != nil {
		return err
	}

	arcRecords := make([]constArcRecord, len(f.arcs))
	for i, a := range f.arcs {
		slot, werr := encodeWeightSlot(a.Weight)
		if werr != nil {
			return werr
		}
		arcRecords[i] = constArcRecord{
			ILabel:      int64(a.ILabel),
			OLabel:      int64(a.OLabel),
			NextState:   int64(a.NextState),
			WeightBytes: slot,
		}
	}
	return writePODSlice(w, arcRecords)
}

// writePODSlice reinterprets a slice of fixed-size structs as raw bytes
// and writes them, the same unsafe.Pointer/reflect.SliceHeader technique
// as the teacher's WriteBinary.
func writePODSlice[T any](w *os.File, records []T) error {
	if len(records) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&records))
	var raw []byte
	rawHdr := (*reflect.SliceHeader)(unsafe.Pointer(&raw))
	rawHdr.Data = hdr.Data
	rawHdr.Len = int(uintptr(hdr.Len) * size)
	rawHdr.Cap = rawHdr.Len
	_, err := w.Write(raw)
	return err
}

// ReadConstFst mmaps path and parses it as a const-form binary file,
// mirroring the teacher's FromBinary/unsafeParseBinary pair: the mapping's
// bytes are reinterpreted without copying into the wire-format POD records
// (castPODSlice), but decoding those records into cf.states/cf.arcs (their
// weights need sr.UnmarshalBinary, not a raw reinterpret) does copy, so the
// mapping only needs to stay alive for the duration of this call, not for
// the returned ConstFst's lifetime. Close is still the caller's
// responsibility, matching the teacher's convention of explicit unmapping.
func ReadConstFst(path string, sr weight.Semiring) (*ConstFst, error) {
	m, err := openMappedFile(path)
	if err != nil {
		return nil, err
	}
	cf, err := unsafeParseConstFst(m.data, sr)
	if err != nil {
		m.Close()
		return nil, err
	}
	cf.mapping = m
	return cf, nil
}

func unsafeParseConstFst(raw []byte, sr weight.Semiring) (*ConstFst, error) {
	if len(raw) < 4 || binary.LittleEndian.Uint32(raw[:4]) != binaryMagic {
		return nil, errors.New("fst: not a const-form binary file")
	}
	read := uintptr(4)
	headerLen, n := binary.Uvarint(raw[read : read+binary.MaxVarintLen64])
	if n <= 0 {
		return nil, errors.New("fst: error reading header length")
	}
	read += uintptr(n)

	var h binaryHeader
	dec := gob.NewDecoder(bytes.NewReader(raw[read : read+uintptr(headerLen)]))
	if err := dec.Decode(&h); err != nil {
		return nil, err
	}
	var iSyms, oSyms *symtab.Table
	if h.HasISyms {
		if err := dec.Decode(&iSyms); err != nil {
			return nil, err
		}
	}
	if h.HasOSyms {
		if err := dec.Decode(&oSyms); err != nil {
			return nil, err
		}
	}
	read += uintptr(headerLen)

	align := unsafe.Alignof(constStateRecord{})
	read += (align - read%align) % align

	stateSize := unsafe.Sizeof(constStateRecord{})
	stateBytesLen := uintptr(h.NumStates) * stateSize
	if read+stateBytesLen > uintptr(len(raw)) {
		return nil, errors.New("fst: truncated state table")
	}
	stateRecords := make([]constStateRecord, h.NumStates)
	if h.NumStates > 0 {
		castPODSlice(raw[read:read+stateBytesLen], &stateRecords)
	}
	read += stateBytesLen

	arcSize := unsafe.Sizeof(constArcRecord{})
	arcBytesLen := uintptr(h.NumArcs) * arcSize
	if read+arcBytesLen > uintptr(len(raw)) {
		return nil, errors.New("fst: truncated arc table")
	}
	arcRecords := make([]constArcRecord, h.NumArcs)
	if h.NumArcs > 0 {
		castPODSlice(raw[read:read+arcBytesLen], &arcRecords)
	}

	cf := &ConstFst{
		start:  StateId(h.Start),
		states: make([]constState, h.NumStates),
		arcs:   make([]Arc, h.NumArcs),
		sr:     sr,
		iSyms:  iSyms,
		oSyms:  oSyms,
		props:  Properties(h.Properties),
	}
	for i, sRec := range stateRecords {
		finalW, _, err := sr.UnmarshalBinary(sRec.FinalBytes[:])
		if err != nil {
			return nil, err
		}
		cf.states[i] = constState{
			final:    finalW,
			arcStart: sRec.ArcStart,
			numArcs:  sRec.NumArcs,
			nIEps:    sRec.NumIEps,
			nOEps:    sRec.NumOEps,
		}
	}
	for i, aRec := range arcRecords {
		w, _, err := sr.UnmarshalBinary(aRec.WeightBytes[:])
		if err != nil {
			return nil, err
		}
		cf.arcs[i] = Arc{
			ILabel:    Label(aRec.ILabel),
			OLabel:    Label(aRec.OLabel),
			NextState: StateId(aRec.NextState),
			Weight:    w,
		}
	}
	return cf, nil
}

// castPODSlice reinterprets a raw byte run as a slice of fixed-size
// structs without copying, the read-side counterpart of writePODSlice.
func castPODSlice[T any](raw []byte, out *[]T) {
	var zero T
	size := unsafe.Sizeof(zero)
	rawHdr := (*reflect.SliceHeader)(unsafe.Pointer(&raw))
	outHdr := (*reflect.SliceHeader)(unsafe.Pointer(out))
	outHdr.Data = rawHdr.Data
	outHdr.Len = rawHdr.Len / int(size)
	outHdr.Cap = outHdr.Len
}
