package restart

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/resvsim/schedule-sim/sim/simerr"
)

// ArrayType is the 4-character element type tag of a record.
type ArrayType string

const (
	TypeInte ArrayType = "INTE"
	TypeReal ArrayType = "REAL"
	TypeDoub ArrayType = "DOUB"
	TypeChar ArrayType = "CHAR"
)

// Elements per data record.
const (
	numBlock  = 1000
	charBlock = 105
	charWidth = 8
)

// headerLen is the size of the keyword, count and type record.
const headerLen = 16

// Array is one named restart array. Exactly one payload matches Type.
type Array struct {
	Keyword string
	Type    ArrayType
	Ints    []int32
	Reals   []float32
	Doubs   []float64
	Chars   []string
}

// Typed constructors.

func IntArray(kw string, v []int32) Array { return Array{Keyword: kw, Type: TypeInte, Ints: v} }

func RealArray(kw string, v []float32) Array { return Array{Keyword: kw, Type: TypeReal, Reals: v} }

func DoubArray(kw string, v []float64) Array { return Array{Keyword: kw, Type: TypeDoub, Doubs: v} }

func CharArray(kw string, v []string) Array { return Array{Keyword: kw, Type: TypeChar, Chars: v} }

// Len returns the element count.
func (a Array) Len() int {
	switch a.Type {
	case TypeInte:
		return len(a.Ints)
	case TypeReal:
		return len(a.Reals)
	case TypeDoub:
		return len(a.Doubs)
	default:
		return len(a.Chars)
	}
}

func (a Array) elemSize() int {
	switch a.Type {
	case TypeDoub, TypeChar:
		return 8
	default:
		return 4
	}
}

func (a Array) blockSize() int {
	if a.Type == TypeChar {
		return charBlock
	}
	return numBlock
}

// Encode writes arrays as big-endian Fortran-unformatted records: a 16-byte
// header record (keyword, count, type) followed by data records.
func Encode(w io.Writer, arrays []Array) error {
	bw := bufio.NewWriter(w)
	for _, a := range arrays {
		if err := encodeArray(bw, a); err != nil {
			return fmt.Errorf("encode %s: %w", a.Keyword, err)
		}
	}
	return bw.Flush()
}

// EncodeBytes is Encode into a byte slice.
func EncodeBytes(arrays []Array) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, arrays); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRecord(w io.Writer, payload []byte) error {
	n := uint32(len(payload))
	if err := binary.Write(w, binary.BigEndian, n); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, n)
}

func encodeArray(w io.Writer, a Array) error {
	if len(a.Keyword) > 8 {
		return fmt.Errorf("keyword longer than 8 characters: %w", simerr.ErrInvalidArgument)
	}
	head := make([]byte, headerLen)
	copy(head[0:8], pad8(a.Keyword))
	binary.BigEndian.PutUint32(head[8:12], uint32(a.Len()))
	copy(head[12:16], string(a.Type))
	if err := writeRecord(w, head); err != nil {
		return err
	}
	size, block := a.elemSize(), a.blockSize()
	for lo := 0; lo < a.Len(); lo += block {
		hi := min(lo+block, a.Len())
		payload := make([]byte, (hi-lo)*size)
		for i := lo; i < hi; i++ {
			dst := payload[(i-lo)*size:]
			switch a.Type {
			case TypeInte:
				binary.BigEndian.PutUint32(dst, uint32(a.Ints[i]))
			case TypeReal:
				binary.BigEndian.PutUint32(dst, math.Float32bits(a.Reals[i]))
			case TypeDoub:
				binary.BigEndian.PutUint64(dst, math.Float64bits(a.Doubs[i]))
			case TypeChar:
				copy(dst[:charWidth], pad8(a.Chars[i]))
			default:
				return fmt.Errorf("array type %q: %w", a.Type, simerr.ErrInvalidArgument)
			}
		}
		if err := writeRecord(w, payload); err != nil {
			return err
		}
	}
	return nil
}

// readRecord reads one marker-framed record of at most maxLen bytes.
func readRecord(r io.Reader, maxLen int) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if int64(n) > int64(maxLen) {
		return nil, fmt.Errorf("record of %d bytes exceeds %d: %w", n, maxLen, simerr.ErrInvalidArgument)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("record body: %w", err)
	}
	var tail uint32
	if err := binary.Read(r, binary.BigEndian, &tail); err != nil {
		return nil, fmt.Errorf("record trailer: %w", err)
	}
	if tail != n {
		return nil, fmt.Errorf("record markers %d/%d differ: %w", n, tail, simerr.ErrInvalidArgument)
	}
	return payload, nil
}

// Decode reads arrays written by Encode until EOF.
func Decode(r io.Reader) ([]Array, error) {
	br := bufio.NewReader(r)
	var out []Array
	for {
		head, err := readRecord(br, headerLen)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(head) != headerLen {
			return nil, fmt.Errorf("array header of %d bytes: %w", len(head), simerr.ErrInvalidArgument)
		}
		a := Array{
			Keyword: strings.TrimRight(string(head[0:8]), " "),
			Type:    ArrayType(head[12:16]),
		}
		count := int(binary.BigEndian.Uint32(head[8:12]))
		if err := decodeData(br, &a, count); err != nil {
			return nil, fmt.Errorf("decode %s: %w", a.Keyword, err)
		}
		out = append(out, a)
	}
}

// DecodeBytes is Decode from a byte slice.
func DecodeBytes(b []byte) ([]Array, error) {
	return Decode(bytes.NewReader(b))
}

// decodeData reads count elements of a.Type. The count comes from the blob,
// so preallocation is capped at one block and records grow the slice.
func decodeData(r io.Reader, a *Array, count int) error {
	switch a.Type {
	case TypeInte, TypeReal, TypeDoub, TypeChar:
	default:
		return fmt.Errorf("array type %q: %w", a.Type, simerr.ErrInvalidArgument)
	}
	size, block := a.elemSize(), a.blockSize()
	prealloc := min(count, block)
	switch a.Type {
	case TypeInte:
		a.Ints = make([]int32, 0, prealloc)
	case TypeReal:
		a.Reals = make([]float32, 0, prealloc)
	case TypeDoub:
		a.Doubs = make([]float64, 0, prealloc)
	case TypeChar:
		a.Chars = make([]string, 0, prealloc)
	}
	for read := 0; read < count; {
		payload, err := readRecord(r, block*size)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		n := len(payload) / size
		if len(payload)%size != 0 || n == 0 || n > block || read+n > count {
			return fmt.Errorf("data record of %d bytes: %w", len(payload), simerr.ErrInvalidArgument)
		}
		for i := 0; i < n; i++ {
			src := payload[i*size:]
			switch a.Type {
			case TypeInte:
				a.Ints = append(a.Ints, int32(binary.BigEndian.Uint32(src)))
			case TypeReal:
				a.Reals = append(a.Reals, math.Float32frombits(binary.BigEndian.Uint32(src)))
			case TypeDoub:
				a.Doubs = append(a.Doubs, math.Float64frombits(binary.BigEndian.Uint64(src)))
			case TypeChar:
				a.Chars = append(a.Chars, string(src[:charWidth]))
			}
		}
		read += n
	}
	return nil
}

// Find returns the first array named kw.
func Find(arrays []Array, kw string) (Array, error) {
	for _, a := range arrays {
		if a.Keyword == kw {
			return a, nil
		}
	}
	return Array{}, fmt.Errorf("restart array %s: %w", kw, simerr.ErrNotFound)
}
