// Package serialization reads and writes model state dictionaries in a
// small self-describing binary container.
//
// Layout (all integers little-endian):
//
//	magic   [8]byte  "MESHCONV"
//	version uint32
//	count   uint32
//	entries, sorted by name:
//	  nameLen uint32, name []byte
//	  dtype   uint8
//	  ndim    uint32, dims []int64
//	  data    []byte (dtype size * product of dims)
package serialization

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

const formatVersion uint32 = 1

var magic = [8]byte{'M', 'E', 'S', 'H', 'C', 'O', 'N', 'V'}

// Sanity bounds against corrupt headers; all real model tensors sit far
// below either limit.
const (
	maxNameLen  = 1 << 16
	maxRank     = 8
	maxElements = 1 << 32
)

// WriteStateDict serializes a state dictionary to w. Entries are written
// in sorted name order so the output is deterministic.
func WriteStateDict(w io.Writer, stateDict map[string]*tensor.RawTensor) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(magic[:]); err != nil {
		return fmt.Errorf("failed to write magic: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, formatVersion); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(stateDict))); err != nil {
		return fmt.Errorf("failed to write entry count: %w", err)
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := stateDict[name]
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(name))); err != nil {
			return fmt.Errorf("failed to write name length for %q: %w", name, err)
		}
		if _, err := bw.WriteString(name); err != nil {
			return fmt.Errorf("failed to write name %q: %w", name, err)
		}
		if err := bw.WriteByte(byte(raw.DType())); err != nil {
			return fmt.Errorf("failed to write dtype for %q: %w", name, err)
		}
		shape := raw.Shape()
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(shape))); err != nil {
			return fmt.Errorf("failed to write rank for %q: %w", name, err)
		}
		for _, dim := range shape {
			if err := binary.Write(bw, binary.LittleEndian, int64(dim)); err != nil {
				return fmt.Errorf("failed to write shape for %q: %w", name, err)
			}
		}
		if _, err := bw.Write(raw.Data()); err != nil {
			return fmt.Errorf("failed to write data for %q: %w", name, err)
		}
	}

	return bw.Flush()
}

// ReadStateDict parses a state dictionary from r.
func ReadStateDict(r io.Reader) (map[string]*tensor.RawTensor, error) {
	br := bufio.NewReader(r)

	var gotMagic [8]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("invalid magic %q, not a state dict file", gotMagic)
	}

	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d (expected %d)", version, formatVersion)
	}

	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read entry count: %w", err)
	}

	stateDict := make(map[string]*tensor.RawTensor, count)
	for i := uint32(0); i < count; i++ {
		var nameLen uint32
		if err := binary.Read(br, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("failed to read name length of entry %d: %w", i, err)
		}
		if nameLen == 0 || nameLen > maxNameLen {
			return nil, fmt.Errorf("implausible name length %d in entry %d", nameLen, i)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(br, nameBytes); err != nil {
			return nil, fmt.Errorf("failed to read name of entry %d: %w", i, err)
		}
		name := string(nameBytes)

		dtypeByte, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read dtype of %q: %w", name, err)
		}
		dtype := tensor.DataType(dtypeByte)
		if dtype < tensor.Float32 || dtype > tensor.Bool {
			return nil, fmt.Errorf("unknown dtype %d for %q", dtypeByte, name)
		}

		var ndim uint32
		if err := binary.Read(br, binary.LittleEndian, &ndim); err != nil {
			return nil, fmt.Errorf("failed to read rank of %q: %w", name, err)
		}
		if ndim > maxRank {
			return nil, fmt.Errorf("implausible rank %d for %q", ndim, name)
		}
		shape := make(tensor.Shape, ndim)
		elements := int64(1)
		for d := range shape {
			var dim int64
			if err := binary.Read(br, binary.LittleEndian, &dim); err != nil {
				return nil, fmt.Errorf("failed to read shape of %q: %w", name, err)
			}
			if dim <= 0 {
				return nil, fmt.Errorf("invalid dimension %d in shape of %q", dim, name)
			}
			if dim > maxElements/elements {
				return nil, fmt.Errorf("implausible element count in shape of %q", name)
			}
			elements *= dim
			shape[d] = int(dim)
		}

		raw, err := tensor.NewRaw(shape, dtype, tensor.CPU)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate %q: %w", name, err)
		}
		if _, err := io.ReadFull(br, raw.Data()); err != nil {
			return nil, fmt.Errorf("failed to read data of %q: %w", name, err)
		}
		if _, exists := stateDict[name]; exists {
			return nil, fmt.Errorf("duplicate entry %q", name)
		}
		stateDict[name] = raw
	}

	return stateDict, nil
}

// SaveFile writes a state dictionary to path.
func SaveFile(path string, stateDict map[string]*tensor.RawTensor) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteStateDict(f, stateDict); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a state dictionary from path.
func LoadFile(path string) (map[string]*tensor.RawTensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadStateDict(f)
}
