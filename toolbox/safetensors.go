package toolbox

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

type SafeTensorInfo struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets []int  `json:"data_offsets"`
}

func WriteSafeTensors(w io.Writer, tensors map[string]*AF32) error {
	header := map[string]SafeTensorInfo{}
	dataOffset := 0

	keys := []string{}
	for k := range tensors {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		begin := dataOffset
		dataOffset += len(tensors[k].V) * 4
		end := dataOffset

		header[k] = SafeTensorInfo{
			DType:       "F32",
			Shape:       tensors[k].Shape,
			DataOffsets: []int{begin, end},
		}
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerBytes))); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(headerBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	for _, k := range keys {
		if err := binary.Write(w, binary.LittleEndian, tensors[k].V); err != nil {
			return fmt.Errorf("while writing %s values: %w", k, err)
		}
	}

	return nil
}

func ReadSafeTensors(r io.ReaderAt) (map[string]*AF32, error) {
	var lenBytes [8]byte
	if _, err := r.ReadAt(lenBytes[:], 0); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	headerLen := binary.LittleEndian.Uint64(lenBytes[:])

	headerBytes := make([]byte, int(headerLen))
	if _, err := r.ReadAt(headerBytes, 8); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}

	header := map[string]SafeTensorInfo{}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}

	tensors := map[string]*AF32{}
	for k, hdr := range header {
		if k == "__metadata__" {
			continue
		}
		if hdr.DType != "F32" {
			return nil, fmt.Errorf("unsupported dtype %s", hdr.DType)
		}
		if len(hdr.Shape) > 4 {
			return nil, fmt.Errorf("unsupported shape %v", hdr.Shape)
		}
		if len(hdr.DataOffsets) != 2 {
			return nil, fmt.Errorf("bad data offsets %v for %s", hdr.DataOffsets, k)
		}

		size := 1
		for _, s := range hdr.Shape {
			if s < 1 {
				return nil, fmt.Errorf("bad shape %v", hdr.Shape)
			}
			size *= s
		}
		if hdr.DataOffsets[1]-hdr.DataOffsets[0] != size*4 {
			return nil, fmt.Errorf("data offsets %v disagree with shape %v for %s", hdr.DataOffsets, hdr.Shape, k)
		}

		valBytes := make([]byte, size*4)
		if _, err := r.ReadAt(valBytes, 8+int64(headerLen)+int64(hdr.DataOffsets[0])); err != nil {
			return nil, fmt.Errorf("while reading bytes for %s: %w", k, err)
		}

		tensor := MakeAF32(hdr.Shape...)
		if _, err := binary.Decode(valBytes, binary.LittleEndian, tensor.V); err != nil {
			return nil, fmt.Errorf("while decoding %s values: %w", k, err)
		}
		tensors[k] = tensor
	}

	return tensors, nil
}
