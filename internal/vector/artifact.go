package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/docsense/docsense/internal/models"
)

// Artifact format: dimensions (4), count (4), then per chunk:
// idLen (4), id bytes, metaLen (4), metadata JSON, textLen (4), text bytes,
// vector (dimensions*4 bytes). All integers little-endian. The artifact is
// self-contained so an index can be reloaded without any other storage.

// SaveFile persists the index to path, creating parent directories as needed.
// The artifact is written to a temp file and renamed into place, so a reader
// loading concurrently sees either the previous artifact or the new one,
// never a partial write.
func (x *Index) SaveFile(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "index-*.tmp")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := x.writeTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

func (x *Index) writeTo(f *os.File) error {
	if err := binary.Write(f, binary.LittleEndian, uint32(x.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.chunks))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, ch := range x.chunks {
		meta, err := json.Marshal(ch.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		for _, blob := range [][]byte{[]byte(ch.ID), meta, []byte(ch.Text)} {
			if err := binary.Write(f, binary.LittleEndian, uint32(len(blob))); err != nil {
				return fmt.Errorf("write length: %w", err)
			}
			if _, err := f.Write(blob); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
		if _, err := f.Write(float32SliceToBytes(ch.Embedding)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// LoadFile reads an index artifact from path. Returns ErrIndexNotFound if the
// file does not exist and ErrDimensionMismatch if the artifact was built with
// a different dimension than expected.
func LoadFile(path string, dimensions int) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != dimensions {
		return nil, fmt.Errorf("%w: artifact has %d, expected %d", ErrDimensionMismatch, dim, dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}

	idx := &Index{dimensions: dimensions, chunks: make([]models.Chunk, 0, n)}
	vecBuf := make([]byte, dimensions*4)
	for i := uint32(0); i < n; i++ {
		id, err := readBlob(f)
		if err != nil {
			return nil, fmt.Errorf("read id: %w", err)
		}
		meta, err := readBlob(f)
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		text, err := readBlob(f)
		if err != nil {
			return nil, fmt.Errorf("read text: %w", err)
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return nil, fmt.Errorf("read vector: %w", err)
		}
		var chunkMeta models.ChunkMetadata
		if err := json.Unmarshal(meta, &chunkMeta); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		idx.chunks = append(idx.chunks, models.Chunk{
			ID:        string(id),
			Text:      string(text),
			Metadata:  chunkMeta,
			Embedding: bytesToFloat32Slice(vecBuf),
		})
	}
	return idx, nil
}

func readBlob(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	blob := make([]byte, n)
	if _, err := io.ReadFull(r, blob); err != nil {
		return nil, err
	}
	return blob, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
