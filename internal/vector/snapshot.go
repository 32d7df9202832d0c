package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Snapshot layout: a binary vectors file at path (magic, dimensions, count,
// then per entry: idLen, id bytes, dimensions*4 vector bytes) and a metadata
// record at path+".meta.json". The pair is written together via temp files
// and renames; on load, a snapshot without matching metadata (or with a count
// mismatch) is treated as corrupt and the index starts empty.

const snapshotMagic = uint32(0x44535658) // "DSVX"

type snapshotMeta struct {
	DocumentCount int       `json:"document_count"`
	Dimensions    int       `json:"dimensions"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MetaPath returns the metadata file path for a snapshot path.
func MetaPath(path string) string {
	return path + ".meta.json"
}

// Save persists the index contents and metadata to path. Directory is created
// if needed. Both files are written to temp files first and renamed, so a
// crash mid-save leaves the previous snapshot intact.
func (x *Index) Save(path string) error {
	if path == "" {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := x.checkConsistent(); err != nil {
		return fmt.Errorf("refusing to persist: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := x.writeSnapshot(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot file: %w", err)
	}

	meta := snapshotMeta{
		DocumentCount: len(x.ids),
		Dimensions:    x.dimensions,
		UpdatedAt:     x.updatedAt,
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}
	metaTmp := MetaPath(path) + ".tmp"
	if err := os.WriteFile(metaTmp, metaBytes, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write snapshot metadata: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		os.Remove(metaTmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	if err := os.Rename(metaTmp, MetaPath(path)); err != nil {
		os.Remove(metaTmp)
		return fmt.Errorf("rename snapshot metadata: %w", err)
	}
	return nil
}

func (x *Index) writeSnapshot(f *os.File) error {
	if err := binary.Write(f, binary.LittleEndian, snapshotMagic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(x.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range x.ids {
		idBytes := []byte(id)
		if err := binary.Write(f, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := f.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(x.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load restores the index from the snapshot at path, replacing the in-memory
// contents. Returns (false, nil) when no snapshot exists. A snapshot whose
// metadata is missing or disagrees with the vector data is treated as corrupt:
// the index is left empty and an error is returned, pending a full reindex.
func (x *Index) Load(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	metaBytes, err := os.ReadFile(MetaPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read snapshot metadata: %w", err)
	}
	var meta snapshotMeta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return false, fmt.Errorf("parse snapshot metadata: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("snapshot metadata present but vector data missing")
		}
		return false, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	ids, vectors, err := x.readSnapshot(f)
	if err != nil {
		return false, err
	}
	if meta.DocumentCount != len(ids) || meta.Dimensions != x.dimensions {
		return false, fmt.Errorf("snapshot metadata mismatch: meta count=%d dims=%d, data count=%d dims=%d",
			meta.DocumentCount, meta.Dimensions, len(ids), x.dimensions)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = ids
	x.vectors = vectors
	x.updatedAt = meta.UpdatedAt
	if err := x.checkConsistent(); err != nil {
		x.ids = x.ids[:0]
		x.vectors = x.vectors[:0]
		return false, err
	}
	return true, nil
}

func (x *Index) readSnapshot(f *os.File) ([]string, [][]float32, error) {
	var magic, dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &magic); err != nil {
		return nil, nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != snapshotMagic {
		return nil, nil, fmt.Errorf("not a vector snapshot (magic %08x)", magic)
	}
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, nil, fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != x.dimensions {
		return nil, nil, fmt.Errorf("%w: snapshot has %d, index expects %d", ErrDimensionMismatch, dim, x.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, nil, fmt.Errorf("read count: %w", err)
	}
	ids := make([]string, 0, n)
	vectors := make([][]float32, 0, n)
	buf := make([]byte, x.dimensions*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
			return nil, nil, fmt.Errorf("read id len: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(f, idBytes); err != nil {
			return nil, nil, fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, nil, fmt.Errorf("read vector: %w", err)
		}
		ids = append(ids, string(idBytes))
		vectors = append(vectors, bytesToFloat32Slice(buf))
	}
	return ids, vectors, nil
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
