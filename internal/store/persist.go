package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/behzad94/showcase-1/internal/domain"
)

// Artifact layout: index.bin holds the raw vectors, manifest.json the chunk
// records plus a checksum of the vector payload. Both live under one
// directory and are written via temp-file + rename so readers never see a
// torn artifact; a mismatched pair is detected at load time.
const (
	IndexFile    = "index.bin"
	ManifestFile = "manifest.json"

	indexMagic   = uint32(0x52414731) // "RAG1"
	indexVersion = uint16(1)
)

type manifestFile struct {
	Version       int            `json:"version"`
	Dim           int            `json:"dim"`
	EmbedModel    string         `json:"embed_model"`
	IndexChecksum string         `json:"index_checksum"`
	Chunks        []domain.Chunk `json:"chunks"`
}

// Save persists the current index and manifest atomically. Each artifact is
// written to a temp file in the same directory and renamed into place.
func (s *Store) Save() error {
	s.mu.RLock()
	vectors := s.vectors
	manifest := s.manifest
	s.mu.RUnlock()

	return s.persist(vectors, manifest)
}

// Commit validates and persists a new index+manifest pair, then swaps it in.
// The serving index changes only after both artifacts are renamed into
// place, so a failed persist leaves queries answering from the previous
// pair, consistent with what is on disk.
func (s *Store) Commit(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return domain.ErrChunkVectorMismatch
	}
	for _, v := range vectors {
		if len(v) != s.dim {
			return domain.ErrDimensionMismatch
		}
	}

	newVectors := make([][]float32, len(vectors))
	copy(newVectors, vectors)
	newManifest := make([]domain.Chunk, len(chunks))
	copy(newManifest, chunks)

	if err := s.persist(newVectors, newManifest); err != nil {
		return err
	}

	s.mu.Lock()
	s.vectors = newVectors
	s.manifest = newManifest
	s.mu.Unlock()
	return nil
}

func (s *Store) persist(vectors [][]float32, manifest []domain.Chunk) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	payload := encodeVectors(vectors, s.dim)

	man := manifestFile{
		Version:       int(indexVersion),
		Dim:           s.dim,
		EmbedModel:    s.modelName,
		IndexChecksum: checksum(payload),
		Chunks:        manifest,
	}
	manBytes, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	header := make([]byte, 14)
	binary.LittleEndian.PutUint32(header[0:], indexMagic)
	binary.LittleEndian.PutUint16(header[4:], indexVersion)
	binary.LittleEndian.PutUint32(header[6:], uint32(s.dim))
	binary.LittleEndian.PutUint32(header[10:], uint32(len(vectors)))

	if err := writeAtomic(filepath.Join(s.dir, IndexFile), append(header, payload...)); err != nil {
		return fmt.Errorf("failed to write index artifact: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dir, ManifestFile), manBytes); err != nil {
		return fmt.Errorf("failed to write manifest artifact: %w", err)
	}
	return nil
}

// Load replaces the in-memory contents with the persisted pair. A missing
// artifact, a version/dimension mismatch, or a checksum/row-count mismatch
// between index and manifest is a CORRUPT_INDEX error; the previous
// in-memory contents are left untouched in that case.
func (s *Store) Load() error {
	indexBytes, err := os.ReadFile(filepath.Join(s.dir, IndexFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrIndexArtifactsMissing
		}
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptIndex, "failed to read index artifact", err)
	}
	manBytes, err := os.ReadFile(filepath.Join(s.dir, ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrIndexArtifactsMissing
		}
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptIndex, "failed to read manifest artifact", err)
	}

	if len(indexBytes) < 14 {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptIndex, "index artifact truncated", nil)
	}
	if binary.LittleEndian.Uint32(indexBytes[0:]) != indexMagic {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptIndex, "index artifact has wrong magic", nil)
	}
	if binary.LittleEndian.Uint16(indexBytes[4:]) != indexVersion {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptIndex, "unsupported index artifact version", nil)
	}
	dim := int(binary.LittleEndian.Uint32(indexBytes[6:]))
	count := int(binary.LittleEndian.Uint32(indexBytes[10:]))
	payload := indexBytes[14:]

	if dim != s.dim {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptIndex,
			fmt.Sprintf("index dimension %d does not match configured dimension %d", dim, s.dim), nil)
	}
	if len(payload) != count*dim*4 {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptIndex, "index payload length does not match header", nil)
	}

	var man manifestFile
	if err := json.Unmarshal(manBytes, &man); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptIndex, "failed to parse manifest", err)
	}
	if man.Dim != dim || len(man.Chunks) != count {
		return domain.ErrIndexManifestMismatch
	}
	if man.IndexChecksum != checksum(payload) {
		return domain.ErrIndexManifestMismatch
	}

	vectors := decodeVectors(payload, dim, count)

	s.mu.Lock()
	s.vectors = vectors
	s.manifest = man.Chunks
	s.modelName = man.EmbedModel
	s.mu.Unlock()
	return nil
}

// encodeVectors packs rows as a little-endian sequence of IEEE 754 float32
// values, row-major.
func encodeVectors(vectors [][]float32, dim int) []byte {
	b := make([]byte, len(vectors)*dim*4)
	off := 0
	for _, row := range vectors {
		for _, v := range row {
			binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
			off += 4
		}
	}
	return b
}

func decodeVectors(b []byte, dim, count int) [][]float32 {
	vectors := make([][]float32, count)
	off := 0
	for i := 0; i < count; i++ {
		row := make([]float32, dim)
		for j := 0; j < dim; j++ {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
			off += 4
		}
		vectors[i] = row
	}
	return vectors
}

func checksum(payload []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(payload)
	return fmt.Sprintf("%016x", h.Sum64())
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
