package vectorstore

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github/itish2003/meetassist/models"
)

const (
	IndexFile    = "index.bin"
	MetadataFile = "metadata.json"

	indexMagic   = "MRVI"
	indexVersion = uint32(1)
	headerSize   = 4 + 4 + 4 + 8 // magic, version, dim, count
)

var errNoIndex = errors.New("no persisted index")

func load(dir string) ([]float32, []models.ChunkRecord, int, error) {
	indexPath := filepath.Join(dir, IndexFile)
	metaPath := filepath.Join(dir, MetadataFile)

	raw, indexErr := os.ReadFile(indexPath)
	metaRaw, metaErr := os.ReadFile(metaPath)
	switch {
	case errors.Is(indexErr, os.ErrNotExist) && errors.Is(metaErr, os.ErrNotExist):
		return nil, nil, 0, errNoIndex
	case errors.Is(indexErr, os.ErrNotExist):
		return nil, nil, 0, fmt.Errorf("%w: %s exists without %s", ErrDesynchronized, MetadataFile, IndexFile)
	case errors.Is(metaErr, os.ErrNotExist):
		return nil, nil, 0, fmt.Errorf("%w: %s exists without %s", ErrDesynchronized, IndexFile, MetadataFile)
	case indexErr != nil:
		return nil, nil, 0, fmt.Errorf("failed to read %s: %w", indexPath, indexErr)
	case metaErr != nil:
		return nil, nil, 0, fmt.Errorf("failed to read %s: %w", metaPath, metaErr)
	}

	vectors, dim, count, err := decodeIndex(raw)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to decode %s: %w", indexPath, err)
	}
	var meta []models.ChunkRecord
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to decode %s: %w", metaPath, err)
	}
	if len(meta) != count {
		return nil, nil, 0, fmt.Errorf("%w: %d vectors but %d metadata records", ErrDesynchronized, count, len(meta))
	}
	return vectors, meta, dim, nil
}

// save writes both files to temporaries and renames them into place.
func save(dir string, dim int, vectors []float32, meta []models.ChunkRecord) error {
	metaRaw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	indexTmp, err := writeTemp(dir, IndexFile, encodeIndex(dim, vectors))
	if err != nil {
		return err
	}
	metaTmp, err := writeTemp(dir, MetadataFile, metaRaw)
	if err != nil {
		os.Remove(indexTmp)
		return err
	}

	if err := os.Rename(indexTmp, filepath.Join(dir, IndexFile)); err != nil {
		os.Remove(indexTmp)
		os.Remove(metaTmp)
		return fmt.Errorf("failed to replace %s: %w", IndexFile, err)
	}
	if err := os.Rename(metaTmp, filepath.Join(dir, MetadataFile)); err != nil {
		os.Remove(metaTmp)
		return fmt.Errorf("failed to replace %s: %w", MetadataFile, err)
	}
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	return f.Name(), nil
}

func encodeIndex(dim int, vectors []float32) []byte {
	count := 0
	if dim > 0 {
		count = len(vectors) / dim
	}
	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(vectors)*4))
	buf.WriteString(indexMagic)

	var header [4 + 4 + 8]byte
	binary.LittleEndian.PutUint32(header[0:4], indexVersion)
	binary.LittleEndian.PutUint32(header[4:8], uint32(dim))
	binary.LittleEndian.PutUint64(header[8:16], uint64(count))
	buf.Write(header[:])

	var word [4]byte
	for _, v := range vectors {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
		buf.Write(word[:])
	}
	return buf.Bytes()
}

func decodeIndex(raw []byte) ([]float32, int, int, error) {
	if len(raw) < headerSize || string(raw[:4]) != indexMagic {
		return nil, 0, 0, fmt.Errorf("not an index file")
	}
	if v := binary.LittleEndian.Uint32(raw[4:8]); v != indexVersion {
		return nil, 0, 0, fmt.Errorf("unsupported index version %d", v)
	}
	dim := int(binary.LittleEndian.Uint32(raw[8:12]))
	count := int(binary.LittleEndian.Uint64(raw[12:20]))

	body := raw[headerSize:]
	if dim <= 0 || len(body) != dim*count*4 {
		return nil, 0, 0, fmt.Errorf("index body is %d bytes, header says %d x %d floats", len(body), count, dim)
	}
	vectors := make([]float32, dim*count)
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4 : i*4+4]))
	}
	return vectors, dim, count, nil
}
