package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Load reads and parses the dataset file at path. Every loaded record has
// its identifier field stamped from its key. Keys must be canonical decimal
// identifiers ("7", not "07" or "+7").
func Load(path string) (Dataset, error) {
	ds, _, err := load(path)
	return ds, err
}

// load returns the dataset along with the hash of the bytes it was parsed from.
func load(path string) (Dataset, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, path, err)
	}
	sum := sha256.Sum256(data)

	var raw map[string]Record
	if err := DecodeJSON(data, &raw); err != nil {
		return nil, "", fmt.Errorf("%w: parsing %s: %v", ErrStorageUnavailable, path, err)
	}

	ds := make(Dataset, len(raw))
	for key, record := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 || idKey(id) != key {
			return nil, "", fmt.Errorf("%w: parsing %s: key %q is not an identifier", ErrStorageUnavailable, path, key)
		}
		ds.put(id, record)
	}
	return ds, hex.EncodeToString(sum[:]), nil
}

// Save writes the dataset to path atomically.
// Uses temp file + rename so readers never observe a partial write.
func Save(path string, ds Dataset, indent bool) error {
	if ds == nil {
		ds = Dataset{}
	}

	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(ds, "", "  ")
	} else {
		data, err = json.Marshal(ds)
	}
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrStorageUnavailable, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: writing temp file: %v", ErrStorageUnavailable, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: syncing temp file: %v", ErrStorageUnavailable, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %v", ErrStorageUnavailable, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("%w: setting permissions: %v", ErrStorageUnavailable, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: renaming temp file: %v", ErrStorageUnavailable, err)
	}

	success = true
	return nil
}

// Init creates an empty dataset file at path, including parent directories.
// It reports whether a file was created; an existing file is left untouched.
func Init(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("creating directory: %w", err)
	}
	if err := Save(path, Dataset{}, false); err != nil {
		return false, err
	}
	return true, nil
}

// ComputeFileHash computes a SHA256 hash of the dataset file's contents.
func ComputeFileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
