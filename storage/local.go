// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/pii-obfuscator/obfuscator/location"
)

// Local reads and writes files on the local filesystem. The location's container and key are rejoined into the
// original path, and a leading ~ is expanded to the user's home directory.
type Local struct{}

func (Local) Fetch(_ context.Context, loc location.Location) ([]byte, error) {
	p, err := localPath(loc)
	if err != nil {
		return nil, StorageError{Op: "fetch", Location: loc, Err: err}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, StorageError{Op: "fetch", Location: loc, Err: classifyLocal(err)}
	}
	return data, nil
}

// Store writes data to a temporary file beside the destination and renames it into place, so a failed write never
// leaves a partial file behind. Missing parent directories are created.
func (Local) Store(_ context.Context, loc location.Location, data []byte) error {
	p, err := localPath(loc)
	if err != nil {
		return StorageError{Op: "store", Location: loc, Err: err}
	}
	if err := writeFile(p, data); err != nil {
		return StorageError{Op: "store", Location: loc, Err: classifyLocal(err)}
	}
	return nil
}

func localPath(loc location.Location) (string, error) {
	return homedir.Expand(filepath.FromSlash(loc.Path()))
}

func writeFile(p string, data []byte) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func classifyLocal(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return kind(ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return kind(ErrAccess, err)
	default:
		return err
	}
}
