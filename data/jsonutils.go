package data

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path"
	"syscall"

	"github.com/alardizabal/ud851-Sunshine/config"
)

func getPath(filename string) string {
	if path.IsAbs(filename) {
		return filename
	}
	return path.Join(config.GetDataDir(), filename)
}

// JsonReadSharedLock decodes filename under a shared flock. An empty file
// decodes to the zero value.
func JsonReadSharedLock[T any](filename string) (*T, error) {
	file, err := os.OpenFile(getPath(filename), os.O_RDONLY, 0666)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err = syscall.Flock(int(file.Fd()), syscall.LOCK_SH); err != nil {
		return nil, err
	}
	defer func() { _ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN) }()

	var data T
	if err = json.NewDecoder(file).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &data, nil
}

// JsonUpdateExclusiveLock reads filename (creating it if needed), applies
// update and rewrites the file, all under an exclusive flock.
func JsonUpdateExclusiveLock[T any](filename string, update func(data *T) error) error {
	file, err := os.OpenFile(getPath(filename), os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	if err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		return err
	}
	defer func() { _ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN) }()

	var data T
	if err = json.NewDecoder(file).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if err = update(&data); err != nil {
		return err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err = json.NewEncoder(file).Encode(data); err != nil {
		return err
	}

	// truncate whatever is left of a longer previous document
	pos, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	return file.Truncate(pos)
}
