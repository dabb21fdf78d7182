// Package file holds the small filesystem helpers shared by the daemon:
// atomic gob persistence for the storage spill files and appending for the
// log writer.
package file

import (
	"encoding/gob"
	"os"
	"path/filepath"
)

// Serialize gob-encodes data into a temporary file and renames it over
// path, so readers never observe a partial write.
func Serialize(path string, data interface{}) error {
	tf, err := os.CreateTemp("", filepath.Base(path))
	if err != nil {
		return err
	}

	e := gob.NewEncoder(tf)
	err = e.Encode(data)
	if err != nil {
		_ = tf.Close()
		return err
	}

	err = tf.Sync()
	if err != nil {
		_ = tf.Close()
		return err
	}
	_ = tf.Close()

	err = os.Rename(tf.Name(), path)
	if err != nil {
		return err
	}

	return nil
}

func Unserialize(path string, data interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := gob.NewDecoder(f)
	err = d.Decode(data)
	if err != nil {
		return err
	}

	return nil
}

// Append appends data to the file at path, creating it if needed.
func Append(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
