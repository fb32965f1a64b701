package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Read loads a whole manifest into memory, one record per line, in file
// order. Any line that is not a well-formed JSON object fails the read with a
// ParseError naming the file and line.
func Read(path string) ([]*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open manifest")
	}
	defer file.Close()

	var records []*Record
	reader := bufio.NewReader(file)
	line := 0
	for {
		raw, readErr := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(raw)) > 0 {
			line++
			rec := NewRecord()
			if err := rec.UnmarshalJSON(bytes.TrimSpace(raw)); err != nil {
				return nil, &ParseError{File: path, Line: line, Err: err}
			}
			records = append(records, rec)
		} else if len(raw) > 0 {
			line++
			return nil, &ParseError{File: path, Line: line, Err: errors.New("blank line")}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, errors.Wrapf(readErr, "unable to read manifest %s", path)
		}
	}

	return records, nil
}

// Write persists records to path, one compact JSON object per line with a
// trailing newline. The data goes to a temporary file in the destination
// directory first and is renamed into place only once fully written, so a
// failed write never leaves a partial manifest behind.
func Write(path string, records []*Record) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "unable to create manifest directory")
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	file, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "unable to create manifest")
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmpPath)
		}
	}()

	writer := bufio.NewWriter(file)
	for i, rec := range records {
		data, mErr := rec.MarshalJSON()
		if mErr != nil {
			return errors.Wrapf(mErr, "unable to encode record %d", i)
		}
		if _, wErr := writer.Write(data); wErr != nil {
			return errors.Wrap(wErr, "unable to write manifest")
		}
		if wErr := writer.WriteByte('\n'); wErr != nil {
			return errors.Wrap(wErr, "unable to write manifest")
		}
	}
	if err = writer.Flush(); err != nil {
		return errors.Wrap(err, "unable to flush manifest")
	}
	if err = file.Close(); err != nil {
		return errors.Wrap(err, "unable to close manifest")
	}
	if err = os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "unable to move manifest into place")
	}

	return nil
}
