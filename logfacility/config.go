package logfacility

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"
)

// LevelEntry is one row of a persisted or snapshotted level table.
type LevelEntry struct {
	Name  string
	Level Level
}

const binaryConfigMagic uint32 = 1

// SnapshotLevels captures every registered logger's current level as a
// sorted list, suitable for WriteBinaryConfig/WriteTextConfig.
func (f *Facility) SnapshotLevels() []LevelEntry {
	f.frontMu.Lock()
	defer f.frontMu.Unlock()
	out := make([]LevelEntry, len(f.loggers))
	for i, l := range f.loggers {
		out[i] = LevelEntry{Name: l.name, Level: l.Level()}
	}
	return out
}

// RestoreLevels applies entries to the matching registered loggers by
// name. Names with no matching registered logger are returned in
// unknown, in encounter order; any entry whose name does match has its
// logger's level set. Entries for names not present leave that logger's
// level untouched.
func (f *Facility) RestoreLevels(entries []LevelEntry) (unknown []string) {
	f.frontMu.Lock()
	loggers := f.loggers
	f.frontMu.Unlock()

	for _, e := range entries {
		idx := sort.Search(len(loggers), func(i int) bool { return loggers[i].name >= e.Name })
		if idx < len(loggers) && loggers[idx].name == e.Name {
			loggers[idx].SetLevel(e.Level)
		} else {
			unknown = append(unknown, e.Name)
		}
	}
	return unknown
}

// WriteBinaryConfig writes entries in the little-endian wire format from
// §6: a uint32 magic-version, a uint64 entry count, then for each entry a
// uint32 length-prefixed UTF-8 name followed by a uint8 level code.
func WriteBinaryConfig(w io.Writer, entries []LevelEntry) error {
	if err := binary.Write(w, binary.LittleEndian, binaryConfigMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		name := []byte(e.Name)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(name))); err != nil {
			return err
		}
		if _, err := w.Write(name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(e.Level)); err != nil {
			return err
		}
	}
	return nil
}

// ReadBinaryConfig reads the format written by WriteBinaryConfig. A bad
// magic number or a level code out of range surfaces as ErrInvalidFormat;
// a truncated stream returns the underlying read error (io.EOF or
// io.ErrUnexpectedEOF).
func ReadBinaryConfig(r io.Reader) ([]LevelEntry, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if magic != binaryConfigMagic {
		return nil, ErrInvalidFormat
	}

	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	entries := make([]LevelEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, err
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, err
		}
		var levelCode uint8
		if err := binary.Read(r, binary.LittleEndian, &levelCode); err != nil {
			return nil, err
		}
		if Level(levelCode) > LevelNothing {
			return nil, ErrInvalidFormat
		}
		entries = append(entries, LevelEntry{Name: string(nameBytes), Level: Level(levelCode)})
	}
	return entries, nil
}

// WriteTextConfig writes entries as "<name> : <level-word>" lines, one
// per entry, preceded by a single header comment.
func WriteTextConfig(w io.Writer, entries []LevelEntry) error {
	if _, err := io.WriteString(w, "# logfacility level configuration\n"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s : %s\n", e.Name, e.Level.String()); err != nil {
			return err
		}
	}
	return nil
}

// ReadTextConfig reads the format written by WriteTextConfig. Blank lines
// and lines beginning with '#' (after trimming leading whitespace) are
// ignored. Every other line must be "<name> : <level-word>"; a line
// missing the separator, or naming a level-word that is not one of
// debug/info/warning/error/fatal/nothing, aborts the read with
// ErrInvalidFormat.
func ReadTextConfig(r io.Reader) ([]LevelEntry, error) {
	var entries []LevelEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			return nil, ErrInvalidFormat
		}

		name := strings.TrimSpace(line[:idx])
		word := strings.TrimSpace(line[idx+1:])
		if name == "" || word == "" {
			return nil, ErrInvalidFormat
		}

		level, ok := ParseLevel(word)
		if !ok {
			return nil, ErrInvalidFormat
		}

		entries = append(entries, LevelEntry{Name: name, Level: level})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
