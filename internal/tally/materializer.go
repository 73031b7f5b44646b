package tally

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Files the materializer writes into an ephemeral working directory.
const (
	QuestionsFile  = "questions.json"
	PlaintextsFile = "plaintexts_json"
)

const tempDirPattern = "tallypipe-tally-"

// ExtractionError indicates a tally archive could not be read or
// extracted.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract tally %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ConfigParseError indicates an election configuration document was
// malformed.
type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("parse election config %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// FromArchive extracts the tar archive at path (plain or gzip
// compressed, sniffed) into a fresh temporary directory and returns a
// working context owning that directory. On failure the partial
// directory is removed before returning.
func FromArchive(path string) (*Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	var src io.Reader = f
	magic := make([]byte, 2)
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: err}
		}
		defer gz.Close()
		src = gz
	}

	dir, err := os.MkdirTemp("", tempDirPattern)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	if err := extractTar(src, dir); err != nil {
		os.RemoveAll(dir)
		return nil, &ExtractionError{Path: path, Err: err}
	}

	return NewContext(dir), nil
}

func extractTar(src io.Reader, dir string) error {
	tr := tar.NewReader(src)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := securePath(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// symlinks and other special entries have no place in a
			// tally archive
			return fmt.Errorf("unsupported entry type %d for %s", hdr.Typeflag, hdr.Name)
		}
	}
}

// securePath joins name under dir, rejecting entries that would escape
// the extraction directory.
func securePath(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.Clean(name))
	if target != dir && !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes extraction dir: %s", name)
	}
	return target, nil
}

// FromElectionConfig synthesizes an ephemeral working directory from an
// election configuration document: a tally with the correct structural
// shape but zero recorded ballots. The document must be JSON with a
// questions array. Each question gets a uniquely named subdirectory
// containing an empty plaintexts placeholder.
func FromElectionConfig(path string) (*Context, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigParseError{Path: path, Err: err}
	}

	var doc struct {
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ConfigParseError{Path: path, Err: err}
	}
	if doc.Questions == nil {
		return nil, &ConfigParseError{Path: path, Err: fmt.Errorf("missing questions array")}
	}

	dir, err := os.MkdirTemp("", tempDirPattern)
	if err != nil {
		return nil, err
	}

	if err := writeEphemeral(dir, doc.Questions); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return NewContext(dir), nil
}

func writeEphemeral(dir string, questions []json.RawMessage) error {
	serialized, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, QuestionsFile), serialized, 0o644); err != nil {
		return err
	}

	for i := range questions {
		qdir := filepath.Join(dir, fmt.Sprintf("%d-%s", i, uuid.NewString()))
		if err := os.Mkdir(qdir, 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(qdir, PlaintextsFile), nil, 0o644); err != nil {
			return err
		}
	}
	return nil
}
