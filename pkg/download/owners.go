package download

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/BaeKey/smartedu/internal/logger"
	pkgerrors "github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/fsutil"
)

// OwnersFile records which document each file in a download directory was
// fetched for.
const OwnersFile = ".smartedu-files.yaml"

type owners struct {
	Files map[string]string `yaml:"files"`
}

// loadOwners reads the record of dir. A missing or unreadable record is empty.
func loadOwners(dir string) owners {
	o := owners{Files: map[string]string{}}
	data, err := os.ReadFile(filepath.Join(dir, OwnersFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Could not read download record", logger.Fields{"dir": dir, "error": err.Error()})
		}
		return o
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		logger.Warn("Ignoring corrupt download record", logger.Fields{"dir": dir, "error": err.Error()})
		return owners{Files: map[string]string{}}
	}
	if o.Files == nil {
		o.Files = map[string]string{}
	}
	return o
}

// save writes the record atomically.
func (o owners) save(dir string) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return pkgerrors.Wrap(err, "could not encode download record")
	}
	tmp, err := os.CreateTemp(dir, ".owners-*.tmp")
	if err != nil {
		return pkgerrors.Wrap(err, "could not create download record")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return pkgerrors.Wrap(err, "could not write download record")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return pkgerrors.Wrap(err, "could not write download record")
	}
	if err := fsutil.Move(tmpPath, filepath.Join(dir, OwnersFile)); err != nil {
		_ = os.Remove(tmpPath)
		return pkgerrors.Wrap(err, "could not save download record")
	}
	return nil
}
