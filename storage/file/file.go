// Package filedb serves grade records from a YAML or JSON export of the portal tables.
package filedb

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	inmemdb "github.com/trezcool/alama/storage/database/inmem"
)

// Load reads a dataset. Files ending in .json are decoded as JSON, anything else as YAML.
func Load(path string) (inmemdb.Dataset, error) {
	var ds inmemdb.Dataset
	raw, err := os.ReadFile(path)
	if err != nil {
		return ds, errors.Wrap(err, "reading dataset")
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err = dec.Decode(&ds); err != nil {
			return ds, errors.Wrapf(err, "decoding %s", filepath.Base(path))
		}
		return ds, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err = dec.Decode(&ds); err != nil {
		return ds, errors.Wrapf(err, "decoding %s", filepath.Base(path))
	}
	return ds, nil
}

// Open loads the dataset into an in-memory source.
func Open(path string) (*inmemdb.DB, error) {
	ds, err := Load(path)
	if err != nil {
		return nil, err
	}
	return inmemdb.Open(ds), nil
}
