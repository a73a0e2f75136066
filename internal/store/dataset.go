package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-scout/internal/model"
)

// Format is a dataset file format.
type Format string

// Supported formats. Only CSV and XLSX can be read back.
const (
	FormatCSV       Format = "csv"
	FormatXLSX      Format = "xlsx"
	FormatGeoJSON   Format = "geojson"
	FormatShapefile Format = "shp"
)

// Formats lists every writable format.
func Formats() []Format {
	return []Format{FormatCSV, FormatXLSX, FormatGeoJSON, FormatShapefile}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".shp":
		return FormatShapefile, nil
	default:
		return "", eris.Errorf("store: unsupported file type %q", filepath.Ext(path))
	}
}

// Load reads a dataset file, choosing the parser from the extension.
func Load(ctx context.Context, path string, schema *model.Schema) (*model.Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var ds *model.Dataset
	switch format {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "store: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		ds, err = ReadCSV(ctx, f, schema)
		if err != nil {
			return nil, eris.Wrapf(err, "store: load %s", path)
		}
	case FormatXLSX:
		ds, err = ReadXLSX(path, schema)
		if err != nil {
			return nil, eris.Wrapf(err, "store: load %s", path)
		}
	default:
		return nil, eris.Errorf("store: %s files are export-only", format)
	}

	zap.L().Debug("store: dataset loaded",
		zap.String("path", path),
		zap.String("schema", schema.Name),
		zap.Int("records", ds.Len()),
	)
	return ds, nil
}

// Save writes a dataset to path, choosing the encoder from the extension.
// Parent directories are created as needed.
func Save(path string, ds *model.Dataset) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "store: create %s", dir)
		}
	}

	switch format {
	case FormatXLSX:
		err = WriteXLSX(path, ds)
	case FormatShapefile:
		err = WriteShapefile(path, ds)
	default:
		err = writeFile(path, ds, format)
	}
	if err != nil {
		return err
	}

	zap.L().Info("store: dataset saved",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("records", ds.Len()),
	)
	return nil
}

func writeFile(path string, ds *model.Dataset, format Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "store: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "store: close %s", path)
		}
	}()

	if format == FormatGeoJSON {
		return WriteGeoJSON(f, ds)
	}
	return WriteCSV(f, ds)
}
