package rewards

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gobandit/domain/core"
	"gobandit/domain/reward"
	"gobandit/internal"

	"github.com/sbinet/npyio"
	"github.com/xuri/excelize/v2"
)

// FileReader loads reward sequences from CSV, XLSX or NumPy .npy files.
// Each data row holds exactly one reward per arm; an optional non-numeric header row is skipped.
// An .npy file must hold a (T, 2) array.
type FileReader struct {
	logger *internal.Logger
}

// NewFileReader creates a reader that logs through logger (DefaultLogger when nil)
func NewFileReader(logger *internal.Logger) *FileReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FileReader{logger: logger.Named("rewards")}
}

// Load reads the file at path, choosing the format by extension
func (r *FileReader) Load(ctx context.Context, path string) (*reward.Sequence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reward file not found: %s: %w", path, err)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".npy":
		rows, err = readNPY(path)
	default:
		return nil, fmt.Errorf("unsupported reward file type: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	parsed, err := parseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	seq, err := reward.NewSequence(name, parsed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r.logger.Info("loaded %s (%d rounds) in %.2fms", name, seq.Len(), float64(time.Since(start).Nanoseconds())/1e6)
	return seq, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// readXLSX reads the first sheet of the workbook
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrEmptySequence
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// readNPY reads a two-dimensional numeric array and renders it as cells, so that
// every format shares the validation in parseRows
func readNPY(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open npy file: %w", err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read npy header: %w", err)
	}

	shape := r.Header.Descr.Shape
	if len(shape) != 2 || shape[1] != core.NumArms {
		return nil, fmt.Errorf("%w: npy array has shape %v, want (T, %d)", core.ErrMalformedRow, shape, core.NumArms)
	}

	data, err := readNPYValues(r)
	if err != nil {
		return nil, err
	}

	nrows, ncols := shape[0], shape[1]
	if len(data) != nrows*ncols {
		return nil, fmt.Errorf("npy payload has %d values, header promises %d", len(data), nrows*ncols)
	}

	rows := make([][]string, nrows)
	for i := range rows {
		rows[i] = make([]string, ncols)
		for j := range rows[i] {
			idx := i*ncols + j
			if r.Header.Descr.Fortran {
				idx = j*nrows + i
			}
			rows[i][j] = strconv.FormatFloat(data[idx], 'g', -1, 64)
		}
	}
	return rows, nil
}

// readNPYValues decodes the payload as float64 whatever numeric dtype was saved
func readNPYValues(r *npyio.Reader) ([]float64, error) {
	dtype := strings.TrimLeft(r.Header.Descr.Type, "<>|=")

	var out []float64
	switch dtype {
	case "f8":
		if err := r.Read(&out); err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
		return out, nil
	case "f4":
		var v []float32
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
		for _, x := range v {
			out = append(out, float64(x))
		}
	case "i8":
		var v []int64
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
		for _, x := range v {
			out = append(out, float64(x))
		}
	case "i4":
		var v []int32
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
		for _, x := range v {
			out = append(out, float64(x))
		}
	case "u1":
		var v []uint8
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
		for _, x := range v {
			out = append(out, float64(x))
		}
	case "b1":
		var v []bool
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
		for _, x := range v {
			if x {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", r.Header.Descr.Type)
	}
	return out, nil
}

// parseRows converts raw cells into reward rows. Row numbers in errors are 1-based file rows.
func parseRows(rows [][]string) ([]reward.Row, error) {
	out := make([]reward.Row, 0, len(rows))
	for i, raw := range rows {
		cells := trimCells(raw)
		if len(cells) == 0 {
			continue
		}
		if len(cells) != core.NumArms {
			return nil, core.NewMalformedRowError(i+1, fmt.Sprintf("expected %d values, got %d", core.NumArms, len(cells)))
		}

		var row reward.Row
		numeric := true
		for a, cell := range cells {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric = false
				break
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewMalformedRowError(i+1, fmt.Sprintf("non-finite value %q", cell))
			}
			row[a] = v
		}
		if !numeric {
			if i == 0 {
				continue // header
			}
			return nil, core.NewMalformedRowError(i+1, fmt.Sprintf("non-numeric value in %v", cells))
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, core.ErrEmptySequence
	}
	return out, nil
}

// trimCells trims whitespace and drops trailing empty cells
func trimCells(raw []string) []string {
	cells := make([]string, len(raw))
	for i, c := range raw {
		cells[i] = strings.TrimSpace(c)
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
