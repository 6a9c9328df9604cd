package rewards

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gobandit/domain/core"
	"gobandit/domain/reward"
	"gobandit/internal"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

func quietReader() *FileReader {
	return NewFileReader(internal.NewLogger(internal.LogLevelOff))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []reward.Row
	}{
		{"with header", "arm0,arm1\n1,0\n0,1\n", []reward.Row{{1, 0}, {0, 1}}},
		{"without header", "0.5, 0.25\n1,1\n", []reward.Row{{0.5, 0.25}, {1, 1}}},
		{"blank lines and trailing comma", "1,0,\n\n0,1\n", []reward.Row{{1, 0}, {0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "rwd_seq.csv", tt.content)
			seq, err := quietReader().Load(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, "rwd_seq", seq.Name)
			assert.Equal(t, tt.expected, seq.Rows)
		})
	}
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"empty", "", core.ErrEmptySequence},
		{"header only", "arm0,arm1\n", core.ErrEmptySequence},
		{"three columns", "1,0,1\n", core.ErrMalformedRow},
		{"single column", "1\n", core.ErrMalformedRow},
		{"text in body", "1,0\nx,1\n", core.ErrMalformedRow},
		{"nan cell", "NaN,1\n", core.ErrMalformedRow},
		{"inf after header", "arm0,arm1\n1,0\n0,+Inf\n", core.ErrMalformedRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", tt.content)
			_, err := quietReader().Load(context.Background(), path)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shift.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"arm0", "arm1"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, 0}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{0, 1}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	seq, err := quietReader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "shift", seq.Name)
	assert.Equal(t, []reward.Row{{1, 0}, {0, 1}}, seq.Rows)
}

func writeNPY(t *testing.T, name string, val interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, npyio.Write(f, val))
	require.NoError(t, f.Close())
	return path
}

func TestLoadNPY(t *testing.T) {
	path := writeNPY(t, "rwd_seq_example_01.npy", mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		0.5, 1,
	}))

	seq, err := quietReader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "rwd_seq_example_01", seq.Name)
	assert.Equal(t, []reward.Row{{1, 0}, {0, 1}, {0.5, 1}}, seq.Rows)
}

func TestLoadNPYErrors(t *testing.T) {
	tests := []struct {
		name   string
		val    interface{}
		target error
	}{
		{"one dimensional", []float64{1, 0, 0, 1}, core.ErrMalformedRow},
		{"three arms", mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0}), core.ErrMalformedRow},
		{"nan reward", mat.NewDense(2, 2, []float64{1, 0, math.NaN(), 1}), core.ErrMalformedRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeNPY(t, "bad.npy", tt.val)
			_, err := quietReader().Load(context.Background(), path)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	path := writeFile(t, "garbage.npy", "not a numpy file")
	_, err := quietReader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoadUnsupportedAndMissing(t *testing.T) {
	path := writeFile(t, "rewards.json", "[[1,0]]")
	_, err := quietReader().Load(context.Background(), path)
	assert.Error(t, err)

	_, err = quietReader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestLoadHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietReader().Load(ctx, "irrelevant.csv")
	assert.ErrorIs(t, err, context.Canceled)
}
