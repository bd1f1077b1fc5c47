package validation

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eventetl/internal/errors"
	"eventetl/internal/shared/testutil"
)

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "input_data")
	require.NoError(t, os.WriteFile(file, []byte("a\tb\n"), 0644))

	tests := []struct {
		name     string
		path     string
		wantType apperrors.ErrorType
	}{
		{name: "readable file", path: file},
		{name: "missing file", path: filepath.Join(dir, "missing"), wantType: apperrors.ErrTypeNotFound},
		{name: "directory", path: dir, wantType: apperrors.ErrTypeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			err := NewFileValidator(logger).ValidateFile(tt.path)
			if tt.wantType == "" {
				require.NoError(t, err)
				testutil.AssertNoErrors(t, handler)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			assert.NotEmpty(t, handler.GetRecords())
		})
	}
}

func TestValidateFile_Unreadable(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	file := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0000))

	err := NewFileValidator(nil).ValidateFile(file)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIO))
}

func TestValidateExcelFile(t *testing.T) {
	dir := t.TempDir()
	workbook := filepath.Join(dir, "events.xlsx")
	lockFile := filepath.Join(dir, "~$events.xlsx")
	text := filepath.Join(dir, "events.tsv")
	for _, p := range []string{workbook, lockFile, text} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	v := NewFileValidator(nil)
	assert.NoError(t, v.ValidateExcelFile(workbook))
	assert.True(t, apperrors.IsType(v.ValidateExcelFile(lockFile), apperrors.ErrTypeValidation))
	assert.True(t, apperrors.IsType(v.ValidateExcelFile(text), apperrors.ErrTypeValidation))
	assert.True(t, apperrors.IsType(v.ValidateExcelFile(filepath.Join(dir, "nope.xlsx")), apperrors.ErrTypeNotFound))
}
