package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillroute/internal/pathgen"
	"github.com/abhisek/skillroute/internal/paths"
)

func TestReadResumeFile(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "resume.TXT")
	require.NoError(t, os.WriteFile(txt, []byte("Go, SQL, 5 years"), 0o644))

	got, err := readResumeFile(txt)
	require.NoError(t, err)
	assert.Equal(t, "Go, SQL, 5 years", got)

	pdf := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o644))
	_, err = readResumeFile(pdf)
	assert.ErrorIs(t, err, errResumeFileType)
	assert.Equal(t, "Invalid file type. Please upload a .txt file.", err.Error())

	_, err = readResumeFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestConfirmer(t *testing.T) {
	tests := []struct {
		name  string
		yes   bool
		input string
		want  bool
	}{
		{"flag skips prompt", true, "", true},
		{"y", false, "y\n", true},
		{"yes mixed case", false, "  YeS \n", true},
		{"no", false, "n\n", false},
		{"empty line", false, "\n", false},
		{"eof", false, "", false},
		{"no newline", false, "y", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := confirmer(tt.yes, strings.NewReader(tt.input), &out)
			assert.Equal(t, tt.want, c.Confirm("Delete?"))
			if tt.yes {
				assert.Empty(t, out.String())
			} else {
				assert.Equal(t, "Delete? [y/N] ", out.String())
			}
		})
	}
}

func TestDescribeGenerationError(t *testing.T) {
	gerr := &pathgen.Error{Kind: pathgen.ConfigMissing, Message: "no key", Title: pathgen.TitleConfigMissing}
	err := describeGenerationError(gerr)
	assert.Equal(t, "Error: API Key Missing: no key", err.Error())
	assert.True(t, errors.Is(err, gerr))

	err = describeGenerationError(paths.ErrEmptyPath)
	assert.True(t, strings.HasPrefix(err.Error(), pathgen.TitleInsufficient+": "))
	assert.ErrorIs(t, err, paths.ErrEmptyPath)

	err = describeGenerationError(&paths.RejectedError{Message: "too vague"})
	assert.Equal(t, pathgen.TitleInsufficient+": too vague", err.Error())

	plain := errors.New("disk full")
	assert.Equal(t, plain, describeGenerationError(plain))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0042", formatCost(0.0042))
	assert.Equal(t, "$1.50", formatCost(1.5))
	assert.Equal(t, "gemini", truncate("gemini-2.5-flash", 6))
	assert.Equal(t, "gpt", truncate("gpt", 6))
}
