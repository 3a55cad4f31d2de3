package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statView struct {
	Path string `json:"path" yaml:"path"`
	Size int    `json:"size" yaml:"size"`
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, []statView{{Path: "/a", Size: 1}, {Path: "/b", Size: 2}}))

	assert.Contains(t, buf.String(), `"path": "/a"`)
	assert.Contains(t, buf.String(), `"size": 2`)
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, []statView{{Path: "/a", Size: 1}}))

	assert.Equal(t, "- path: /a\n  size: 1\n", buf.String())
}
