package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormodhaugland/pv/internal/discover"
	"github.com/tormodhaugland/pv/internal/previewtree"
)

func testResult() *discover.Result {
	return &discover.Result{
		Previews: []previewtree.Preview{
			{Group: "email/Welcome", Items: []string{"Default", "Dark"}},
			{Group: "email/Reset", Items: []string{"Default"}},
		},
		Sources: []discover.Source{
			{Group: "email/Welcome", Path: "/p/email/Welcome.tsx", Language: "tsx", Exports: []discover.Export{
				{Name: "Default", Line: 3, EndLine: 5},
				{Name: "Dark", Line: 7, EndLine: 9},
			}},
		},
	}
}

func TestBuildRouteRecordsTree(t *testing.T) {
	records := buildRouteRecords(testResult(), "/", false, "", nil)
	require.Len(t, records, 6)

	assert.Equal(t, "email", records[0].Path)
	assert.Equal(t, "folder", records[0].Kind)
	assert.Equal(t, "email/Welcome", records[1].Path)
	assert.Equal(t, "/p/email/Welcome.tsx", records[1].File)

	dark := records[3]
	assert.Equal(t, "leaf", dark.Kind)
	assert.Equal(t, 2, dark.Depth)
	assert.Equal(t, "email/Welcome", dark.Group)
	assert.Equal(t, "Dark", dark.Item)
	assert.Equal(t, 7, dark.Line)
	assert.Equal(t, "/p/email/Welcome.tsx:7", sourceLabel(dark))

	assert.Equal(t, "-", sourceLabel(records[5]))
	assert.Equal(t, "    Dark", routeLabel(dark, false))
}

func TestBuildRouteRecordsCollapseAndLeaves(t *testing.T) {
	records := buildRouteRecords(testResult(), "/", false, "", []string{"email/Welcome", "missing/Group"})
	require.Len(t, records, 4)
	assert.True(t, records[1].Collapsed)
	assert.Equal(t, "  Welcome (collapsed)", routeLabel(records[1], false))

	// collapse has no effect on the leaves-only listing
	records = buildRouteRecords(testResult(), "/", true, "", []string{"email"})
	require.Len(t, records, 3)
	assert.Equal(t, "email/Reset/Default", routeLabel(records[2], true))
}

func TestBuildRouteRecordsFilter(t *testing.T) {
	records := buildRouteRecords(testResult(), "/", true, "dark", nil)
	require.Len(t, records, 1)
	assert.Equal(t, "Dark", records[0].Item)
	assert.Equal(t, 0, records[0].Index)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}
