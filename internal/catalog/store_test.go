// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/darus-fetch/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, root
}

func sampleRecord(id, slug string, at time.Time) types.DatasetRecord {
	return types.DatasetRecord{
		Identifier: id,
		Title:      "Title of " + slug,
		Slug:       slug,
		Folder:     filepath.Join("/data", slug),
		Files: []types.FileRecord{
			{FileID: 1, Path: "sub/a.csv", Size: 100, MD5: "m1"},
			{FileID: 2, Path: "b.txt", Size: 24},
		},
		FetchedAt: at,
	}
}

func TestOpenCreatesDatabase(t *testing.T) {
	s, root := testStore(t)
	assert.Equal(t, filepath.Join(root, ".darus", "catalog.db"), s.Path())
	assert.FileExists(t, s.Path())

	// Reopening an existing catalog keeps the schema.
	s2, err := Open(root)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestRecordRequiresRun(t *testing.T) {
	s, _ := testStore(t)
	err := s.Record(context.Background(), sampleRecord("doi:1", "one", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run started")
}

func TestDeferredOpensOnFirstRecord(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	d := &Deferred{DataRoot: root, DataverseURL: "https://example.org/", Authenticated: true}
	assert.NoDirExists(t, root)
	require.NoError(t, d.Close())
	assert.NoDirExists(t, root)

	ctx := context.Background()
	require.NoError(t, d.Record(ctx, sampleRecord("doi:1", "one", time.Now())))
	require.NoError(t, d.Record(ctx, sampleRecord("doi:2", "two", time.Now())))
	require.NoError(t, d.Close())
	assert.FileExists(t, Path(root))

	s, err := Open(root)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].RunID, entries[1].RunID)
}

func TestRecordAndList(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	runID, err := s.StartRun(ctx, "https://darus.example.org/", true)
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	older := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	newer := older.Add(time.Hour)
	require.NoError(t, s.Record(ctx, sampleRecord("doi:1", "one", older)))
	require.NoError(t, s.Record(ctx, sampleRecord("doi:2", "two", newer)))

	entries, err := s.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "doi:2", entries[0].Identifier, "newest first")

	want := Entry{
		RunID:         runID,
		FileCount:     2,
		TotalBytes:    124,
		DatasetRecord: sampleRecord("doi:1", "one", older),
	}
	if diff := cmp.Diff(want, entries[1]); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	withoutFiles, err := s.List(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, withoutFiles[0].Files)
}

func TestRecordReplacesEarlierDownload(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	_, err := s.StartRun(ctx, "https://darus.example.org/", false)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, sampleRecord("doi:1", "one", time.Now())))

	secondRun, err := s.StartRun(ctx, "https://darus.example.org/", false)
	require.NoError(t, err)
	rec := sampleRecord("doi:1", "one", time.Now())
	rec.Files = rec.Files[:1]
	require.NoError(t, s.Record(ctx, rec))

	entries, err := s.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, secondRun, entries[0].RunID)
	assert.Equal(t, 1, entries[0].FileCount)
	assert.Len(t, entries[0].Files, 1)
}

func TestWrite(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	entries := []Entry{{RunID: "r1", FileCount: 2, TotalBytes: 2048, DatasetRecord: sampleRecord("doi:1", "one", at)}}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, entries, FormatTable))
		assert.Contains(t, buf.String(), "IDENTIFIER")
		assert.Contains(t, buf.String(), "doi:1")
		assert.Contains(t, buf.String(), "2.0 KiB")
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, nil, ""))
		assert.Equal(t, "No datasets downloaded yet.\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, entries, FormatJSON))
		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "doi:1", got[0]["identifier"])
		assert.Equal(t, "r1", got[0]["run_id"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, entries, FormatYAML))
		var got []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "one", got[0]["slug"])
		assert.Equal(t, 2, got[0]["file_count"])
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Write(&bytes.Buffer{}, entries, "xml"))
	})
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.5 KiB", humanBytes(1536))
	assert.Equal(t, "3.0 MiB", humanBytes(3*1024*1024))
}
