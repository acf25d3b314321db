package propsheet

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillfield/propsheet/propsheet/smartsheet"
)

type attachRecorder struct {
	mu       sync.Mutex
	paths    []string
	names    []string
	types    []string
	bodies   []string
	failNext bool
}

func (a *attachRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()

		if a.failNext {
			a.failNext = false
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"errorCode": 4000, "message": "boom", "refId": "x"}`))
			return
		}

		body, _ := io.ReadAll(r.Body)
		a.paths = append(a.paths, r.URL.Path)
		a.names = append(a.names, r.Header.Get("Content-Disposition"))
		a.types = append(a.types, r.Header.Get("Content-Type"))
		a.bodies = append(a.bodies, string(body))
		_, _ = w.Write([]byte(`{"resultCode": 0, "message": "SUCCESS", "result": {"id": 900, "name": "file.xlsx"}}`))
	})
}

func writeOutputFile(t *testing.T, outputDir string, address string, name string, content string) {
	t.Helper()
	dir := filepath.Join(outputDir, address)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestPublisher_PublishAll(t *testing.T) {
	recorder := &attachRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	outputDir := t.TempDir()
	writeOutputFile(t, outputDir, "12 Elm St", "12 Elm St.xlsx", "elm")
	writeOutputFile(t, outputDir, "5 Oak Ave", "5 Oak Ave.xlsx", "oak")
	// Stale folder from an earlier batch without a row id this time round.
	writeOutputFile(t, outputDir, "9 Birch Rd", "9 Birch Rd.xlsx", "birch")

	client := smartsheet.NewClient("test-token", server.URL, server.Client())
	p := NewPublisher(client, 42, outputDir)

	err := p.PublishAll(context.Background(), map[string]int64{
		"12 Elm St": 101,
		"5 Oak Ave": 102,
	})
	require.NoError(t, err)

	// Directories are visited in lexical order.
	assert.Equal(t, []string{
		"/sheets/42/rows/101/attachments",
		"/sheets/42/rows/102/attachments",
	}, recorder.paths)
	assert.Equal(t, []string{"elm", "oak"}, recorder.bodies)
	assert.Equal(t, `attachment; filename="12 Elm St.xlsx"`, recorder.names[0])
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", recorder.types[0])
}

func TestPublisher_PublishAllSkipsLockAndTempFiles(t *testing.T) {
	recorder := &attachRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	outputDir := t.TempDir()
	writeOutputFile(t, outputDir, "12 Elm St", "~$12 Elm St.xlsx", "lock")
	writeOutputFile(t, outputDir, "12 Elm St", "12 Elm St.xlsx.tmp", "tmp")
	writeOutputFile(t, outputDir, "12 Elm St", "12 Elm St.xlsx", "real")
	writeOutputFile(t, outputDir, "5 Oak Ave", "notes.txt", "text")

	client := smartsheet.NewClient("test-token", server.URL, server.Client())
	p := NewPublisher(client, 42, outputDir)

	err := p.PublishAll(context.Background(), map[string]int64{
		"12 Elm St": 101,
		"5 Oak Ave": 102,
	})
	require.NoError(t, err)

	// The Oak Ave folder has no workbook at all and is skipped entirely.
	assert.Equal(t, []string{"/sheets/42/rows/101/attachments"}, recorder.paths)
	assert.Equal(t, []string{"real"}, recorder.bodies)
}

func TestPublisher_PublishAllContinuesAfterFailure(t *testing.T) {
	recorder := &attachRecorder{failNext: true}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	outputDir := t.TempDir()
	writeOutputFile(t, outputDir, "12 Elm St", "12 Elm St.xlsx", "elm")
	writeOutputFile(t, outputDir, "5 Oak Ave", "5 Oak Ave.xlsx", "oak")

	client := smartsheet.NewClient("test-token", server.URL, server.Client())
	p := NewPublisher(client, 42, outputDir)

	err := p.PublishAll(context.Background(), map[string]int64{
		"12 Elm St": 101,
		"5 Oak Ave": 102,
	})
	require.NoError(t, err)

	// The first upload fails, the second still happens.
	assert.Equal(t, []string{"oak"}, recorder.bodies)
}

func TestPublisher_PublishAllNoOutputDir(t *testing.T) {
	client := smartsheet.NewClient("test-token", "http://localhost:0", nil)
	p := NewPublisher(client, 42, filepath.Join(t.TempDir(), "missing"))

	require.NoError(t, p.PublishAll(context.Background(), map[string]int64{"12 Elm St": 101}))
}
