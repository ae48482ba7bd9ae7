package har

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sensorBody = `{"ok":{"sensor":[{"value":"0.012"},{"value":"25.0"},{"value":"A"},{"value":"3"}]}}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testArchive() Archive {
	return Archive{Log: Log{
		Version: "1.2",
		Creator: Creator{Name: "test", Version: "1"},
		Pages: []Page{
			{ID: "page_1", Title: "device"},
			{ID: "page_4", Title: "bench"},
		},
		Entries: []Entry{
			{
				PageRef:  "page_1",
				Request:  Request{Method: "GET", URL: "http://device/login"},
				Response: Response{Status: 200, Content: Content{MimeType: "text/html", Text: "<html></html>"}},
			},
			{
				PageRef:  "page_4",
				Request:  Request{Method: "GET", URL: "http://device/sensor"},
				Response: Response{Status: 200, Content: Content{MimeType: "application/json", Text: sensorBody}},
			},
			{
				PageRef: "page_4",
				Request: Request{Method: "GET", URL: "http://device/sensor"},
				Response: Response{Status: 200, Content: Content{
					MimeType: "application/json",
					Text:     base64.StdEncoding.EncodeToString([]byte(sensorBody)),
					Encoding: "base64",
				}},
			},
		},
	}}
}

func writeArchive(t *testing.T, a Archive) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, a))
	path := filepath.Join(t.TempDir(), "capture.har")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestLoader_Extract_AllPages(t *testing.T) {
	path := writeArchive(t, testArchive())

	entries, err := NewLoader(path, "", discardLogger()).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 0, entries[0].Index)
	assert.Equal(t, "page_1", entries[0].PageRef)
	assert.Equal(t, "<html></html>", entries[0].Body)
	assert.Equal(t, "http://device/sensor", entries[1].URL)
	assert.Equal(t, "GET", entries[1].Method)
	assert.Equal(t, 200, entries[1].Status)
	assert.Equal(t, "application/json", entries[1].MimeType)
	assert.Equal(t, sensorBody, entries[1].Body)
	assert.Equal(t, sensorBody, entries[2].Body, "base64 body decoded")
}

func TestLoader_Extract_PageFilter(t *testing.T) {
	path := writeArchive(t, testArchive())

	entries, err := NewLoader(path, "page_4", discardLogger()).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Index)
	assert.Equal(t, 2, entries[1].Index)
}

func TestLoader_Extract_UnknownPage(t *testing.T) {
	path := writeArchive(t, testArchive())

	_, err := NewLoader(path, "page_9", discardLogger()).Extract(context.Background())
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestLoader_Extract_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.har"), "", discardLogger()).Extract(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Extract_Malformed(t *testing.T) {
	cases := map[string]string{
		"truncated": `{"log":{"entries":[`,
		"not json":  `exp_data`,
		"no log":    `{"entries":[]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.har")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			_, err := NewLoader(path, "", discardLogger()).Extract(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestLoader_Extract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader("unused.har", "", discardLogger()).Extract(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRawEntries_BadBase64KeepsText(t *testing.T) {
	a := Archive{Log: Log{Version: "1.2", Entries: []Entry{
		{Response: Response{Content: Content{Text: "%%%not-base64", Encoding: "base64"}}},
	}}}

	entries, err := RawEntries(a, "", discardLogger())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "%%%not-base64", entries[0].Body)
}

func TestArchive_HasPage_FromEntryRef(t *testing.T) {
	a := Archive{Log: Log{Entries: []Entry{{PageRef: "page_2"}}}}
	assert.True(t, a.HasPage("page_2"))
	assert.False(t, a.HasPage("page_3"))
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testArchive()))
	assert.Contains(t, buf.String(), `"pageref": "page_4"`)
	assert.Contains(t, buf.String(), `"mimeType": "application/json"`)

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Len(t, decoded.Log.Entries, 3)
}
