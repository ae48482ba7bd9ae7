package har

import (
	"encoding/json"
	"fmt"
	"io"
)

// HAR 1.2 structures, restricted to the fields this tool reads or writes.
// Field names follow the camelCase of the HAR 1.2 format.

// Archive is the top-level HAR document.
type Archive struct {
	Log Log `json:"log"`
}

// Log contains the HAR version, creator, pages, and entries.
type Log struct {
	Version string  `json:"version"`
	Creator Creator `json:"creator"`
	Pages   []Page  `json:"pages,omitempty"`
	Entries []Entry `json:"entries"`
}

// Creator identifies the tool that generated the archive.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Page groups entries recorded for one page load.
type Page struct {
	StartedDateTime string `json:"startedDateTime"`
	ID              string `json:"id"`
	Title           string `json:"title"`
}

// Entry is a single HTTP request/response pair.
type Entry struct {
	PageRef         string   `json:"pageref,omitempty"`
	StartedDateTime string   `json:"startedDateTime"`
	Time            float64  `json:"time"` // total elapsed time in ms
	Request         Request  `json:"request"`
	Response        Response `json:"response"`
}

// Request is the recorded HTTP request.
type Request struct {
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []NameValue `json:"headers"`
	QueryString []NameValue `json:"queryString"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// Response is the recorded HTTP response.
type Response struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []NameValue `json:"headers"`
	Content     Content     `json:"content"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// Content is the response body. Text is base64 when Encoding says so.
type Content struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// NameValue is a generic name/value pair for headers and query parameters.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Decode reads an archive from r.
func Decode(r io.Reader) (Archive, error) {
	var a Archive
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return Archive{}, fmt.Errorf("decode har: %w", err)
	}
	if a.Log.Version == "" && a.Log.Entries == nil {
		return Archive{}, fmt.Errorf("decode har: no log object")
	}
	return a, nil
}

// Encode writes an archive as indented JSON.
func Encode(w io.Writer, a Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode har: %w", err)
	}
	return nil
}

// HasPage reports whether id names a page declared in the log or referenced
// by an entry.
func (a Archive) HasPage(id string) bool {
	for _, p := range a.Log.Pages {
		if p.ID == id {
			return true
		}
	}
	for _, e := range a.Log.Entries {
		if e.PageRef == id {
			return true
		}
	}
	return false
}
