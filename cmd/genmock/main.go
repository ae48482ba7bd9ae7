// Command genmock writes a synthetic HAR capture of a resistance bench run.
// Sensor responses are derived from the domain geometry and a known
// temperature coefficient, so the fitted alpha of the generated fixture is
// predictable. Cookie updates and truncated error responses are interleaved
// the way a real capture contains them.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/exp_data.har -n 120 -seed 7
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/wire-resistivity-etl/internal/adapter/har"
	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
)

// copperAlpha is the nominal temperature coefficient of copper, in 1/K.
const copperAlpha = 0.0039

var baseTime = time.Date(2021, time.March, 4, 9, 30, 0, 0, time.UTC)

type options struct {
	samples  int
	seed     int64
	page     string
	alpha    float64
	noise    float64 // relative resistance noise
	base64   bool
	geometry domain.WireGeometry
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated HAR file")
	n := flag.Int("n", 100, "number of sensor responses")
	seed := flag.Int64("seed", 1, "random seed")
	page := flag.String("page", "page_4", "HAR page id holding the sensor responses")
	alpha := flag.Float64("alpha", copperAlpha, "temperature coefficient used to derive resistance (1/K)")
	noise := flag.Float64("noise", 0.002, "relative noise applied to resistance")
	encode := flag.Bool("base64", false, "store response bodies base64 encoded")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *n < 2 {
		return fmt.Errorf("-n must be at least 2, got %d", *n)
	}

	archive := generate(options{
		samples:  *n,
		seed:     *seed,
		page:     *page,
		alpha:    *alpha,
		noise:    *noise,
		base64:   *encode,
		geometry: domain.DefaultGeometry(),
	})

	if err := write(*out, archive); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d entries (%d sensor responses) to %s", len(archive.Log.Entries), *n, *out)
	return nil
}

// generate builds an archive with opts.samples sensor responses on opts.page,
// plus a warm-up page of unrelated traffic.
func generate(opts options) har.Archive {
	rng := rand.New(rand.NewSource(opts.seed)) //nolint:gosec // fixture data
	g := opts.geometry
	ratio := g.Length / g.Area()

	archive := har.Archive{Log: har.Log{
		Version: "1.2",
		Creator: har.Creator{Name: "genmock", Version: "1.0"},
		Pages: []har.Page{
			{StartedDateTime: baseTime.Format(time.RFC3339Nano), ID: "page_1", Title: "bench setup"},
			{StartedDateTime: baseTime.Add(time.Minute).Format(time.RFC3339Nano), ID: opts.page, Title: "bench run"},
		},
	}}

	at := baseTime
	add := func(page, method, url, mime, body string) {
		archive.Log.Entries = append(archive.Log.Entries, entry(page, method, url, mime, body, at, opts.base64))
		at = at.Add(500 * time.Millisecond)
	}

	add("page_1", "GET", "http://192.168.4.1/", "text/html", "<html><body>bench</body></html>")
	add("page_1", "POST", "http://192.168.4.1/cookie", "text/plain", "session=warmup")

	mode := "A"
	for i := 0; i < opts.samples; i++ {
		// Ramp from 5 °C below base temperature to 60 °C above it.
		tempC := g.BaseTemperatureC - 5 + 65*float64(i)/float64(opts.samples-1) + rng.NormFloat64()*0.05
		deltaT := tempC - g.BaseTemperatureC
		rho := g.ReferenceResistivity * (1 + opts.alpha*deltaT)
		resistance := rho * ratio * (1 + rng.NormFloat64()*opts.noise)
		if i == opts.samples/2 {
			mode = "B"
		}

		add(opts.page, "GET", "http://192.168.4.1/sensor", "application/json",
			sensorBody(resistance, tempC, mode, i+1))

		switch {
		case i%10 == 3:
			add(opts.page, "POST", "http://192.168.4.1/cookie", "text/plain", fmt.Sprintf("session=%08x", rng.Uint32()))
		case i%17 == 8:
			add(opts.page, "GET", "http://192.168.4.1/sensor", "application/json", `{"error":"check byte mismatch"}`)
		}
	}
	return archive
}

func sensorBody(resistance, tempC float64, mode string, cycle int) string {
	return fmt.Sprintf(`{"ok":{"sensor":[{"value":"%.6f"},{"value":"%.2f"},{"value":%q},{"value":"%d"}]}}`,
		resistance, roundTo(tempC, 2), mode, cycle)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func entry(page, method, url, mime, body string, at time.Time, encode bool) har.Entry {
	content := har.Content{Size: len(body), MimeType: mime, Text: body}
	if encode {
		content.Text = base64.StdEncoding.EncodeToString([]byte(body))
		content.Encoding = "base64"
	}
	return har.Entry{
		PageRef:         page,
		StartedDateTime: at.Format(time.RFC3339Nano),
		Time:            42,
		Request: har.Request{
			Method:      method,
			URL:         url,
			HTTPVersion: "HTTP/1.1",
			Headers:     []har.NameValue{{Name: "Host", Value: "192.168.4.1"}},
			QueryString: []har.NameValue{},
			HeadersSize: -1,
			BodySize:    0,
		},
		Response: har.Response{
			Status:      200,
			StatusText:  "OK",
			HTTPVersion: "HTTP/1.1",
			Headers:     []har.NameValue{{Name: "Content-Type", Value: mime}},
			Content:     content,
			HeadersSize: -1,
			BodySize:    len(body),
		},
	}
}

func write(path string, archive har.Archive) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := har.Encode(f, archive); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
