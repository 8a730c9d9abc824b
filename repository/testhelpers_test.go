package repository

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeRegistry is a mock e-Gov API serving canned bodies per path
type fakeRegistry struct {
	server   *httptest.Server
	bodies   map[string]string
	statuses map[string]int
	hits     map[string]*atomic.Int32
}

func newFakeRegistry(t *testing.T) *fakeRegistry {
	t.Helper()
	f := &fakeRegistry{
		bodies:   map[string]string{},
		statuses: map[string]int{},
		hits:     map[string]*atomic.Int32{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if counter, ok := f.hits[r.URL.Path]; ok {
			counter.Add(1)
		}
		if status, ok := f.statuses[r.URL.Path]; ok {
			w.WriteHeader(status)
			return
		}
		body, ok := f.bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeRegistry) serve(path, body string) {
	f.bodies[path] = body
	f.hits[path] = &atomic.Int32{}
}

func (f *fakeRegistry) fail(path string, status int) {
	f.statuses[path] = status
	f.hits[path] = &atomic.Int32{}
}

func (f *fakeRegistry) hitCount(path string) int {
	return int(f.hits[path].Load())
}

func (f *fakeRegistry) client() *RegistryClient {
	return NewRegistryClient(f.server.URL, f.server.Client())
}

type lawEntry struct {
	id, name, number, date string
}

func lawListXML(entries ...lawEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><DataRoot><Result><Code>0</Code><Message/></Result><ApplData>`)
	for _, e := range entries {
		fmt.Fprintf(&b, "<LawNameListInfo><LawId>%s</LawId><LawName>%s</LawName><LawNo>%s</LawNo><PromulgationDate>%s</PromulgationDate></LawNameListInfo>",
			e.id, e.name, e.number, e.date)
	}
	b.WriteString(`</ApplData></DataRoot>`)
	return b.String()
}

func lawDataXML(applData string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><DataRoot><Result><Code>0</Code><Message/></Result><ApplData>` +
		applData + `</ApplData></DataRoot>`
}
