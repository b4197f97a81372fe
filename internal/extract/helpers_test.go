package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/rbx-ripper/internal/document"
)

// item renders an Item element with string properties and nested children.
// A "Source" key is rendered as a ProtectedString with CDATA content.
func item(class string, props map[string]string, children ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<Item class="%s">`, class)
	if props != nil {
		b.WriteString("<Properties>")
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "Source" {
				fmt.Fprintf(&b, `<ProtectedString name="Source"><![CDATA[%s]]></ProtectedString>`, props[k])
				continue
			}
			fmt.Fprintf(&b, `<string name="%s">%s</string>`, k, props[k])
		}
		b.WriteString("</Properties>")
	}
	for _, c := range children {
		b.WriteString(c)
	}
	b.WriteString("</Item>")
	return b.String()
}

func place(items ...string) string {
	return `<?xml version="1.0" encoding="utf-8"?><roblox version="4">` + strings.Join(items, "") + `</roblox>`
}

func parse(t *testing.T, xml string) *document.Document {
	t.Helper()
	doc, err := document.Parse(strings.NewReader(xml))
	require.NoError(t, err)
	return doc
}

func writeDoc(t *testing.T, xml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "place.rbxlx")
	require.NoError(t, os.WriteFile(path, []byte(xml), 0644))
	return path
}

func mustSettings(t *testing.T, f Filters) *Settings {
	t.Helper()
	s, err := NewSettings(f)
	require.NoError(t, err)
	return s
}

// listDirs returns every directory below root, relative and slash separated.
func listDirs(t *testing.T, root string) []string {
	t.Helper()
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			dirs = append(dirs, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(dirs)
	return dirs
}

// recordingReporter captures notifications for assertions.
type recordingReporter struct {
	mu     sync.Mutex
	total  int
	events []Event
}

func (r *recordingReporter) OnCountComplete(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *recordingReporter) OnProgress(fraction float64, label string) {
	r.record(Event{Kind: EventProgress, Fraction: fraction, Label: label})
}

func (r *recordingReporter) OnError(message string) {
	r.record(Event{Kind: EventError, Label: message})
}

func (r *recordingReporter) OnFinished(label string) {
	r.record(Event{Kind: EventFinished, Fraction: 1, Label: label})
}

func (r *recordingReporter) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingReporter) kinds(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
