package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/rbx-ripper/internal/runlock"
)

func collect(c *ChannelReporter) []Event {
	var events []Event
	for e := range c.Events() {
		events = append(events, e)
	}
	return events
}

func TestRun_ScriptScenario(t *testing.T) {
	input := writeDoc(t, place(item("Script", map[string]string{"Name": "Init", "Source": "print(1)"})))
	output := filepath.Join(t.TempDir(), "place_extracted")
	reporter := NewChannelReporter(16)

	stats, err := Run(context.Background(), Request{
		Input:    input,
		Output:   output,
		Settings: mustSettings(t, Filters{}),
	}, reporter)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Objects)
	assert.Equal(t, 1, stats.Scripts)
	assert.NotEmpty(t, stats.RunID)

	events := collect(reporter)
	require.Len(t, events, 2)
	assert.Equal(t, Event{Kind: EventProgress, Fraction: 1, Label: "1 / 1"}, events[0])
	assert.Equal(t, Event{Kind: EventFinished, Fraction: 1, Label: "1 objects"}, events[1])

	script, err := os.ReadFile(filepath.Join(output, "Init [Script]", DefaultScriptFile))
	require.NoError(t, err)
	assert.Equal(t, "print(1)", string(script))

	// Lock file is gone after the run
	_, err = os.Stat(output + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestRun_AllExcludedCreatesNothing(t *testing.T) {
	input := writeDoc(t, place(item("Script", map[string]string{"Name": "Init", "Source": "print(1)"})))
	output := filepath.Join(t.TempDir(), "place_extracted")
	reporter := NewChannelReporter(16)

	stats, err := Run(context.Background(), Request{
		Input:    input,
		Output:   output,
		Settings: mustSettings(t, Filters{ExcludeScripts: true}),
	}, reporter)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)

	events := collect(reporter)
	require.Len(t, events, 1)
	assert.Equal(t, EventFinished, events[0].Kind)
	assert.Equal(t, "0 objects", events[0].Label)

	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_EmptyRoblox(t *testing.T) {
	input := writeDoc(t, place())
	output := filepath.Join(t.TempDir(), "out")
	reporter := &recordingReporter{}

	stats, err := Run(context.Background(), Request{Input: input, Output: output}, reporter)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Len(t, reporter.kinds(EventFinished), 1)
	assert.NoDirExists(t, output)
}

func TestRun_LoadErrorCreatesNothing(t *testing.T) {
	input := writeDoc(t, `<roblox><Item class="Part">`)
	output := filepath.Join(t.TempDir(), "out")
	reporter := NewChannelReporter(16)

	_, err := Run(context.Background(), Request{Input: input, Output: output}, reporter)
	require.Error(t, err)

	events := collect(reporter)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Kind)
	assert.Equal(t, err.Error(), events[0].Label)
	assert.NoDirExists(t, output)
}

func TestRun_MissingInput(t *testing.T) {
	reporter := &recordingReporter{}
	_, err := Run(context.Background(), Request{
		Input:  filepath.Join(t.TempDir(), "missing.rbxlx"),
		Output: filepath.Join(t.TempDir(), "out"),
	}, reporter)

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Len(t, reporter.kinds(EventError), 1)
	assert.Empty(t, reporter.kinds(EventFinished))
}

func TestRun_RequestValidation(t *testing.T) {
	_, err := Run(context.Background(), Request{Output: "out"}, nil)
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = Run(context.Background(), Request{Input: "in.rbxlx"}, nil)
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestRun_IOErrorIsTerminal(t *testing.T) {
	input := writeDoc(t, sampleTree())
	output := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(output, []byte("not a directory"), 0644))
	reporter := &recordingReporter{}

	_, err := Run(context.Background(), Request{Input: input, Output: output}, reporter)
	require.Error(t, err)

	assert.Len(t, reporter.kinds(EventError), 1)
	assert.Empty(t, reporter.kinds(EventFinished))
	assert.Equal(t, EventError, reporter.events[len(reporter.events)-1].Kind)
}

func TestRun_OutputLocked(t *testing.T) {
	input := writeDoc(t, sampleTree())
	output := filepath.Join(t.TempDir(), "out")

	held := runlock.New(output)
	require.NoError(t, held.TryLock())
	defer held.Release()

	_, err := Run(context.Background(), Request{Input: input, Output: output}, nil)
	assert.ErrorIs(t, err, runlock.ErrLocked)
	assert.NoDirExists(t, output)
}

func TestRun_TotalMatchesDirectories(t *testing.T) {
	input := writeDoc(t, sampleTree())
	output := filepath.Join(t.TempDir(), "out")
	s := mustSettings(t, Filters{ExcludeScripts: true})
	reporter := &recordingReporter{}

	stats, err := Run(context.Background(), Request{Input: input, Output: output, Settings: s}, reporter)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, stats.Total, stats.Objects)
	assert.Equal(t, 5, reporter.total)
	assert.Len(t, listDirs(t, output), stats.Total)

	finished := reporter.kinds(EventFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, "5 objects", finished[0].Label)
}

func TestCountFile(t *testing.T) {
	input := writeDoc(t, sampleTree())

	report, err := CountFile(input, mustSettings(t, Filters{}))
	require.NoError(t, err)
	assert.Equal(t, 8, report.Total)
	assert.Equal(t, 2, report.ByClass["Part"])
	assert.Equal(t, 2, report.ByClass["Script"])

	_, err = CountFile(filepath.Join(t.TempDir(), "missing.rbxlx"), nil)
	assert.Error(t, err)
}

func TestDefaultOutputDir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"place.rbxlx", "place_extracted"},
		{filepath.Join("games", "obby.rbxmx"), filepath.Join("games", "obby_extracted")},
		{"noext", "noext_extracted"},
		{filepath.Join("dir.v2", "place"), filepath.Join("dir.v2", "place_extracted")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultOutputDir(tt.in))
		})
	}
}
