package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "Part", []string{"part"}},
		{"trims and lowers", " Part , MeshPart,Decal ", []string{"part", "meshpart", "decal"}},
		{"drops empty entries", "Part,, ,Decal,", []string{"part", "decal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClassList(tt.in))
		})
	}
}

func TestNewSettings_NormalizesClasses(t *testing.T) {
	s := mustSettings(t, Filters{ExcludeClasses: []string{"Part, Decal", "  MESHPART "}})

	assert.Len(t, s.ExcludeClasses, 3)
	assert.Contains(t, s.ExcludeClasses, "part")
	assert.Contains(t, s.ExcludeClasses, "decal")
	assert.Contains(t, s.ExcludeClasses, "meshpart")
}

func TestNewSettings_InvalidPattern(t *testing.T) {
	_, err := NewSettings(Filters{ExcludePatterns: []string{"[abc"}})
	assert.Error(t, err)
}

func TestShouldExclude(t *testing.T) {
	doc := parse(t, place(
		item("Part", map[string]string{"Name": "Floor"}),
		item("Script", map[string]string{"Name": "Init"}),
		item("LocalScript", nil),
		item("ModuleScript", nil),
		item("Workspace", map[string]string{"Name": "Workspace"}),
		item("Model", map[string]string{"Name": "Workspace"}),
		item("ScreenGui", nil),
	))
	items := doc.TopItems()
	part, script, local, module, ws, model, gui := items[0], items[1], items[2], items[3], items[4], items[5], items[6]

	t.Run("nil settings exclude nothing", func(t *testing.T) {
		for _, n := range items {
			assert.False(t, ShouldExclude(n, nil))
		}
	})

	t.Run("class match is case-insensitive", func(t *testing.T) {
		s := mustSettings(t, Filters{ExcludeClasses: []string{"PART"}})
		assert.True(t, ShouldExclude(part, s))
		assert.False(t, ShouldExclude(script, s))
	})

	t.Run("scripts", func(t *testing.T) {
		s := mustSettings(t, Filters{ExcludeScripts: true})
		assert.True(t, ShouldExclude(script, s))
		assert.True(t, ShouldExclude(local, s))
		assert.True(t, ShouldExclude(module, s))
		assert.False(t, ShouldExclude(part, s))
	})

	t.Run("workspace is matched by Name property", func(t *testing.T) {
		s := mustSettings(t, Filters{ExcludeWorkspace: true})
		assert.True(t, ShouldExclude(ws, s))
		assert.True(t, ShouldExclude(model, s))
		assert.False(t, ShouldExclude(part, s))
	})

	t.Run("workspace flag off", func(t *testing.T) {
		s := mustSettings(t, Filters{})
		assert.False(t, ShouldExclude(ws, s))
	})

	t.Run("glob patterns", func(t *testing.T) {
		s := mustSettings(t, Filters{ExcludePatterns: []string{"*Gui", "mod*"}})
		assert.True(t, ShouldExclude(gui, s))
		assert.True(t, ShouldExclude(module, s))
		assert.True(t, ShouldExclude(model, s))
		assert.False(t, ShouldExclude(part, s))
		assert.Equal(t, []string{"*gui", "mod*"}, s.Patterns())
	})
}

func TestShouldExclude_WorkspaceNeedsText(t *testing.T) {
	doc := parse(t, `<Item class="Workspace"><Properties><string name="Name"/></Properties></Item>`)
	s := mustSettings(t, Filters{ExcludeWorkspace: true})

	require.Len(t, doc.TopItems(), 1)
	assert.False(t, ShouldExclude(doc.TopItems()[0], s))
}
