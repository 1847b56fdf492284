package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/composition"
	"vuedoc/internal/entry"
)

const sampleConfig = `
project:
  root: ./web
  include: ["*.vue", "*.js"]
  exclude_files: ["*.spec.js"]
  aliases:
    "@/": src
extract:
  ignored_visibilities: []
  features: [prop, event]
  framework_modules: ["@myorg/vue-kit"]
  composition:
    - name: useStore
      feature: data
      value_index: 0
    - name: useSelector
      feature: computed
      returning_type: string
  jobs: 4
output:
  format: json
watch:
  debounce: 1s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "./web", cfg.Project.Root)
	assert.Equal(t, []string{"*.vue", "*.js"}, cfg.Project.Include)
	assert.Equal(t, map[string]string{"@/": "src"}, cfg.Project.Aliases)
	assert.Equal(t, 4, cfg.Extract.Jobs)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "json", cfg.Output.Format)

	t.Run("Defaults fill the rest", func(t *testing.T) {
		assert.Equal(t, "docs", cfg.Output.Dir)
		assert.Equal(t, ".vuedoc/vuedoc.db", cfg.Storage.DBPath)
		assert.Equal(t, "public", cfg.Extract.DefaultVisibility)
	})

	t.Run("Script options", func(t *testing.T) {
		opts, err := cfg.ScriptOptions(slog.Default())
		require.NoError(t, err)
		assert.NotNil(t, opts.IgnoredVisibilities)
		assert.Empty(t, opts.IgnoredVisibilities)
		assert.Equal(t, []entry.Kind{entry.KindProp, entry.KindEvent}, opts.Features)
		assert.Contains(t, opts.FrameworkModules, "@myorg/vue-kit")
		assert.Contains(t, opts.FrameworkModules, "vue")

		rule, ok := opts.Registry.Lookup("useStore")
		require.True(t, ok)
		assert.Equal(t, composition.Data, rule.Feature)
		require.NotNil(t, rule.ValueIndex)
		assert.Equal(t, 0, *rule.ValueIndex)

		rule, ok = opts.Registry.Lookup("useSelector")
		require.True(t, ok)
		assert.Equal(t, composition.Computed, rule.Feature)

		_, ok = opts.Registry.Lookup("ref")
		assert.True(t, ok, "default rules are kept")
	})
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VUEDOC_OUTPUT_DIR", "out")
	t.Setenv("VUEDOC_JOBS", "2")
	t.Setenv("VUEDOC_DEBOUNCE", "50ms")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, 2, cfg.Extract.Jobs)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)

	t.Setenv("VUEDOC_JOBS", "many")
	_, err = LoadConfig(writeConfig(t, sampleConfig))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
extract:
  default_visibility: secret
  features: [widgets]
  composition:
    - name: useThing
      feature: state
output:
  format: html
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_visibility")
	assert.Contains(t, err.Error(), "features")
	assert.Contains(t, err.Error(), "composition[0]")
	assert.Contains(t, err.Error(), "output.format")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, []string{"*.vue"}, cfg.Project.Include)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)

	opts, err := cfg.ScriptOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, opts.IgnoredVisibilities)

	filter, err := cfg.Filter()
	require.NoError(t, err)
	assert.True(t, filter.Match("App.vue"))
	assert.False(t, filter.Match("main.js"))
}
