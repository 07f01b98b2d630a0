package compose

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webcask/webcask/internal/errors"
	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/platform"
)

func urlOptions(t *testing.T) *options.Options {
	t.Helper()
	o, err := options.New(options.Raw{Target: "https://example.com", Name: "TestApp", Platform: "linux"})
	require.NoError(t, err)
	return o
}

func TestFragmentsParse(t *testing.T) {
	base, err := LoadBase()
	require.NoError(t, err)
	require.Contains(t, base, "runtime")
	require.Contains(t, base, "build")

	for _, d := range platform.All() {
		frag, err := LoadPlatform(d)
		require.NoError(t, err, "fragment %s", d.FragmentName())
		require.NotEmpty(t, frag)
	}
}

func TestForPlatform_CLIPrecedence(t *testing.T) {
	o, err := options.New(options.Raw{
		Target:    "https://example.com",
		Name:      "TestApp",
		Width:     1200,
		Height:    800,
		UserAgent: "cli-agent",
		Platform:  "macos",
	})
	require.NoError(t, err)

	c, err := ForPlatform(o)
	require.NoError(t, err)

	// CLI value wins over both fragment layers.
	assert.Equal(t, "cli-agent", c.Runtime["user_agent"])

	windows := c.Runtime["windows"].([]any)
	require.Len(t, windows, 1)
	first := windows[0].(map[string]any)
	assert.Equal(t, "https://example.com", first["url"])
	assert.Equal(t, 1200, first["width"])
	assert.Equal(t, 800, first["height"])
	assert.Equal(t, "TestApp", first["title"])

	assert.Equal(t, "TestApp", c.ProductName())
	assert.Equal(t, "com.webcask.testapp", c.Build["identifier"])
}

func TestForPlatform_FragmentDefaultsSurvive(t *testing.T) {
	for _, tc := range []struct {
		platform string
		icon     string
	}{
		{"macos", "icons/icon.icns"},
		{"windows", "icons/icon.ico"},
		{"linux", "icons/icon.png"},
	} {
		t.Run(tc.platform, func(t *testing.T) {
			o, err := options.New(options.Raw{Target: "https://example.com", Platform: tc.platform})
			require.NoError(t, err)

			c, err := ForPlatform(o)
			require.NoError(t, err)

			// No CLI user agent: the platform fragment's value stands.
			ua, _ := c.Runtime["user_agent"].(string)
			assert.NotEmpty(t, ua)
			assert.Equal(t, tc.icon, c.Build["icon"])
		})
	}
}

func TestForPlatform_ToolchainDefaults(t *testing.T) {
	c, err := ForPlatform(urlOptions(t))
	require.NoError(t, err)

	bin, args := c.ToolchainCommand()
	assert.Equal(t, "caskshell", bin)
	assert.Equal(t, []string{"build", "--config", "build.json"}, args)
}

func TestCompose_InjectAdditiveDedup(t *testing.T) {
	base := map[string]any{
		"runtime": map[string]any{"inject": []any{"a.js"}},
		"build":   map[string]any{},
	}
	override := map[string]any{
		"runtime": map[string]any{"inject": []any{"b.js"}},
	}
	o := &options.Options{
		Target:     "https://example.com",
		TargetKind: options.TargetURL,
		Platform:   platform.Linux,
		Inject:     []string{"a.js", "c.js"},
		Width:      1200,
		Height:     780,
	}

	c, err := Compose(base, override, o)
	require.NoError(t, err)

	want := []string{"a.js", "b.js", "c.js"}
	if got := c.InjectList(); !reflect.DeepEqual(got, want) {
		t.Errorf("inject = %v, want %v", got, want)
	}
}

func TestCompose_PureInputsNotMutated(t *testing.T) {
	base := map[string]any{
		"runtime": map[string]any{"inject": []any{"a.js"}, "system_tray": true},
		"build":   map[string]any{"identifier": "com.base.app"},
	}
	override := map[string]any{
		"runtime": map[string]any{"inject": []any{"b.js"}},
	}
	o := &options.Options{
		Target:     "https://example.com",
		TargetKind: options.TargetURL,
		Platform:   platform.Linux,
		Inject:     []string{"c.js"},
	}

	_, err := Compose(base, override, o)
	require.NoError(t, err)

	assert.Equal(t, []any{"a.js"}, base["runtime"].(map[string]any)["inject"])
	assert.Equal(t, []any{"b.js"}, override["runtime"].(map[string]any)["inject"])
	assert.Equal(t, "com.base.app", base["build"].(map[string]any)["identifier"])
}

func TestCompose_MissingWindowURLIsConfigError(t *testing.T) {
	base := map[string]any{
		"runtime": map[string]any{},
		"build":   map[string]any{},
	}
	// Zero-value options produce an empty entry URL.
	o := &options.Options{Platform: platform.Linux}

	_, err := Compose(base, nil, o)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig), "got %v", err)
}

func TestComposedJSONRoundtrip(t *testing.T) {
	c, err := ForPlatform(urlOptions(t))
	require.NoError(t, err)

	runtimeDoc, err := c.RuntimeJSON()
	require.NoError(t, err)
	buildDoc, err := c.BuildJSON()
	require.NoError(t, err)

	assert.Contains(t, string(runtimeDoc), `"url": "https://example.com"`)
	assert.Contains(t, string(buildDoc), `"product_name": "TestApp"`)
}

func TestSetInjectList(t *testing.T) {
	c := &Composed{Runtime: map[string]any{"inject": []any{"/abs/a.js"}}, Build: map[string]any{}}
	c.SetInjectList([]string{"inject/a.js"})
	assert.Equal(t, []string{"inject/a.js"}, c.InjectList())
}
