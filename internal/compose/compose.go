// Package compose merges the layered build configuration into the two
// documents the staged tree carries: the runtime configuration read by the
// packaged shell at startup, and the build configuration consumed by the
// bundling toolchain. Layers, lowest to highest: embedded base fragment,
// embedded per-target fragment, CLI-derived overlay.
package compose

import (
	"embed"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/webcask/webcask/internal/errors"
	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/platform"
)

//go:embed configs/*.yaml
var fragmentFS embed.FS

func loadFragment(name string) (map[string]any, error) {
	data, err := fragmentFS.ReadFile("configs/" + name)
	if err != nil {
		return nil, errors.ConfigUnreadable(name, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ConfigUnreadable(name, err)
	}
	return doc, nil
}

// LoadBase returns the embedded base fragment as a key tree.
func LoadBase() (map[string]any, error) {
	return loadFragment("base.yaml")
}

// LoadPlatform returns the embedded fragment for the given target.
func LoadPlatform(d platform.Descriptor) (map[string]any, error) {
	return loadFragment(d.FragmentName())
}

// Overlay builds the CLI-derived layer from validated options. The window
// list and boolean flags are always present (the CLI is their authoritative
// source); optional strings appear only when supplied so fragment defaults
// survive.
func Overlay(opts *options.Options) map[string]any {
	window := map[string]any{
		"url":            opts.EntryURL(),
		"width":          opts.Width,
		"height":         opts.Height,
		"title":          opts.Name,
		"resizable":      true,
		"fullscreen":     opts.Fullscreen,
		"hide_title_bar": opts.HideTitleBar,
	}
	runtime := map[string]any{
		"windows":        []any{window},
		"system_tray":    opts.SystemTray,
		"multi_instance": opts.MultiInstance,
		"always_on_top":  opts.AlwaysOnTop,
		"dark_mode":      opts.DarkMode,
	}
	if len(opts.Inject) > 0 {
		runtime["inject"] = asList(opts.Inject)
	}
	if opts.ProxyURL != "" {
		runtime["proxy_url"] = opts.ProxyURL
	}
	if opts.UserAgent != "" {
		runtime["user_agent"] = opts.UserAgent
	}

	build := map[string]any{
		"identifier":   opts.Identifier,
		"product_name": opts.Name,
		"window": map[string]any{
			"width":  opts.Width,
			"height": opts.Height,
		},
	}

	return map[string]any{"runtime": runtime, "build": build}
}

// Composed holds the two output documents split from the merged tree.
type Composed struct {
	Runtime map[string]any
	Build   map[string]any
}

// Compose merges base, then platformOverride, then the CLI overlay, and
// splits the result. Pure function of its inputs: the given maps are not
// mutated. Fails when the merged tree is missing the entry URL, the last
// validation gate before staging.
func Compose(base, platformOverride map[string]any, opts *options.Options) (*Composed, error) {
	merged := map[string]any{}
	mergeTree(merged, base, "")
	mergeTree(merged, platformOverride, "")
	mergeTree(merged, Overlay(opts), "")

	runtime, _ := merged["runtime"].(map[string]any)
	build, _ := merged["build"].(map[string]any)
	if runtime == nil || build == nil {
		return nil, errors.Config("merged configuration must contain runtime and build sections")
	}
	if err := requireWindowURL(runtime); err != nil {
		return nil, err
	}

	return &Composed{Runtime: runtime, Build: build}, nil
}

// ForPlatform loads the embedded fragments for the selected target and
// composes them with the CLI-derived overlay.
func ForPlatform(opts *options.Options) (*Composed, error) {
	base, err := LoadBase()
	if err != nil {
		return nil, err
	}
	frag, err := LoadPlatform(opts.Descriptor())
	if err != nil {
		return nil, err
	}
	return Compose(base, frag, opts)
}

func requireWindowURL(runtime map[string]any) error {
	windows, _ := runtime["windows"].([]any)
	if len(windows) == 0 {
		return errors.Config("required key runtime.windows is missing or empty after merge")
	}
	first, _ := windows[0].(map[string]any)
	url, _ := first["url"].(string)
	if url == "" {
		return errors.Config("required key runtime.windows[0].url is missing after merge")
	}
	return nil
}

// InjectList returns runtime.inject as a string slice.
func (c *Composed) InjectList() []string {
	items := asList(c.Runtime["inject"])
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// SetInjectList replaces runtime.inject. The stager uses this to point the
// entries at their staged copies.
func (c *Composed) SetInjectList(paths []string) {
	c.Runtime["inject"] = asList(paths)
}

// ProductName returns build.product_name.
func (c *Composed) ProductName() string {
	name, _ := c.Build["product_name"].(string)
	return name
}

// ToolchainCommand returns build.toolchain.{bin,args}.
func (c *Composed) ToolchainCommand() (string, []string) {
	tc, _ := c.Build["toolchain"].(map[string]any)
	bin, _ := tc["bin"].(string)
	var args []string
	for _, item := range asList(tc["args"]) {
		if s, ok := item.(string); ok {
			args = append(args, s)
		}
	}
	return bin, args
}

// RuntimeJSON serializes the runtime document.
func (c *Composed) RuntimeJSON() ([]byte, error) {
	return json.MarshalIndent(c.Runtime, "", "  ")
}

// BuildJSON serializes the build document.
func (c *Composed) BuildJSON() ([]byte, error) {
	return json.MarshalIndent(c.Build, "", "  ")
}
