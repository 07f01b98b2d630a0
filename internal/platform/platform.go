// Package platform describes the build targets as data. Each target is a
// Descriptor record (icon format, config fragment, artifact search classes);
// behavior differences elsewhere in the pipeline key off these fields rather
// than off type switches.
package platform

import (
	"runtime"
	"strings"
)

// Name enumerates supported build targets (stringly for YAML/CLI compatibility).
type Name string

const (
	MacOS   Name = "macos"
	Windows Name = "windows"
	Linux   Name = "linux"
)

// Normalize canonicalizes user input (case-insensitive, common aliases)
// returning empty string if unknown.
func Normalize(raw string) Name {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(MacOS), "darwin", "mac", "osx":
		return MacOS
	case string(Windows), "win":
		return Windows
	case string(Linux):
		return Linux
	default:
		return ""
	}
}

// Detect returns the target matching the host operating system. Hosts that are
// neither darwin nor windows build the linux target.
func Detect() Name {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "windows":
		return Windows
	default:
		return Linux
	}
}

// ArtifactClass is one place the bundling toolchain may drop its output:
// a directory under the bundle root plus the filename pattern found there.
type ArtifactClass struct {
	Dir     string // relative to the bundle root, e.g. "dmg"
	Pattern string // filepath.Match pattern, e.g. "*.dmg"
}

// Descriptor captures everything target-specific the pipeline needs. Values
// are returned by copy; treat them as immutable.
type Descriptor struct {
	Name       Name
	IconFormat string // icns|ico|png
	IconFile   string // filename in the staged icons directory
	UserAgent  string // default desktop user agent injected into the runtime config
	Artifacts  []ArtifactClass
}

// BundleRoot is where the toolchain writes bundles, relative to the staged
// app root.
const BundleRoot = "target/release/bundle"

var descriptors = map[Name]Descriptor{
	MacOS: {
		Name:       MacOS,
		IconFormat: "icns",
		IconFile:   "icon.icns",
		UserAgent:  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		Artifacts: []ArtifactClass{
			{Dir: "dmg", Pattern: "*.dmg"},
		},
	},
	Windows: {
		Name:       Windows,
		IconFormat: "ico",
		IconFile:   "icon.ico",
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		Artifacts: []ArtifactClass{
			{Dir: "msi", Pattern: "*.msi"},
			{Dir: "nsis", Pattern: "*.exe"},
		},
	},
	Linux: {
		Name:       Linux,
		IconFormat: "png",
		IconFile:   "icon.png",
		UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		Artifacts: []ArtifactClass{
			{Dir: "deb", Pattern: "*.deb"},
			{Dir: "appimage", Pattern: "*.AppImage"},
		},
	},
}

// Get returns the descriptor for name. ok is false for unknown names.
func Get(name Name) (Descriptor, bool) {
	d, ok := descriptors[name]
	return d, ok
}

// All returns the descriptors for every supported target in a stable order.
func All() []Descriptor {
	return []Descriptor{descriptors[MacOS], descriptors[Windows], descriptors[Linux]}
}

// FragmentName returns the name of the per-target config fragment.
func (d Descriptor) FragmentName() string {
	return string(d.Name) + ".yaml"
}
