// Package options turns raw CLI input into the validated, immutable option
// set the rest of the pipeline consumes. Validation happens once, here;
// downstream stages trust every field.
package options

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/webcask/webcask/internal/platform"
)

// TargetKind distinguishes remote URLs from local HTML entry points.
type TargetKind string

const (
	TargetURL  TargetKind = "url"
	TargetFile TargetKind = "file"
)

// Raw carries the flag values exactly as the CLI parsed them. Zero values
// mean "not supplied"; defaults are applied during New.
type Raw struct {
	Target        string
	Name          string
	Width         int
	Height        int
	Icon          string
	Inject        []string
	SystemTray    bool
	MultiInstance bool
	Fullscreen    bool
	HideTitleBar  bool
	AlwaysOnTop   bool
	DarkMode      bool
	UserAgent     string
	ProxyURL      string
	OutputDir     string
	Platform      string
	Template      string
	Debug         bool
}

// Options is the validated build input. Constructed only through New;
// treat as read-only afterwards.
type Options struct {
	Target     string
	TargetKind TargetKind
	// TargetPath is the absolute path of a local entry file; empty for URL targets.
	TargetPath string

	Name       string
	Identifier string
	Width      int
	Height     int

	Icon   string
	Inject []string

	SystemTray    bool
	MultiInstance bool
	Fullscreen    bool
	HideTitleBar  bool
	AlwaysOnTop   bool
	DarkMode      bool

	UserAgent string
	ProxyURL  string
	OutputDir string
	Platform  platform.Name
	Template  string
	Debug     bool
}

// Dimension bounds. Anything outside is rejected as nonsense input.
const (
	minDimension = 1
	maxDimension = 100000

	defaultWidth  = 1200
	defaultHeight = 780
)

// New validates raw input and produces the immutable option set, or a
// validation error naming the offending field. The only side effects are
// filesystem existence checks.
func New(raw Raw) (*Options, error) {
	o := &Options{
		Name:          raw.Name,
		Width:         raw.Width,
		Height:        raw.Height,
		Icon:          raw.Icon,
		SystemTray:    raw.SystemTray,
		MultiInstance: raw.MultiInstance,
		Fullscreen:    raw.Fullscreen,
		HideTitleBar:  raw.HideTitleBar,
		AlwaysOnTop:   raw.AlwaysOnTop,
		DarkMode:      raw.DarkMode,
		UserAgent:     raw.UserAgent,
		ProxyURL:      raw.ProxyURL,
		OutputDir:     raw.OutputDir,
		Template:      raw.Template,
		Debug:         raw.Debug,
	}

	if o.Width == 0 {
		o.Width = defaultWidth
	}
	if o.Height == 0 {
		o.Height = defaultHeight
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}

	if raw.Platform == "" {
		o.Platform = platform.Detect()
	} else {
		o.Platform = platform.Normalize(raw.Platform)
	}

	v := &optionsValidator{raw: raw, opts: o}
	if err := v.validate(); err != nil {
		return nil, err
	}

	if o.Name == "" {
		o.Name = DeriveName(o)
	}
	o.Identifier = DeriveIdentifier(o.Name)

	if abs, err := filepath.Abs(o.OutputDir); err == nil {
		o.OutputDir = abs
	}

	// Injection paths are resolved to absolute so the staged copies do not
	// depend on the invocation working directory.
	for i, p := range o.Inject {
		if abs, err := filepath.Abs(p); err == nil {
			o.Inject[i] = abs
		}
	}

	return o, nil
}

// EntryURL is the URL written into the first runtime window: the target URL
// itself, or the packaged-relative path of a staged local entry file.
func (o *Options) EntryURL() string {
	if o.TargetKind == TargetFile {
		return "src/local/" + filepath.Base(o.TargetPath)
	}
	return o.Target
}

// TargetHost returns the host of a URL target, empty for file targets.
func (o *Options) TargetHost() string {
	if o.TargetKind != TargetURL {
		return ""
	}
	u, err := url.Parse(o.Target)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// IconIsRemote reports whether the icon option is an http(s) URL rather
// than a local path.
func (o *Options) IconIsRemote() bool {
	return isHTTPURL(o.Icon)
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Descriptor returns the platform descriptor for the selected target.
func (o *Options) Descriptor() platform.Descriptor {
	d, ok := platform.Get(o.Platform)
	if !ok {
		// Unreachable after validation; zero-value Options in tests fall back to linux.
		d, _ = platform.Get(platform.Linux)
	}
	return d
}
