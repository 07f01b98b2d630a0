package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/webcask/webcask/internal/build"
	"github.com/webcask/webcask/internal/errors"
	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/output"
	"github.com/webcask/webcask/internal/version"
	"github.com/webcask/webcask/internal/watch"
)

// BundleOpts are the flags shared by the build and watch commands.
type BundleOpts struct {
	Target string `arg:"" help:"Target URL or local HTML file to package"`

	Name   string `short:"n" help:"Application name (derived from the target when omitted)"`
	Icon   string `help:"Icon file path or URL (falls back to the target's favicon, then the bundled default)"`
	Width  int    `help:"Window width in pixels" default:"1200"`
	Height int    `help:"Window height in pixels" default:"780"`

	Inject []string `help:"JS or CSS files injected into every page"`

	SystemTray    bool `help:"Show a system tray icon instead of closing with the last window"`
	MultiInstance bool `help:"Allow more than one running instance"`
	Fullscreen    bool `help:"Start in fullscreen"`
	HideTitleBar  bool `help:"Hide the native title bar (macOS immersive header)"`
	AlwaysOnTop   bool `help:"Keep the window above all others"`
	DarkMode      bool `help:"Force dark mode"`

	UserAgent string `help:"Custom browser user agent for the packaged app" env:"WEBCASK_USER_AGENT"`
	ProxyURL  string `help:"Proxy for the packaged app (http, https or socks5)" env:"WEBCASK_PROXY_URL"`

	Output   string `short:"o" help:"Directory finished bundles are written to" default:"."`
	Platform string `short:"p" help:"Target platform: macos, windows or linux (defaults to the host)"`
	Template string `help:"Shell template: a directory or a git URL (defaults to the embedded template)"`

	Debug bool `help:"Keep the staging tree for inspection and log toolchain internals"`
}

var CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Build struct {
		BundleOpts
	} `cmd:"" help:"Build a desktop bundle for a web target"`

	Watch struct {
		BundleOpts
	} `cmd:"" help:"Build, then rebuild whenever local sources change"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	// A .env alongside the invocation can supply WEBCASK_TOOLCHAIN and
	// similar overrides; absence is fine and existing process env wins.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name("webcask"),
		kong.Description("Package any web page or local HTML app as a native desktop bundle."),
		kong.UsageOnError(),
	)

	verbose := CLI.Verbose || CLI.Build.Debug || CLI.Watch.Debug
	output.Setup(verbose)
	adapter := errors.NewCLIErrorAdapter(verbose, slog.Default())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch kctx.Command() {
	case "build <target>":
		adapter.HandleError(runBuild(ctx, CLI.Build.BundleOpts))
	case "watch <target>":
		adapter.HandleError(runWatch(ctx, CLI.Watch.BundleOpts))
	case "version":
		output.Println(fmt.Sprintf("webcask %s (commit %s, built %s)", version.Version, version.GitCommit, version.BuildTime))
	default:
		adapter.HandleError(fmt.Errorf("unknown command %q", kctx.Command()))
	}
}

func rawOptions(b BundleOpts) options.Raw {
	return options.Raw{
		Target:        b.Target,
		Name:          b.Name,
		Width:         b.Width,
		Height:        b.Height,
		Icon:          b.Icon,
		Inject:        b.Inject,
		SystemTray:    b.SystemTray,
		MultiInstance: b.MultiInstance,
		Fullscreen:    b.Fullscreen,
		HideTitleBar:  b.HideTitleBar,
		AlwaysOnTop:   b.AlwaysOnTop,
		DarkMode:      b.DarkMode,
		UserAgent:     b.UserAgent,
		ProxyURL:      b.ProxyURL,
		OutputDir:     b.Output,
		Platform:      b.Platform,
		Template:      b.Template,
		Debug:         b.Debug,
	}
}

func runBuild(ctx context.Context, b BundleOpts) error {
	opts, err := options.New(rawOptions(b))
	if err != nil {
		return err
	}

	report, err := build.New(opts).Build(ctx)
	output.Print(output.RenderReport(report))
	return err
}

func runWatch(ctx context.Context, b BundleOpts) error {
	opts, err := options.New(rawOptions(b))
	if err != nil {
		return err
	}

	dirs, files, err := watch.Sources(opts)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) {
		report, err := build.New(opts).Build(ctx)
		output.Print(output.RenderReport(report))
		if err != nil {
			slog.Error("Rebuild failed, still watching", "error", err)
		}
	}

	// First build before watching; a broken initial state should fail
	// loudly rather than sit silent until a file changes.
	report, err := build.New(opts).Build(ctx)
	output.Print(output.RenderReport(report))
	if err != nil {
		return err
	}

	w, err := watch.New(dirs, files, rebuild)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	slog.Info("Watching for changes, press Ctrl-C to stop")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping watcher")
	return nil
}
