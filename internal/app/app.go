// Package app wires the plugin's components together and manages their
// lifecycle: settings, console capture, the Lua runtime, the reload
// subsystem, and the optional console panel.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/emberedit/firstlog/internal/console"
	"github.com/emberedit/firstlog/internal/host"
	"github.com/emberedit/firstlog/internal/listener"
	"github.com/emberedit/firstlog/internal/panel"
	"github.com/emberedit/firstlog/internal/reload"
	"github.com/emberedit/firstlog/internal/settings"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the settings file. Defaults to
	// firstlog.json under the packages directory.
	ConfigPath string

	// PackagesPath is the plugin packages root. Overrides the settings
	// file when set.
	PackagesPath string

	// LogFile mirrors console output to this file. Overrides the
	// settings file when set.
	LogFile string

	// Panel opens the console panel regardless of settings.
	Panel bool

	// Verbose enables debug-level output.
	Verbose bool

	// EditorVersion is reported in startup logging.
	EditorVersion string
}

// Application coordinates the plugin components.
type Application struct {
	opts Options

	mu       sync.RWMutex
	settings *settings.Settings

	runtime  *host.Runtime
	reloader *reload.Reloader
	listener *listener.Listener
	watcher  *settings.Watcher

	running  atomic.Bool
	done     chan struct{}
	shutdown sync.Once
}

// New creates and bootstraps an application.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts: opts,
		done: make(chan struct{}),
	}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Settings. A missing file is seeded with defaults so the user
	// has something to edit; load never fails.
	cfgPath := app.settingsPath()
	if err := settings.WriteDefault(cfgPath); err != nil {
		// non-fatal; defaults still apply in memory
		fmt.Fprintf(os.Stderr, "firstlog: could not write default settings: %v\n", err)
	}
	app.settings = settings.Load(cfgPath)

	// 2. Console sink, with capture when a log file is configured.
	app.setupConsole()

	// 3. Lua runtime.
	root := app.packagesPath()
	var hostOpts []host.Option
	if root != "" {
		hostOpts = append(hostOpts, host.WithPackagesPath(root))
	}
	app.runtime = host.NewRuntime(hostOpts...)

	// 4. Reload subsystem over the runtime's capabilities.
	rt := app.runtime
	app.reloader = reload.NewReloader(rt, rt, rt, rt,
		reload.WithSink(reload.SinkFunc(console.Log)))

	// 5. Event listener glue, exposed to Lua plugins as well.
	app.listener = listener.New(reload.SinkFunc(console.Log))
	app.bindEventFunction()

	// 6. Startup logging.
	console.Log("firstlog plugin initialized - FIRST PLUGIN LOADED")
	app.listener.LogSystemInfo(listener.SystemInfo{
		EditorVersion:  app.opts.EditorVersion,
		Platform:       runtime.GOOS,
		Arch:           runtime.GOARCH,
		RuntimeVersion: app.runtime.Version(),
		ModuleCount:    app.runtime.ModuleCount(),
	})

	// 7. Discover and load plugin packages from disk.
	app.loadInitialPlugins(root)

	// 8. Watch the settings file; each change re-reads it and reloads
	// the configured plugin list.
	watcher, err := settings.Watch(cfgPath, app.onSettingsChanged)
	if err != nil {
		console.Warn("settings watcher unavailable", "err", err)
	} else {
		app.watcher = watcher
	}

	return nil
}

// settingsPath resolves the settings file location.
func (app *Application) settingsPath() string {
	if app.opts.ConfigPath != "" {
		return app.opts.ConfigPath
	}
	if app.opts.PackagesPath != "" {
		return filepath.Join(app.opts.PackagesPath, settings.DefaultFileName)
	}
	return settings.DefaultFileName
}

// packagesPath resolves the plugin packages root, flag over settings.
func (app *Application) packagesPath() string {
	if app.opts.PackagesPath != "" {
		return app.opts.PackagesPath
	}
	return app.Settings().PackagesPath()
}

func (app *Application) logFile() string {
	if app.opts.LogFile != "" {
		return app.opts.LogFile
	}
	return app.Settings().LogFile()
}

func (app *Application) setupConsole() {
	cfg := console.Config{
		Timestamps: app.Settings().PrintTimestamps(),
		Verbose:    app.opts.Verbose,
	}
	if path := app.logFile(); path != "" {
		cfg.Output = console.NewCapture(os.Stdout, path)
	}
	console.Setup(cfg)
}

// bindEventFunction exposes firstlog_event(name, file) to Lua so plugins
// can feed editor events into the listener.
func (app *Application) bindEventFunction() {
	app.runtime.RegisterFunc("firstlog_event", func(L *lua.LState) int {
		name := L.CheckString(1)
		file := L.OptString(2, "")
		typ, ok := listener.EventTypeFromName(name)
		if !ok {
			console.Warn("unknown event", "name", name)
			return 0
		}
		app.listener.Handle(typ, file)
		return 0
	})
}

// loadInitialPlugins imports every package directory under root. Failures
// are logged per package and never abort startup.
func (app *Application) loadInitialPlugins(root string) {
	if root == "" {
		console.Log("no packages path configured; skipping plugin discovery")
		return
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		console.Warn("could not read packages directory", "path", root, "err", err)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		if err := app.runtime.Import(reload.ModuleID(name)); err != nil {
			console.Log(fmt.Sprintf("could not load package %s: %v", name, err))
			continue
		}
		console.Log(fmt.Sprintf("loaded package %s", name))
		loaded++
	}
	console.Log(fmt.Sprintf("loaded %d of %d package(s)", loaded, len(names)))
}

// onSettingsChanged re-reads the settings file and reloads the configured
// plugin list.
func (app *Application) onSettingsChanged() {
	path := app.Settings().Path()
	fresh := settings.Load(path)

	app.mu.Lock()
	app.settings = fresh
	app.mu.Unlock()

	console.Log("settings changed; reloading configured plugins")
	app.reloader.ReloadFromSettings(fresh)
}

// Settings returns the current settings snapshot.
func (app *Application) Settings() *settings.Settings {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.settings
}

// Reloader returns the reload orchestrator.
func (app *Application) Reloader() *reload.Reloader {
	return app.reloader
}

// Runtime returns the Lua runtime.
func (app *Application) Runtime() *host.Runtime {
	return app.runtime
}

// Listener returns the event listener.
func (app *Application) Listener() *listener.Listener {
	return app.listener
}

// InfoReport renders the plugin-information report for the current state.
func (app *Application) InfoReport() string {
	return panel.InfoReport(panel.Snapshot{
		EditorVersion: app.opts.EditorVersion,
		Platform:      runtime.GOOS,
		Arch:          runtime.GOARCH,
		Modules:       app.runtime.Names(),
	}, time.Now())
}

// LogLoadingOrder writes the numbered module loading order through the
// console sink.
func (app *Application) LogLoadingOrder() {
	for _, line := range panel.LoadingOrder(app.runtime.Names()) {
		console.Log(line)
	}
}

// Run blocks until shutdown. With the panel enabled it drives the console
// panel; otherwise it waits for Shutdown.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.listener.OnInit(0)
	console.Log("firstlog is now monitoring editor activity")

	if app.opts.Panel || app.Settings().ShowConsoleOnStartup() {
		console.Log("opening console on startup as configured")
		return app.runPanel()
	}

	<-app.done
	return nil
}

func (app *Application) runPanel() error {
	p, err := panel.New(panel.Config{
		LogPath: app.logFile(),
		OnReload: func() {
			app.reloader.ReloadFromSettings(app.Settings())
		},
	})
	if err != nil {
		return &InitError{Component: "console panel", Err: err}
	}

	go func() {
		<-app.done
		p.Close()
	}()
	return p.Run()
}

// Shutdown tears the application down. Safe to call more than once and
// from signal handlers.
func (app *Application) Shutdown() {
	app.shutdown.Do(func() {
		console.Log("firstlog plugin is being unloaded")
		if app.watcher != nil {
			_ = app.watcher.Close()
		}
		if app.runtime != nil {
			_ = app.runtime.Close()
		}
		close(app.done)
	})
}
