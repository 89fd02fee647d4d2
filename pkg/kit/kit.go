// SPDX-License-Identifier: MPL-2.0

package kit

import (
	"context"
	"errors"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/resourcekit/internal/config"
	"github.com/invowk/resourcekit/internal/watch"
	"github.com/invowk/resourcekit/pkg/fspath"
	"github.com/invowk/resourcekit/pkg/instance"
	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/lookup"
	"github.com/invowk/resourcekit/pkg/protocol"
	"github.com/invowk/resourcekit/pkg/resource"
	"github.com/invowk/resourcekit/pkg/scan"
)

var (
	// ErrClosed is returned by operations on a closed Kit.
	ErrClosed = errors.New("kit: closed")
	// ErrWatchDisabled is returned by Watch when watching is not enabled.
	ErrWatchDisabled = errors.New("kit: watching disabled")
)

type (
	// Options supplies dependencies that configuration cannot express.
	Options struct {
		// Fs backs file URLs, directory roots and scanning. Defaults to the
		// OS filesystem. Watching requires the OS filesystem.
		Fs afero.Fs
		// Logger overrides the logger built from the log configuration.
		Logger *log.Logger
		// Parent is consulted before any configured root.
		Parent lookup.ResourceLoader
	}

	// Kit is an assembled resource stack. It is safe for concurrent use.
	Kit struct {
		cfg       *config.Config
		fs        afero.Fs
		logger    *log.Logger
		protocols *protocol.Registry
		scanners  *scan.Registry
		memory    *lookup.MemoryRoot
		loader    *lookup.Loader
		cache     *lookup.CachingLoader
		provider  *resource.Provider
		filter    scan.Filter
		dirs      []string
		files     []string

		mu     sync.Mutex
		hooks  []func()
		cancel context.CancelFunc
		closed atomic.Bool
	}
)

// Load reads configuration and assembles a Kit from it.
func Load(ctx context.Context, loadOpts config.LoadOptions, opts Options) (*Kit, error) {
	cfg, err := config.Load(ctx, loadOpts)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts)
}

// New assembles a Kit from cfg. A nil cfg means config.DefaultConfig().
func New(cfg *config.Config, opts Options) (*Kit, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.Configuration("assemble resource kit", errs[0])
	}

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "resourcekit",
			Level:  cfg.LogLevel(),
		})
	}

	filter := scan.Filter{
		IncludeRoot:        cfg.Scan.IncludeRoot,
		IncludeFiles:       cfg.Scan.IncludeFiles,
		IncludeDirectories: cfg.Scan.IncludeDirectories,
		Patterns:           slices.Clone(cfg.Scan.Patterns),
	}
	if err := filter.Validate(); err != nil {
		return nil, issue.Configuration("assemble resource kit", err)
	}

	k := &Kit{
		cfg:    cfg,
		fs:     opts.Fs,
		logger: opts.Logger,
		filter: filter,
	}

	k.protocols = protocol.NewDefaultRegistry(protocol.Options{Fs: opts.Fs, Logger: opts.Logger})
	k.scanners = scan.DefaultRegistry(k.protocols)
	k.scanners.Register(lookup.MemoryFactory(k.protocols))
	k.memory = lookup.NewMemoryRoot(k.protocols)

	roots := []lookup.Root{k.memory}
	for _, r := range cfg.Roots {
		switch r.EffectiveKind() {
		case config.RootKindArchive:
			path := fspath.Abs(r.Path)
			roots = append(roots, lookup.NewArchiveRoot(k.protocols, fspath.ToURL(path), lookup.ArchiveOptions{
				OnReset: k.OnReset,
			}))
			k.files = append(k.files, path)
		default:
			root := lookup.NewDirRoot(opts.Fs, r.Path)
			roots = append(roots, root)
			k.dirs = append(k.dirs, root.Dir())
		}
	}

	k.loader = lookup.NewLoader(lookup.Options{
		Name:      "resourcekit",
		Parent:    opts.Parent,
		Roots:     roots,
		Protocols: k.protocols,
		Logger:    opts.Logger,
	})

	var loader lookup.ResourceLoader = k.loader
	if cfg.Cache.Size > 0 {
		cache, err := lookup.NewCachingLoader(k.loader, cfg.Cache.Size, opts.Logger)
		if err != nil {
			return nil, err
		}
		k.cache = cache
		loader = cache
	}

	k.provider = resource.NewProvider(loader, resource.ProviderOptions{
		Scanners: k.scanners,
		Writer:   overlayWriter{k: k},
		Logger:   opts.Logger,
	})

	opts.Logger.Debug("resource kit assembled", "roots", len(cfg.Roots), "cache", cfg.Cache.Size)
	return k, nil
}

// Config returns the configuration the Kit was built from.
func (k *Kit) Config() *config.Config { return k.cfg }

// Logger returns the Kit logger.
func (k *Kit) Logger() *log.Logger { return k.logger }

// Protocols returns the protocol registry.
func (k *Kit) Protocols() *protocol.Registry { return k.protocols }

// Scanners returns the scanner registry.
func (k *Kit) Scanners() *scan.Registry { return k.scanners }

// Memory returns the in-memory overlay root, searched before the
// configured roots. Changing it directly bypasses the lookup cache; use
// Put and Remove, or call Reset afterwards.
func (k *Kit) Memory() *lookup.MemoryRoot { return k.memory }

// Loader returns the resource loader, cached when a cache is configured.
func (k *Kit) Loader() lookup.ResourceLoader {
	if k.cache != nil {
		return k.cache
	}
	return k.loader
}

// Provider returns the resource provider.
func (k *Kit) Provider() *resource.Provider { return k.provider }

// Filter returns the configured scan filter.
func (k *Kit) Filter() scan.Filter {
	f := k.filter
	f.Patterns = slices.Clone(f.Patterns)
	return f
}

// Items lists container with the configured scan filter.
func (k *Kit) Items(container string) ([]resource.Item, error) {
	if k.closed.Load() {
		return nil, ErrClosed
	}
	return k.provider.Items(container, k.filter)
}

// Put stores content in the memory overlay, shadowing the configured roots.
func (k *Kit) Put(name string, data []byte) error {
	if k.closed.Load() {
		return ErrClosed
	}
	if err := k.memory.Put(name, data); err != nil {
		return err
	}
	k.resetCache()
	return nil
}

// Remove deletes name from the memory overlay, reporting whether it was
// present.
func (k *Kit) Remove(name string) bool {
	if !k.memory.Remove(name) {
		return false
	}
	k.resetCache()
	return true
}

// OnReset registers fn to run on every Reset.
func (k *Kit) OnReset(fn func()) {
	if fn == nil {
		return
	}
	k.mu.Lock()
	k.hooks = append(k.hooks, fn)
	k.mu.Unlock()
}

// Reset drops the lookup cache and runs every registered reset hook.
func (k *Kit) Reset() {
	k.resetCache()
	k.mu.Lock()
	hooks := slices.Clone(k.hooks)
	k.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	k.logger.Debug("resource kit reset", "hooks", len(hooks))
}

func (k *Kit) resetCache() {
	if k.cache != nil {
		k.cache.Reset()
	}
}

// Watch resets the Kit whenever a file under a directory root or an archive
// root itself changes. It blocks until ctx is cancelled or the Kit is
// closed.
func (k *Kit) Watch(ctx context.Context) error {
	if !k.cfg.Watch.Enabled {
		if k.closed.Load() {
			return ErrClosed
		}
		return ErrWatchDisabled
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	k.mu.Lock()
	switch {
	case k.closed.Load():
		k.mu.Unlock()
		return ErrClosed
	case k.cancel != nil:
		k.mu.Unlock()
		return watch.ErrAlreadyRunning
	}
	k.cancel = cancel
	k.mu.Unlock()

	defer func() {
		k.mu.Lock()
		k.cancel = nil
		k.mu.Unlock()
	}()

	if len(k.dirs) == 0 && len(k.files) == 0 {
		<-ctx.Done()
		return nil
	}

	w, err := watch.New(watch.Config{
		Dirs:     k.dirs,
		Files:    k.files,
		Ignore:   k.cfg.Watch.Ignore,
		Debounce: k.cfg.Watch.Debounce,
		Logger:   k.logger,
		OnChange: func(_ context.Context, changed []string) error {
			k.logger.Debug("resources changed", "paths", len(changed))
			k.Reset()
			return nil
		},
	})
	if err != nil {
		return issue.Configuration("watch resource roots", err)
	}
	return w.Run(ctx)
}

// Close stops a running Watch and resets every cached view. Close is
// idempotent.
func (k *Kit) Close() error {
	k.mu.Lock()
	if !k.closed.CompareAndSwap(false, true) {
		k.mu.Unlock()
		return nil
	}
	cancel := k.cancel
	k.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	k.Reset()
	return nil
}

// Instances returns an instance loader for service whose cached instances
// are dropped on every Kit reset.
func Instances[I any](k *Kit, services *instance.Services[I], service string) *instance.Loader[I] {
	l := instance.ForService(services, k.Loader(), service)
	k.OnReset(l.Reset)
	return l
}
