// Package plugin wires the runtime together: configuration, the object
// store, the script VM and the co-save hooks.
package plugin

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/rawbytedev/hexscriptex/config"
	"github.com/rawbytedev/hexscriptex/pkg/cosave"
	"github.com/rawbytedev/hexscriptex/pkg/forms"
	"github.com/rawbytedev/hexscriptex/pkg/objstore"
	"github.com/rawbytedev/hexscriptex/pkg/optional"
	"github.com/rawbytedev/hexscriptex/pkg/papyrus"
	"github.com/rawbytedev/hexscriptex/pkg/strpool"
)

const (
	Name        = "hexscriptex"
	Version     = 1
	InfoVersion = 1
)

var ErrAlreadyLoaded = errors.New("plugin: already loaded")

// Info is filled in by Query so the host can identify the plugin.
type Info struct {
	InfoVersion uint32
	Name        string
	Version     uint32
}

type Option func(p *Plugin)

// WithClock sets the clock used to timestamp co-saves.
func WithClock(clock clockwork.Clock) Option {
	return func(p *Plugin) { p.clock = clock }
}

type Plugin struct {
	config config.Config
	logger *zap.Logger
	clock  clockwork.Clock

	strings   *strpool.Pool
	forms     *forms.Table
	loadOrder forms.LoadOrder
	classes   *objstore.Registry
	objects   *objstore.Store

	L       *lua.LState
	papyrus *papyrus.Registry
	loaded  bool
}

func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*Plugin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	table, err := cfg.FormTable()
	if err != nil {
		return nil, fmt.Errorf("failed to build form table: %w", err)
	}

	L := lua.NewState()
	p := &Plugin{
		config:    cfg,
		logger:    logger,
		clock:     clockwork.NewRealClock(),
		strings:   strpool.New(),
		forms:     table,
		loadOrder: cfg.LoadOrder.Build(),
		classes:   objstore.NewRegistry(),
		objects:   objstore.NewStore(logger.Named("objstore")),
		L:         L,
		papyrus:   papyrus.NewRegistry(L, logger.Named("papyrus")),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Query identifies the plugin to the host.
func (p *Plugin) Query(info *Info) bool {
	info.InfoVersion = InfoVersion
	info.Name = Name
	info.Version = Version

	p.logger.Info(fmt.Sprintf("%s v%d", Name, Version))
	return true
}

// Load registers the SLTOptional class and its script functions. It runs
// at most once; a failed Load is not retried.
func (p *Plugin) Load() error {
	if p.loaded {
		return ErrAlreadyLoaded
	}
	p.loaded = true

	env := p.Env()
	p.classes.RegisterClass(optional.ClassName, func() objstore.Object { return optional.New(env) })
	p.logger.Info("SLTOptional class registered successfully")

	host := &papyrus.OptionalHost{Objects: p.objects, Env: env}
	if err := papyrus.RegisterOptionalFuncs(p.papyrus, host); err != nil {
		return err
	}
	p.logger.Info("SLTOptional Papyrus functions registered successfully")

	return nil
}

// Env is the environment optional values are created with.
func (p *Plugin) Env() optional.Env {
	return optional.Env{Strings: p.strings, Forms: p.forms}
}

func (p *Plugin) Objects() *objstore.Store { return p.objects }

func (p *Plugin) Papyrus() *papyrus.Registry { return p.papyrus }

func (p *Plugin) Strings() *strpool.Pool { return p.strings }

// SaveGame writes every stored object into a co-save.
func (p *Plugin) SaveGame(out io.Writer) error {
	var opts []cosave.WriterOption
	if factory := p.config.Cosave.Compression.Config; factory != nil {
		var err error
		if opts, err = factory.CreateWriterOptions(); err != nil {
			return err
		}
	}
	opts = append(opts, cosave.WithLoadOrder(p.loadOrder), cosave.WithClock(p.clock))

	w := cosave.NewWriter(opts...)
	if err := p.objects.Save(w); err != nil {
		return fmt.Errorf("failed to save objects: %w", err)
	}
	if err := w.Finish(out); err != nil {
		return fmt.Errorf("failed to write co-save: %w", err)
	}

	p.logger.Info("co-save written", zap.Int("objects", p.objects.Len()))
	return nil
}

// LoadGame replaces the stored objects with the ones in the co-save.
// Objects that fail to load are skipped and reported in the error.
func (p *Plugin) LoadGame(in io.Reader) error {
	r, err := cosave.Open(in, p.loadOrder)
	if err != nil {
		return fmt.Errorf("failed to open co-save: %w", err)
	}

	header := r.Header()
	p.logger.Info("loading co-save",
		zap.Time("savedAt", time.Unix(header.SavedAt, 0)),
		zap.Int("records", len(r.Records())),
		zap.Bool("compressed", r.Compressed()))

	err = p.objects.Load(r, p.classes)
	if err != nil {
		p.logger.Warn("co-save loaded with errors", zap.Error(err))
	}
	return err
}

// Revert drops all objects, as when the player starts a new game.
func (p *Plugin) Revert() {
	p.objects.Clear()
	p.logger.Debug("objects reverted")
}

func (p *Plugin) RunFile(path string) error {
	if err := p.L.DoFile(path); err != nil {
		return fmt.Errorf("failed to run script %s: %w", path, err)
	}
	return nil
}

func (p *Plugin) RunString(src string) error {
	return p.L.DoString(src)
}

func (p *Plugin) Close() {
	p.objects.Clear()
	p.L.Close()
}
