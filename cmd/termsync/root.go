package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/termsync/internal/hooks"
	"github.com/mesh-intelligence/termsync/internal/mirror"
	"github.com/mesh-intelligence/termsync/internal/paths"
	"github.com/mesh-intelligence/termsync/internal/platform"
	"github.com/mesh-intelligence/termsync/internal/sqlite"
	"github.com/mesh-intelligence/termsync/pkg/types"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "v0.1.0"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and the loaded configuration shared by all
// subcommands.
type app struct {
	configDir string
	dataDir   string
	jsonOut   bool
	logLevel  string

	cfg    *viper.Viper
	level  slog.Level
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "termsync",
		Short:         "termsync mirrors posts of chosen post types into taxonomy terms",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userError{err}
	})

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output as JSON")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.versionCmd(),
		a.initCmd(),
		a.applyCmd(),
		a.postTypeCmd(),
		a.taxonomyCmd(),
		a.postCmd(),
		a.termCmd(),
		a.mirrorCmd(),
		a.serveCmd(),
	)
	return root
}

// setup resolves the config dir, loads config.yaml and installs the logger.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.cfg = cfg

	level := a.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return userError{err}
	}
	a.level = lvl
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: lvl}))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.dataDir, a.cfg.GetString(cfgKeyDataDir))
}

// site is an attached platform with the mirror listening on its actions.
type site struct {
	backend  *sqlite.Backend
	platform *platform.Platform
	mirror   *mirror.Mirror
}

func (s *site) Close() error {
	return s.backend.Detach()
}

// openSite attaches the backend and fires init so the mirror knows which
// post types to follow. The caller must Close the site.
func (a *app) openSite(ctx context.Context) (*site, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	backend := sqlite.NewBackend(sqlite.WithLogger(a.logger))
	if err := backend.Attach(types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}.WithDefaults()); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	p := platform.New(backend, hooks.New(a.logger), a.logger)
	m := mirror.New(backend, mirror.WithLogger(a.logger))
	m.Register(p.Hooks())
	p.Init(ctx)

	return &site{backend: backend, platform: p, mirror: m}, nil
}

// withSite opens the site for the duration of fn.
func (a *app) withSite(cmd *cobra.Command, fn func(s *site) error) (err error) {
	s, err := a.openSite(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// userError marks errors caused by bad input.
type userError struct {
	err error
}

func (e userError) Error() string { return e.err.Error() }
func (e userError) Unwrap() error { return e.err }

// userArgs wraps a cobra argument validator so its errors count as user
// errors.
func userArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return userError{err}
		}
		return nil
	}
}

var userSentinels = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidName,
	types.ErrInvalidStatus,
	types.ErrInvalidPostType,
	types.ErrInvalidTaxonomy,
	types.ErrUnknownField,
	types.ErrAlreadyTrashed,
	types.ErrNotTrashed,
	types.ErrTermExists,
	types.ErrDuplicateType,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
}

// exitCode maps an error returned by Execute to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue userError
	if errors.As(err, &ue) {
		return exitUserError
	}
	for _, s := range userSentinels {
		if errors.Is(err, s) {
			return exitUserError
		}
	}
	// cobra reports these without a typed error.
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "required flag") {
		return exitUserError
	}
	return exitSysError
}
