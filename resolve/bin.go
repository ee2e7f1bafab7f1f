package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ZenLiuCN/native"
	"github.com/ZenLiuCN/native/manifest"
	"github.com/davecgh/go-spew/spew"
	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"
)

var (
	// hostLoader resolves manifests with --host, set when built with the goloader tag.
	hostLoader func() native.Loader
	// hostCommands are appended to the command table when built with the goloader tag.
	hostCommands []*cli.Command

	errNoHost = errors.New("built without goloader, rebuild with -tags goloader")
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		native.Logger.Fatal().Err(err).Msg("failure")
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Usage = "native import resolver"
	app.Name = "resolve"
	app.Description = "resolve consolidates the imports of TOML or YAML manifests and resolves them against native libraries"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "trace every step and dump structures"},
		&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Value: "warn", Usage: "log level"},
		&cli.BoolFlag{Name: "host", Usage: "resolve against goloader symbol tables instead of the system loader"},
		&cli.StringSliceFlag{Name: "atom", Aliases: []string{"a"}, Usage: "override an atom, name=bool"},
	}
	app.Before = setup
	app.Commands = []*cli.Command{
		{Name: "plan", Action: plan, Usage: "print the consolidated layout of manifests", Args: true},
		{Name: "resolve", Action: resolve, Usage: "resolve every library of manifests", Args: true},
		{Name: "eval", Action: eval, Usage: "evaluate a condition expression", Args: true},
		{Name: "prepare",
			Action: prepare,
			Usage:  "copy internals of go sdk to cmd/objfile, required to build with the goloader tag",
			Flags:  []cli.Flag{gorootFlag},
		},
		{Name: "clean",
			Action: clean,
			Usage:  "remove copied internals of go sdk",
			Flags:  []cli.Flag{gorootFlag},
		},
	}
	app.Commands = append(app.Commands, hostCommands...)
	return app
}

func setup(ctx *cli.Context) error {
	native.Logger.Level = log.ParseLevel(ctx.String("level"))
	if ctx.Bool("debug") {
		native.Logger.Level = log.DebugLevel
	}
	return nil
}

func atoms(ctx *cli.Context) (map[string]bool, error) {
	m := make(map[string]bool)
	for _, s := range ctx.StringSlice("atom") {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			m[k] = true
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("atom %s: %w", s, err)
		}
		m[k] = b
	}
	return m, nil
}

func load(ctx *cli.Context, path string) (*manifest.Set, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	a, err := atoms(ctx)
	if err != nil {
		return nil, err
	}
	if m.Atoms == nil {
		m.Atoms = a
	} else {
		for k, v := range a {
			m.Atoms[k] = v
		}
	}
	var loader native.Loader
	if ctx.Bool("host") {
		if hostLoader == nil {
			return nil, errNoHost
		}
		loader = hostLoader()
	}
	s, err := m.Build(loader)
	if err != nil {
		return nil, err
	}
	if ctx.Bool("debug") {
		for _, lib := range s.Libraries {
			lib.Debug = true
		}
	}
	return s, nil
}

func manifests(ctx *cli.Context) ([]string, error) {
	o := ctx.Args().Slice()
	if len(o) == 0 {
		return nil, fmt.Errorf("missing manifest list")
	}
	return o, nil
}

func plan(ctx *cli.Context) (err error) {
	var paths []string
	if paths, err = manifests(ctx); err != nil {
		return
	}
	for _, p := range paths {
		var s *manifest.Set
		if s, err = load(ctx, p); err != nil {
			return
		}
		pl := native.Consolidate(s.Requests)
		fmt.Fprintf(ctx.App.Writer, "# %s\n", p)
		if err = pl.Dump(ctx.App.Writer); err != nil {
			return
		}
		if ctx.Bool("debug") {
			spew.Fdump(ctx.App.Writer, s.Requests)
		}
	}
	return
}

func resolve(ctx *cli.Context) (err error) {
	var paths []string
	if paths, err = manifests(ctx); err != nil {
		return
	}
	for _, p := range paths {
		var s *manifest.Set
		if s, err = load(ctx, p); err != nil {
			return
		}
		pl := native.Consolidate(s.Requests)
		fmt.Fprintf(ctx.App.Writer, "# %s\n", p)
		for _, g := range pl.Groups {
			st := resolveGroup(g)
			fmt.Fprintf(ctx.App.Writer, "library %s %s handle=%#x\n", g.Library(), st, g.Handle())
			if c := s.Candidates[g.Library().Name]; c != nil && c.Err() != nil {
				fmt.Fprintf(ctx.App.Writer, "  tried %d: %v\n", c.Tried(), c.Err())
			}
			for _, slot := range g.Slots() {
				fmt.Fprintf(ctx.App.Writer, "  #%d %s %#x\n", slot.Index(), slot.Symbol(), slot.Address())
			}
		}
		if ctx.Bool("debug") {
			spew.Fdump(ctx.App.Writer, pl.Groups)
		}
	}
	return
}

// resolveGroup reports a raised failure instead of crashing, the group keeps its terminal state.
func resolveGroup(g *native.LibraryGroup) (st native.LoadState) {
	defer func() {
		if r := recover(); r != nil {
			native.Logger.Error().Str("library", g.Library().String()).Msgf("raised: %v", r)
			st = g.State()
		}
	}()
	return g.Resolve()
}

func eval(ctx *cli.Context) (err error) {
	if ctx.Args().Len() == 0 {
		return fmt.Errorf("missing condition expression")
	}
	var a map[string]bool
	if a, err = atoms(ctx); err != nil {
		return
	}
	e := native.Overlay(native.Platform, a)
	for _, src := range ctx.Args().Slice() {
		var c *native.Condition
		if c, err = native.ParseCondition(src); err != nil {
			return
		}
		fmt.Fprintf(ctx.App.Writer, "%s = %t\n", c, c.Evaluate(e))
	}
	return
}
