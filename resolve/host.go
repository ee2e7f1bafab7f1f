//go:build goloader

package main

import (
	"fmt"
	"strings"

	"github.com/ZenLiuCN/native"
	"github.com/ZenLiuCN/native/host"
	"github.com/urfave/cli/v2"
)

func init() {
	hostLoader = func() native.Loader { return host.Default }
	hostCommands = append(hostCommands, &cli.Command{
		Name:   "symbols",
		Action: symbols,
		Usage:  "list goloader symbols of the executable or of files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "only symbols with prefix"},
		},
		Args: true,
	})
}

func symbols(ctx *cli.Context) (err error) {
	files := ctx.Args().Slice()
	if len(files) == 0 {
		files = []string{host.Self}
	}
	prefix := ctx.String("prefix")
	for _, f := range files {
		var h native.Handle
		if h, err = host.Default.Open(f, native.DefaultPolicy); err != nil {
			return
		}
		var names []string
		if names, err = host.Default.Symbols(h); err != nil {
			return
		}
		for _, n := range names {
			if strings.HasPrefix(n, prefix) {
				fmt.Fprintln(ctx.App.Writer, n)
			}
		}
	}
	return
}
