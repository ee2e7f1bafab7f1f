package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/native"
	"github.com/urfave/cli/v2"
)

// goloader imports the sdk internals under cmd/objfile, which is not part of a stock GOROOT.
var gorootFlag = &cli.StringFlag{Name: "goroot", EnvVars: []string{"GOROOT"}, Value: runtime.GOROOT(), Usage: "go sdk root"}

func objfileDirs(ctx *cli.Context) (src, dir string) {
	root := ctx.String("goroot")
	return filepath.Join(root, "src", "cmd", "internal"), filepath.Join(root, "src", "cmd", "objfile")
}

func prepare(ctx *cli.Context) (err error) {
	src, dir := objfileDirs(ctx)
	if _, err = os.Stat(dir); err == nil {
		native.Logger.Info().Str("dir", dir).Msg("sdk already prepared")
		fmt.Fprintf(ctx.App.Writer, "exists %s\n", dir)
		return nil
	} else if !os.IsNotExist(err) {
		return
	}
	native.Logger.Debug().Str("from", src).Str("to", dir).Msg("prepare go sdk")
	if err = copyDir(src, dir, nil); err != nil {
		return fmt.Errorf("prepare %s: %w", dir, err)
	}
	fmt.Fprintf(ctx.App.Writer, "copied %s\n", dir)
	return
}

func clean(ctx *cli.Context) (err error) {
	_, dir := objfileDirs(ctx)
	if _, err = os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(ctx.App.Writer, "absent %s\n", dir)
			return nil
		}
		return
	}
	if err = os.RemoveAll(dir); err != nil {
		return
	}
	fmt.Fprintf(ctx.App.Writer, "removed %s\n", dir)
	return
}

// copyFile copies src to dest with the mode of si, read from src when nil.
func copyFile(src, dest string, si fs.FileInfo) (err error) {
	if si == nil {
		if si, err = os.Stat(src); err != nil {
			return
		}
	}
	var sf, df *os.File
	if sf, err = os.Open(src); err != nil {
		return
	}
	defer fn.IgnoreClose(sf)()
	if df, err = os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, si.Mode().Perm()); err != nil {
		return
	}
	if _, err = io.Copy(df, sf); err != nil {
		fn.IgnoreClose(df)()
		return
	}
	if err = df.Close(); err != nil {
		return
	}
	return os.Chmod(dest, si.Mode().Perm())
}

// copyDir copies the tree under src to dest.
func copyDir(src, dest string, si fs.FileInfo) (err error) {
	if si == nil {
		if si, err = os.Stat(src); err != nil {
			return
		}
	}
	if !si.IsDir() {
		return &fs.PathError{Op: "copy", Path: src, Err: fs.ErrInvalid}
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		return copyFile(path, target, info)
	})
}
