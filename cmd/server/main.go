package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/lovault/lovault/internal/app"
	"github.com/lovault/lovault/internal/config"
	"github.com/lovault/lovault/internal/lo"
	"github.com/lovault/lovault/internal/storage"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		runServe()
		return
	}

	switch args[0] {
	case "serve":
		runServe()
	case "admin":
		if err := runAdmin(args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		os.Exit(2)
	}
}

func newLogger(level string) *slog.Logger {
	ll := &slog.LevelVar{}
	switch level {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		ll.Set(slog.LevelInfo)
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

func runServe() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)

	container, cleanup, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("build app", "err", err)
		os.Exit(1)
	}
	defer cleanup() //nolint:errcheck

	logger.Info("lovault listening", "addr", cfg.Addr)
	if err := container.Router.Listen(cfg.Addr); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// runAdmin operates on the store through the same façade the server
// uses: put <path>, cat <name>, rm <name>, stat <name>, url <name>.
func runAdmin(args []string) error {
	flagSet := flag.NewFlagSet("admin", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("parse admin args: %w", err)
	}
	args = flagSet.Args()
	if len(args) < 2 {
		printUsage()
		return fmt.Errorf("admin command requires an argument")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	container, cleanup, err := app.Build(cfg, newLogger("error"))
	if err != nil {
		return err
	}
	defer cleanup() //nolint:errcheck

	ctx := context.Background()
	st := container.Storage
	switch cmd, arg := args[0], args[1]; cmd {
	case "put":
		return adminPut(ctx, st, arg)
	case "cat":
		return adminCat(ctx, st, arg)
	case "rm":
		return st.Delete(ctx, arg)
	case "stat":
		size, err := st.Size(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%d bytes\n", arg, size)
		return nil
	case "url":
		url, err := st.URL(arg)
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown admin command %q", cmd)
	}
}

func adminPut(ctx context.Context, st *storage.Storage, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	name, err := st.Save(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Println(name)
	return nil
}

func adminCat(ctx context.Context, st *storage.Storage, name string) error {
	tx, err := st.DB().ReadTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	f, err := st.Open(ctx, tx, name)
	if err != nil {
		return err
	}
	defer f.Close(ctx) //nolint:errcheck
	for {
		chunk, err := f.Read(ctx, lo.ChunkSize)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			break
		}
		if _, err := os.Stdout.Write(chunk); err != nil {
			return err
		}
	}
	if err := f.Close(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

func printUsage() {
	fmt.Println(`usage:
  server [serve]            start the HTTP server
  server admin put <path>   store a file, print its name
  server admin cat <name>   write a stored file to stdout
  server admin rm <name>    delete a stored file
  server admin stat <name>  print a stored file's size
  server admin url <name>   print a stored file's public URL`)
}
