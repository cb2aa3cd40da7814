package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"yusaek/internal/config"
	"yusaek/internal/logger"
	"yusaek/internal/pipeline"
	"yusaek/internal/server"
	"yusaek/internal/session"
	"yusaek/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	log := logger.New("yusaek", cfg.AppEnv, cfg.LogLevel)
	proc := pipeline.NewProcessingService(db, cfg, log)
	sessOpts := session.Options{PreviewSkipRunLen: cfg.PreviewSkipRunLen}

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(os.Args[2:])
		cfg.HTTPAddr = *addr

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		srv := server.New(cfg, session.NewStore(sessOpts), proc, log)
		must(srv.Run(ctx))
	case "ingest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "order export (.xlsx|.csv|.html)")
		out := fs.String("out", "", "write the time-sorted sheet here (relative to OUTPUT_DIR)")
		identity := fs.String("identity", "cli", "identity recorded in the upload log")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		blob, err := os.ReadFile(*input)
		must(err)

		sess := session.New(sessOpts)
		sum, err := proc.ProcessUpload(*identity, filepath.Base(*input), blob, sess)
		must(err)
		fmt.Printf("ingest done trace=%s invoices=%d codes=%d rows=%d qty=%d\n",
			sum.TraceID, sum.Invoices, sum.CodesTotal, sum.Rows, sum.TotalQty)

		if strings.TrimSpace(*out) != "" {
			path := *out
			if !filepath.IsAbs(path) {
				path = filepath.Join(cfg.OutputDir, path)
			}
			must(writeFile(path, sess.ProcessedSheet))
			fmt.Printf("processed sheet written to %s\n", path)
		}
	case "incoming":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "incoming stock sheet")
		identity := fs.String("identity", "cli", "identity recorded in the upload log")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		blob, err := os.ReadFile(*input)
		must(err)

		sum, err := proc.ProcessIncoming(*identity, filepath.Base(*input), blob, session.New(sessOpts))
		must(err)
		fmt.Printf("incoming done trace=%s codes=%d qty=%d\n", sum.TraceID, sum.Codes, sum.TotalQty)
	case "uploads":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		identity := fs.String("identity", "", "only this identity")
		limit := fs.Int("limit", 20, "max rows")
		trace := fs.String("trace", "", "show one upload by trace id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*trace) != "" {
			row, err := db.MustUploadByTraceID(*trace)
			must(err)
			fmt.Printf("trace=%s kind=%s identity=%s file=%s hash=%s rows=%d invoices=%d codes=%d qty=%d created=%s\n",
				row.TraceID, row.Kind, row.Identity, row.Filename, row.Hash, row.Rows, row.Invoices, row.Codes, row.TotalQty, row.CreatedAt)
			for name, v := range row.Timings {
				fmt.Printf("  %s=%.1f\n", name, v)
			}
			return
		}
		if *identity != "" {
			last, err := db.GetMetadata("last_upload:" + *identity)
			must(err)
			if last != nil {
				fmt.Printf("last order sheet: %s\n", *last)
			}
		}
		rows, err := db.ListUploads(*identity, *limit)
		must(err)
		for _, row := range rows {
			fmt.Printf("%s  %-8s %-10s %-30s invoices=%d codes=%d qty=%d totalMs=%.1f\n",
				row.CreatedAt, row.Kind, row.Identity, row.Filename, row.Invoices, row.Codes, row.TotalQty, row.Timings["totalMs"])
		}
	case "exports":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		identity := fs.String("identity", "", "operator identity")
		limit := fs.Int("limit", 20, "max rows")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*identity) == "" {
			must(fmt.Errorf("--identity is required"))
		}
		rows, err := db.ListDefectExports(*identity, *limit)
		must(err)
		for _, row := range rows {
			fmt.Printf("%s  %-4s codes=%d units=%d trace=%s\n", row.CreatedAt, row.Format, row.Codes, row.Units, row.TraceID)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func writeFile(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func usage() {
	fmt.Println("usage: yusaek <command>")
	fmt.Println("commands:")
	fmt.Println("  serve [--addr=:8000]")
	fmt.Println("  ingest --input=orders.xlsx [--out=processed.xlsx] [--identity=cli]")
	fmt.Println("  incoming --input=incoming.xlsx [--identity=cli]")
	fmt.Println("  uploads [--identity=...] [--limit=20] [--trace=...]")
	fmt.Println("  exports --identity=... [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
