// Command parse extracts transactions from bank statement PDFs on disk.
//
//	parse -bank sber -format csv -out march.csv statement.pdf
//
// Several files may be given; they are parsed concurrently and merged in
// argument order. A file that fails is reported on stderr and the command
// exits non-zero after writing whatever the other files produced.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/export"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/pipeline"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-parser/pkg/config"
)

var errSomeFailed = errors.New("one or more statements failed")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "parse:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	bank := fs.String("bank", "", "institution code: sber, tbank, tbank_deposit or ozon")
	formatFlag := fs.String("format", "json", "output format: json, csv or xlsx")
	out := fs.String("out", "", "output file (default stdout)")
	verbose := fs.Bool("v", false, "log parse progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no input files")
	}

	inst, err := pipeline.ParseInstitution(*bank)
	if err != nil {
		if s := pipeline.Suggest(*bank); s != "" {
			return fmt.Errorf("%w (did you mean %q?)", err, s)
		}
		return err
	}
	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := slog.LevelWarn
	if *verbose {
		level = cfg.Observability.LogLevel
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	svc := service.NewParseService(
		document.NewPDFExtractor(document.WithValidation(cfg.Parse.ValidatePDF)),
		service.Config{
			MaxUploadBytes: cfg.Parse.MaxUploadBytes,
			Timeout:        cfg.Parse.Timeout,
			Workers:        cfg.Parse.Workers,
		},
		logger,
	)

	reqs := make([]service.Request, 0, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		reqs = append(reqs, service.Request{Institution: inst, Filename: filepath.Base(path), Data: data})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results := svc.ParseBatch(ctx, reqs)

	var (
		responses []*service.Response
		records   []statement.Record
		failed    bool
	)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", r.Request.Filename, r.Err)
			failed = true
			continue
		}
		responses = append(responses, r.Response)
		records = append(records, r.Response.Transactions...)
	}

	render := func(w io.Writer) error {
		return write(w, format, responses, records)
	}
	if *out == "" {
		err = render(stdout)
	} else {
		err = writeFile(*out, render)
	}
	if err != nil {
		return err
	}
	if failed {
		return errSomeFailed
	}
	return nil
}

// writeFile creates path and renders into it. A failed close is returned
// unless render already failed.
func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return render(f)
}

func write(w io.Writer, format export.Format, responses []*service.Response, records []statement.Record) error {
	switch format {
	case export.FormatCSV:
		return export.WriteCSV(w, records)
	case export.FormatXLSX:
		txs := make([]statement.Transaction, len(records))
		for i, r := range records {
			txs[i] = r.Transaction
		}
		return export.WriteXLSX(w, records, statement.Summarize(txs))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(responses) == 1 {
		return enc.Encode(responses[0])
	}
	if responses == nil {
		responses = []*service.Response{}
	}
	return enc.Encode(responses)
}
