package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/gotadate/internal/profile"
	"github.com/hrygo/gotadate/plugin/gotadate"
	"github.com/hrygo/gotadate/server/timezone"
	"github.com/hrygo/gotadate/store"
)

const (
	sourceCLI = "cli"
	stdinName = "-"
)

type extractFlags struct {
	reference string
	format    string
	save      bool
}

// fileResult is the outcome of scanning one input.
type fileResult struct {
	Name       string      `json:"name"`
	Timestamps []time.Time `json:"timestamps"`
	Reference  time.Time   `json:"reference"`
	Timezone   string      `json:"timezone"`
	UID        string      `json:"uid,omitempty"`
}

func newExtractCmd() *cobra.Command {
	flags := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Print every date and time found in the given files (stdin by default)",
		Example: `  echo "see you on 23rd Oct 1988 at 6" | gotadate extract
  gotadate extract --reference 2016-10-20 --timezone Europe/Paris notes.txt minutes.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			instanceProfile, err := loadProfile()
			if err != nil {
				return err
			}
			return runExtract(cmd.Context(), instanceProfile, flags, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flags.reference, "reference", "", "reference instant, RFC 3339 or 2006-01-02 (default now)")
	cmd.Flags().StringVarP(&flags.format, "format", "o", "text", "output format: text, json or yaml")
	cmd.Flags().BoolVar(&flags.save, "save", false, "persist each run to the configured database")
	return cmd
}

func runExtract(ctx context.Context, p *profile.Profile, flags *extractFlags, args []string, stdin io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	render, err := rendererFor(flags.format)
	if err != nil {
		return err
	}
	loc, err := timezone.ParseTimezone(p.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	reference, err := gotadate.ParseReference(flags.reference, loc)
	if err != nil {
		return err
	}
	// Every input resolves against the same instant.
	if reference.IsZero() {
		reference = time.Now()
	}

	var st *store.Store
	if flags.save {
		if st, err = openStore(ctx, p); err != nil {
			return err
		}
		defer st.Close()
	}

	if len(args) == 0 {
		args = []string{stdinName}
	}
	if stdinCount(args) > 1 {
		return fmt.Errorf("stdin (%q) can only be read once", stdinName)
	}

	svc := gotadate.NewService(p.Timezone)
	results := make([]*fileResult, len(args))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.BatchLimit, 1))
	for i, name := range args {
		g.Go(func() error {
			res, err := extractOne(gctx, svc, st, name, stdin, gotadate.Options{
				Reference: reference,
				Timezone:  p.Timezone,
				Source:    sourceCLI,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return render(out, results)
}

func extractOne(ctx context.Context, svc gotadate.Extractor, st *store.Store, name string, stdin io.Reader, opts gotadate.Options) (*fileResult, error) {
	var r io.Reader
	if name == stdinName {
		r = stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var input bytes.Buffer
	if st != nil {
		r = io.TeeReader(r, &input)
	}

	result, err := svc.ExtractReader(ctx, r, opts)
	if err != nil {
		return nil, err
	}

	res := &fileResult{
		Name:       name,
		Timestamps: result.Timestamps,
		Reference:  result.Reference,
		Timezone:   result.Timezone,
	}
	if st != nil {
		timestamps := make([]int64, len(result.Timestamps))
		for i, t := range result.Timestamps {
			timestamps[i] = t.Unix()
		}
		created, err := st.CreateExtraction(ctx, &store.Extraction{
			Source:     sourceCLI,
			Input:      input.String(),
			Reference:  result.Reference.Unix(),
			Timezone:   result.Timezone,
			Timestamps: timestamps,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save extraction: %w", err)
		}
		res.UID = created.UID
	}
	return res, nil
}

func stdinCount(args []string) int {
	n := 0
	for _, a := range args {
		if a == stdinName {
			n++
		}
	}
	return n
}
