package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hrygo/gotadate/plugin/gotadate/token"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of a file (stdin by default), one token per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != stdinName {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return printTokens(in, cmd.OutOrStdout())
		},
	}
}

func printTokens(in io.Reader, out io.Writer) error {
	tokenizer := token.NewTokenizer(bufio.NewReader(in))
	for {
		tok, err := tokenizer.Next()
		if err != nil {
			return err
		}
		if tok == nil {
			return nil
		}
		if _, err := fmt.Fprintln(out, tok); err != nil {
			return err
		}
	}
}
