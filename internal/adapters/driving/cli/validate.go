package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/treeutils/internal/newick"
)

const stdinName = "<stdin>"

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check newick files for syntax errors",
	Long: `Check that each file holds a syntactically valid newick tree.
With no files, a single tree is read from standard input.

The exit status is non-zero if any tree is invalid.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()

	if len(args) == 0 {
		text, err := readStdin(cmd)
		if err != nil {
			return err
		}
		if !reportTree(cmd, stdinName, text, ok, bad) {
			return errors.New("invalid tree")
		}
		return nil
	}

	invalid := 0
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if !reportTree(cmd, path, strings.TrimSpace(string(content)), ok, bad) {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d trees invalid", invalid, len(args))
	}
	return nil
}

// readStdin reads a tree from standard input, refusing an interactive
// terminal.
func readStdin(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, isFile := in.(*os.File); isFile && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no input: pass newick files or pipe a tree on stdin")
	}
	content, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}

// reportTree prints one result line and reports whether text is valid.
func reportTree(cmd *cobra.Command, name, text string, ok, bad func(...any) string) bool {
	err := newick.Validate(text)
	if err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ok("valid"), name)
		return true
	}

	var syntaxErr *newick.SyntaxError
	if errors.As(err, &syntaxErr) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s at offset %d\n",
			bad("invalid"), name, syntaxErr.Reason, syntaxErr.Offset)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", bad("invalid"), name, err)
	}
	return false
}
