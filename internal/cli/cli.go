// Package cli turns the process arguments into cleanup Options.
package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dircleaner/internal/fault"
)

// DefaultManifestFile is read from the working directory when -c is not given.
const DefaultManifestFile = ".cleanup"

// Options is the parsed command line. It is not modified after Parse returns.
type Options struct {
	ManifestFile string
	DryRun       bool
}

// DefaultOptions returns the options used when no flags are supplied.
func DefaultOptions() Options {
	return Options{ManifestFile: DefaultManifestFile}
}

// Parse reads args (without the program name). shouldExit is true when
// help was requested and printed to out; the caller must stop without
// doing any work in that case.
func Parse(args []string, out io.Writer) (opts Options, shouldExit bool, err error) {
	opts = DefaultOptions()
	ran := false

	cmd := &cobra.Command{
		Use:   "dircleaner",
		Short: "Remove the directories listed in a cleanup manifest",
		Long: `dircleaner reads a manifest of directory paths (one per line, relative to
the working directory unless absolute), reports their total size and
removes them. Use --dry to only report what would be freed.`,
		Args:              rejectPositional,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ran = true
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.ManifestFile, "cleanup-file", "c", opts.ManifestFile, "Manifest file listing directories to remove")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry", "d", false, "Report what would be freed without deleting")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return flagError(err)
	})
	tokens, err := checkTokens(args)
	if err != nil {
		return Options{}, false, err
	}
	cmd.SetArgs(tokens)
	cmd.SetOut(out)
	cmd.SetErr(out)

	if err := cmd.Execute(); err != nil {
		return Options{}, false, err
	}
	return opts, !ran, nil
}

// rejectPositional fails on the first token that is not a flag, including a
// bare "--" terminator.
func rejectPositional(cmd *cobra.Command, args []string) error {
	if cmd.ArgsLenAtDash() >= 0 {
		return &fault.ArgumentError{Token: "--"}
	}
	if len(args) > 0 {
		return &fault.ArgumentError{Token: args[0]}
	}
	return nil
}

// checkTokens admits only the exact forms -c VALUE, --cleanup-file VALUE,
// -d, --dry and help. pflag's --flag=value, attached and grouped shorthand
// forms are rejected so that "-d --dry=false" cannot turn into a real run.
// A trailing -c/--cleanup-file without a value is dropped and leaves the
// default manifest in place. The result is never nil: cobra falls back to
// os.Args for a nil slice.
func checkTokens(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		tok := args[i]
		switch tok {
		case "-c", "--cleanup-file":
			if i+1 >= len(args) {
				return out, nil
			}
			out = append(out, tok, args[i+1])
			i++
		case "-d", "--dry", "-h", "--help":
			out = append(out, tok)
		default:
			return nil, &fault.ArgumentError{Token: tok}
		}
	}
	return out, nil
}

// flagError names the token pflag rejected
func flagError(err error) error {
	var (
		notExist *pflag.NotExistError
		required *pflag.ValueRequiredError
		invalid  *pflag.InvalidValueError
		syntax   *pflag.InvalidSyntaxError
	)
	token := ""
	switch {
	case errors.As(err, &notExist):
		token = flagToken(notExist.GetSpecifiedName(), notExist.GetSpecifiedShortnames())
	case errors.As(err, &required):
		token = flagToken(required.GetSpecifiedName(), required.GetSpecifiedShortnames())
	case errors.As(err, &invalid):
		token = invalid.GetValue()
	case errors.As(err, &syntax):
		token = syntax.GetSpecifiedFlag()
	}
	return &fault.ArgumentError{Token: token, Err: err}
}

func flagToken(name, shorthands string) string {
	if shorthands != "" {
		return "-" + shorthands
	}
	return "--" + name
}
