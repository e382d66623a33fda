package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"dircleaner/internal/fault"
)

func TestParseValidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{"defaults", []string{}, Options{ManifestFile: ".cleanup"}},
		{"short manifest", []string{"-c", "dirs.txt"}, Options{ManifestFile: "dirs.txt"}},
		{"long manifest", []string{"--cleanup-file", "dirs.txt"}, Options{ManifestFile: "dirs.txt"}},
		{"short dry", []string{"-d"}, Options{ManifestFile: ".cleanup", DryRun: true}},
		{"long dry", []string{"--dry"}, Options{ManifestFile: ".cleanup", DryRun: true}},
		{"both", []string{"-d", "-c", "list"}, Options{ManifestFile: "list", DryRun: true}},
		{"last manifest wins", []string{"-c", "a", "--cleanup-file", "b"}, Options{ManifestFile: "b"}},
		{"dry twice", []string{"-d", "--dry"}, Options{ManifestFile: ".cleanup", DryRun: true}},
		{"value looks like flag", []string{"-c", "-d"}, Options{ManifestFile: "-d"}},
		{"dangling short value ignored", []string{"-d", "-c"}, Options{ManifestFile: ".cleanup", DryRun: true}},
		{"dangling long value ignored", []string{"--cleanup-file"}, Options{ManifestFile: ".cleanup"}},
		{"dangling after value", []string{"-c", "a", "-c"}, Options{ManifestFile: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, exit, err := Parse(tt.args, &out)
			if err != nil {
				t.Fatalf("Parse(%v) failed: %v", tt.args, err)
			}
			if exit {
				t.Fatalf("Parse(%v) asked to exit", tt.args)
			}
			if got != tt.want {
				t.Errorf("Parse(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseRejectsUnknownTokens(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		token string
	}{
		{"unknown long flag", []string{"--bogus"}, "--bogus"},
		{"unknown short flag", []string{"-x"}, "-x"},
		{"positional", []string{"build"}, "build"},
		{"positional after flags", []string{"-d", "build"}, "build"},
		{"bare dash", []string{"-"}, "-"},
		{"terminator", []string{"--"}, "--"},
		{"dry with value", []string{"-d", "--dry=false"}, "--dry=false"},
		{"long manifest with equals", []string{"--cleanup-file=x"}, "--cleanup-file=x"},
		{"short manifest with equals", []string{"-c=foo"}, "-c=foo"},
		{"attached short value", []string{"-cfoo"}, "-cfoo"},
		{"grouped shorthands", []string{"-dc", "x"}, "-dc"},
		{"grouped shorthands at end", []string{"-dc"}, "-dc"},
		{"help with value", []string{"--help=true"}, "--help=true"},
		{"after manifest value", []string{"-c", "a", "-dd"}, "-dd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := Parse(tt.args, &out)
			if err == nil {
				t.Fatalf("Parse(%v) succeeded, expected InvalidArgument", tt.args)
			}
			if !errors.Is(err, fault.ErrInvalidArgument) {
				t.Fatalf("Parse(%v) error %v does not match ErrInvalidArgument", tt.args, err)
			}
			var argErr *fault.ArgumentError
			if !errors.As(err, &argErr) {
				t.Fatalf("Parse(%v) error %T is not *fault.ArgumentError", tt.args, err)
			}
			if argErr.Token != tt.token {
				t.Errorf("Token = %q, want %q", argErr.Token, tt.token)
			}
		})
	}
}

func TestParseHelpRequestsExit(t *testing.T) {
	var out bytes.Buffer
	_, exit, err := Parse([]string{"--help"}, &out)
	if err != nil {
		t.Fatalf("Parse(--help) failed: %v", err)
	}
	if !exit {
		t.Error("Parse(--help) should ask the caller to exit")
	}
	if !strings.Contains(out.String(), "--cleanup-file") {
		t.Errorf("help output missing --cleanup-file flag:\n%s", out.String())
	}
}

func TestCheckTokensNeverNil(t *testing.T) {
	got, err := checkTokens(nil)
	if err != nil || got == nil {
		t.Fatalf("checkTokens(nil) = %v, %v; want empty non-nil slice", got, err)
	}
	got, err = checkTokens([]string{"-c"})
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("checkTokens([-c]) = %v, %v; want empty non-nil slice", got, err)
	}
}

func TestFlagErrorCarriesToken(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		token string
	}{
		{"unknown long", []string{"--bogus"}, "--bogus"},
		{"unknown short", []string{"-x"}, "-x"},
		{"missing short value", []string{"-c"}, "-c"},
		{"missing value in group", []string{"-dc"}, "-c"},
		{"missing long value", []string{"--cleanup-file"}, "--cleanup-file"},
		{"invalid bool", []string{"--dry=maybe"}, "maybe"},
		{"bad syntax", []string{"---dry"}, "---dry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			fs.SetOutput(io.Discard)
			fs.StringP("cleanup-file", "c", DefaultManifestFile, "")
			fs.BoolP("dry", "d", false, "")

			parseErr := fs.Parse(tt.args)
			if parseErr == nil {
				t.Fatalf("Parse(%v) succeeded", tt.args)
			}

			var argErr *fault.ArgumentError
			if !errors.As(flagError(parseErr), &argErr) {
				t.Fatalf("flagError(%v) is not *fault.ArgumentError", parseErr)
			}
			if argErr.Token != tt.token {
				t.Errorf("Token = %q, want %q (pflag error: %v)", argErr.Token, tt.token, parseErr)
			}
		})
	}
}
