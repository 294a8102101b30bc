// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// vxmileconv converts a Vensim .mdl model into XMILE.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sdxlate/vxmile/compat"
	"github.com/sdxlate/vxmile/config"
	"github.com/sdxlate/vxmile/convert"
)

var (
	compact    bool
	longNames  bool
	asSectors  bool
	configPath string
	outPath    string
)

func main() {
	root := &cobra.Command{
		Use:   "vxmileconv [FILE]",
		Short: "Convert a Vensim .mdl model to XMILE",
		Long: `vxmileconv reads a Vensim .mdl file (or stdin, when no file is given and
input is piped) and writes the equivalent XMILE document to stdout or -o.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}

	root.Flags().BoolVar(&compact, "compact", false, "omit XML indentation")
	root.Flags().BoolVar(&longNames, "long-name", false, "canonicalize variable names from comments")
	root.Flags().BoolVar(&asSectors, "as-sectors", false, "emit one model with <group> sections instead of <module> per view")
	root.Flags().StringVar(&configPath, "config", "", "optional YAML file of default options")
	root.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	fileOpts := config.Options{Compact: compact, LongNames: longNames, AsSectors: asSectors}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		fileOpts = config.Merge(loaded, fileOpts)
	}

	var src []byte
	var err error
	var modelName string
	if len(args) == 1 {
		src, err = os.ReadFile(args[0])
		base := filepath.Base(args[0])
		modelName = compat.CanonicalName(strings.TrimSuffix(base, filepath.Ext(base)))
	} else if !term.IsTerminal(int(os.Stdin.Fd())) {
		src, err = io.ReadAll(os.Stdin)
	} else {
		return fmt.Errorf("no input file given and stdin is a terminal; pass a .mdl path or pipe one in")
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, ok := convert.Convert(src, convert.Options{
		Compact:   fileOpts.Compact,
		LongNames: fileOpts.LongNames,
		AsSectors: fileOpts.AsSectors,
		ModelName: modelName,
	})
	if !ok {
		fmt.Fprint(os.Stderr, convert.GetLog())
		return fmt.Errorf("conversion failed: no equations found")
	}
	if warnings := convert.GetLog(); warnings != "" {
		fmt.Fprint(os.Stderr, warnings)
	}

	out := os.Stdout
	if outPath != "" {
		out, err = os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()
	}
	_, err = out.Write(doc)
	return err
}
