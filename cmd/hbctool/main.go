// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hbctool/hbc"
)

var (
	wantStrings bool
	wantArrays  bool
)

func prettyPrint(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func dumpFile(filename string) error {
	c, err := hbc.Open(filename, &hbc.Options{})
	if err != nil {
		return fmt.Errorf("opening %s: %w", filename, err)
	}

	fmt.Printf("version: %d\n", c.Version())
	fmt.Printf("functions: %d\n", c.FunctionCount())
	fmt.Printf("strings: %d\n", c.StringCount())

	if wantStrings {
		for i := 0; i < c.StringCount(); i++ {
			text, slot, err := c.GetString(i)
			if err != nil {
				fmt.Printf("string %d: error: %v\n", i, err)
				continue
			}
			fmt.Printf("string %d: %s\n", i, prettyPrint(struct {
				Text string
				Slot hbc.StringTableEntry
			}{text, slot}))
		}
	}

	if wantArrays {
		for i := 0; i < c.ArrayBufferSize(); i++ {
			kind, values, err := c.GetArray(i)
			if err != nil {
				continue
			}
			fmt.Printf("array @%d: %s\n", i, prettyPrint(struct {
				Kind   string
				Values []hbc.SLPValue
			}{kind, values}))
		}
	}

	return nil
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump an HBC container's tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpFile(args[0])
		},
	}
	cmd.Flags().BoolVar(&wantStrings, "strings", false, "Dump every string table entry")
	cmd.Flags().BoolVar(&wantArrays, "arrays", false, "Scan and dump array buffer groups")
	return cmd
}

func newSetStringCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "set-string <file> <sid> <value>",
		Short: "Patch a string slot and re-export the container",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			var sid int
			if _, err := fmt.Sscanf(args[1], "%d", &sid); err != nil {
				return fmt.Errorf("invalid string id %q: %w", args[1], err)
			}
			value := args[2]

			c, err := hbc.Open(filename, &hbc.Options{})
			if err != nil {
				return fmt.Errorf("opening %s: %w", filename, err)
			}
			if err := c.SetString(sid, value); err != nil {
				return fmt.Errorf("set-string: %w", err)
			}
			out, err := c.Export()
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if output == "" {
				output = filename + ".patched"
			}
			return os.WriteFile(output, out, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <file>.patched)")
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:   "hbctool",
		Short: "Inspect and patch Hermes Bytecode (HBC) container files",
	}
	root.AddCommand(newDumpCmd(), newSetStringCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
