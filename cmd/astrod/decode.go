//go:build cgo

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/srg/astrod/internal/fault"
	"github.com/srg/astrod/internal/ffi"
	"github.com/srg/astrod/internal/record"
)

func init() {
	extraCommands = append(extraCommands, newDecodeCmd)
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode a setting notification payload",
		Long: `Decodes a hex-encoded setting read notification the same way the
libastro shared library does and prints the record. Reads stdin when no
argument is given. Whitespace and colons in the input are ignored.

Examples:
  astrod decode 2a00000000000000f01b...
  pbpaste | astrod decode --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDecode,
	}
	cmd.Flags().String("format", formatText, "Output format (text, json)")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	var input string
	if len(args) == 1 {
		input = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		input = string(data)
	}

	payload, err := parseHex(input)
	if err != nil {
		return err
	}

	h := ffi.DecodeBytes(payload)
	if h.IsNull() {
		return fault.New(fault.Decode, "decode", "%d bytes are not a setting record", len(payload))
	}
	defer h.Release()

	r := h.Record()
	out := cmd.OutOrStdout()
	if format == formatJSON {
		data, err := recordsJSON([]*record.ConfigRecord{r})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	newPalette(out, noColor).writeRecord(out, r)
	return nil
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':':
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, fault.New(fault.MalformedInput, "decode", "empty input")
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fault.Wrap(fault.MalformedInput, "decode", err)
	}
	return data, nil
}
