package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/srg/astrod/internal/record"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/term"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// palette colours text output; colours are only used on a terminal.
type palette struct {
	id       *color.Color
	value    *color.Color
	choice   *color.Color
	readonly *color.Color
}

func newPalette(w io.Writer, noColor bool) *palette {
	p := &palette{
		id:       color.New(color.FgCyan, color.Bold),
		value:    color.New(color.FgGreen),
		choice:   color.New(color.Faint),
		readonly: color.New(color.FgYellow),
	}
	enabled := !noColor && isTerminal(w)
	for _, c := range []*color.Color{p.id, p.value, p.choice, p.readonly} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format %q (must be %s or %s)", format, formatText, formatJSON)
	}
}

// writeRecord renders one record as
//
//	iso = 800 [read-only]
//	  choices: 100, 200, ...
func (p *palette) writeRecord(w io.Writer, r *record.ConfigRecord) {
	fmt.Fprintf(w, "%s = %s", p.id.Sprint(r.ID), p.value.Sprint(r.Value))
	if r.Readonly {
		fmt.Fprintf(w, " %s", p.readonly.Sprint("[read-only]"))
	}
	fmt.Fprintln(w)
	if len(r.Choices) > 0 {
		fmt.Fprintf(w, "  choices: %s\n", p.choice.Sprint(strings.Join(r.Choices, ", ")))
	}
}

// recordsJSON keeps records in driver order, keyed by setting id.
func recordsJSON(records []*record.ConfigRecord) ([]byte, error) {
	om := orderedmap.New[string, *record.ConfigRecord]()
	for _, r := range records {
		om.Set(r.ID, r)
	}
	return json.MarshalIndent(om, "", "  ")
}
