package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/cyverse-de/identitystore-admin/client/identitystore"
)

type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatTable, FormatJSON:
		return f, nil
	default:
		return "", errors.Errorf("unknown output format %q (use text, table or json)", s)
	}
}

// Printer writes command results. Status lines are always plain text; the
// format only applies to listings.
type Printer struct {
	w      io.Writer
	format OutputFormat
}

func NewPrinter(w io.Writer, format OutputFormat) *Printer {
	if format == "" {
		format = FormatText
	}
	return &Printer{w: w, format: format}
}

func (p *Printer) Linef(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Users(users []identitystore.User) error {
	switch p.format {
	case FormatJSON:
		return p.json(users)
	case FormatTable:
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.UserName, u.DisplayName, u.ID})
		}
		p.table([]string{"User Name", "Display Name", "User ID"}, rows)
	default:
		for _, u := range users {
			p.Linef("UserName:%s,Display Name: %s ", u.UserName, u.DisplayName)
		}
	}
	return nil
}

// GroupNames lists groups by display name only in text mode.
func (p *Printer) GroupNames(groups []identitystore.Group) error {
	if p.format == FormatText {
		for _, g := range groups {
			p.Linef("%s", g.DisplayName)
		}
		return nil
	}
	return p.Groups(groups)
}

func (p *Printer) Groups(groups []identitystore.Group) error {
	switch p.format {
	case FormatJSON:
		return p.json(groups)
	case FormatTable:
		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []string{g.DisplayName, g.ID, g.Description})
		}
		p.table([]string{"Group Name", "Group ID", "Description"}, rows)
	default:
		for _, g := range groups {
			p.Linef("Group:%s GroupId:%s", g.DisplayName, g.ID)
		}
	}
	return nil
}

func (p *Printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "Failed to encode JSON output")
	}
	return nil
}

func (p *Printer) table(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(p.w)
	table.SetHeader(headers)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(rows)
	table.Render()
}
