package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/machbase/neo-crs/mods/crs"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func doResolve(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "table" && format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}
	boxStyle, err := cmd.Flags().GetString("box-style")
	if err != nil {
		return err
	}
	provider, closer, err := openProvider(cmd)
	if err != nil {
		return err
	}
	defer closer()

	descs := make([]*crs.Description, 0, len(args))
	for _, code := range args {
		cs, err := provider.GetCoordinateSystem(code)
		if err != nil {
			return err
		}
		descs = append(descs, crs.Describe(cs))
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(descs) == 1 {
			return enc.Encode(descs[0])
		}
		return enc.Encode(descs)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		if len(descs) == 1 {
			return enc.Encode(descs[0])
		}
		return enc.Encode(descs)
	default:
		for _, d := range descs {
			renderDescription(out, boxStyle, d)
		}
	}
	return nil
}

func doCodes(cmd *cobra.Command, args []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	boxStyle, err := cmd.Flags().GetString("box-style")
	if err != nil {
		return err
	}
	provider, closer, err := openProvider(cmd)
	if err != nil {
		return err
	}
	defer closer()

	header := []string{"#", "CODE", "ALIASES"}
	if check {
		header = append(header, "KIND", "RESULT")
	}
	box := newBox(cmd.OutOrStdout(), boxStyle, header)
	failures := 0
	for i, codes := range provider.AvailableCodes() {
		row := []any{i + 1, codes[0], strings.Join(codes[1:], ", ")}
		if check {
			cs, err := provider.GetCoordinateSystem(codes[0])
			if err != nil {
				failures++
				row = append(row, "", err.Error())
			} else {
				row = append(row, cs.Kind().String(), "ok")
			}
		}
		box.AppendRow(row...)
	}
	box.Render()
	if failures > 0 {
		return fmt.Errorf("%d coordinate systems failed", failures)
	}
	return nil
}

func renderDescription(out io.Writer, boxStyle string, d *crs.Description) {
	box := newBox(out, boxStyle, []string{"PROPERTY", "VALUE"})
	box.AppendRow("code", strings.Join(d.Codes, ", "))
	if d.Name != "" {
		box.AppendRow("name", d.Name)
	}
	box.AppendRow("kind", d.Kind)
	for i, a := range d.Axes {
		box.AppendRow(fmt.Sprintf("axis[%d]", i), fmt.Sprintf("%s %s (%s)", a.Name, a.Orientation, a.Unit))
	}
	if d.Underlying != "" {
		box.AppendRow("underlying", d.Underlying)
	}
	if d.DefaultHeight != nil {
		box.AppendRow("default height", *d.DefaultHeight)
	}
	if dt := d.Datum; dt != nil {
		box.AppendRow("datum", dt.Code)
		box.AppendRow("ellipsoid", fmt.Sprintf("%s a=%v 1/f=%v", dt.Ellipsoid, dt.SemiMajorAxis, dt.InverseFlattening))
		box.AppendRow("prime meridian", fmt.Sprintf("%s %v°", dt.PrimeMeridian, dt.Longitude))
		if len(dt.ToWGS84) > 0 {
			box.AppendRow("towgs84", strings.Trim(fmt.Sprint(dt.ToWGS84), "[]"))
		}
	}
	if p := d.Projection; p != nil {
		box.AppendRow("projection", p.Kind)
		box.AppendRow("natural origin", fmt.Sprintf("lat %v° lon %v°", p.Latitude, p.Longitude))
		box.AppendRow("scale factor", p.ScaleFactor)
		box.AppendRow("false easting", p.FalseEasting)
		box.AppendRow("false northing", p.FalseNorthing)
	}
	for i, t := range d.Transformations {
		box.AppendRow(fmt.Sprintf("transformation[%d]", i), fmt.Sprintf("%s -> %s", t.Kind, t.Target))
	}
	box.Render()
}

type Box interface {
	AppendRow(row ...any)
	Render() string
}

func newBox(mirror io.Writer, boxStyle string, header []string) Box {
	b := &boxEnc{w: table.NewWriter()}
	b.w.SetOutputMirror(mirror)

	style := table.StyleDefault
	switch boxStyle {
	case "bold":
		style = table.StyleBold
	case "double":
		style = table.StyleDouble
	case "light":
		style = table.StyleLight
	case "round":
		style = table.StyleRounded
	}
	b.w.SetStyle(style)

	vs := make([]any, len(header))
	for i, h := range header {
		vs[i] = h
	}
	b.w.AppendHeader(table.Row(vs))
	return b
}

type boxEnc struct {
	w table.Writer
}

func (b *boxEnc) AppendRow(row ...any) {
	b.w.AppendRow(row)
}

func (b *boxEnc) Render() string {
	return b.w.Render()
}
