package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ARTM2000/acorn"
)

func newGraphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Build the demo graph and print it in construction order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.bootstrap()
			if err != nil {
				return err
			}
			printGraph(cmd.OutOrStdout(), c.ServicesDetails())

			svc := acorn.MustGet[*UserService](c)
			fmt.Fprintln(cmd.OutOrStdout(), "result:", svc.GetUser(42))

			return c.Shutdown(cmd.Context())
		},
		DisableAutoGenTag: true,
	}
}

func printGraph(w io.Writer, descs []*acorn.Descriptor) {
	index := color.New(color.FgCyan)
	name := color.New(color.Bold)
	producer := color.New(color.FgMagenta)
	faint := color.New(color.Faint)

	for i, d := range descs {
		index.Fprintf(w, "%2d. ", i+1)
		name.Fprint(w, d.Type())
		if d.Kind() == acorn.KindProducer {
			producer.Fprintf(w, " (produced by %s)", d.Owner().Type())
		}
		faint.Fprintf(w, " [%s]\n", d.Marker())

		if deps := d.Dependents(); len(deps) > 0 {
			names := make([]string, len(deps))
			for j, dep := range deps {
				names[j] = dep.Type().String()
			}
			faint.Fprintf(w, "    dependents: %s\n", strings.Join(names, ", "))
		}
	}
}
