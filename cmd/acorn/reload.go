package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ARTM2000/acorn"
)

const flagCascade = "cascade"

func newReloadCmd(a *app) *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:   "reload <type>",
		Short: "Build the demo graph, reload one service and report what changed",
		Long: `Reload destroys and rebuilds one service of the demo graph. The type may
be given in full (*main.Database) or by its bare name (Database). With
--cascade every recorded dependent is rebuilt as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, err := a.bootstrap()
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, c.Shutdown(cmd.Context()))
			}()

			d, ok := findByName(c.ServicesDetails(), args[0])
			if !ok {
				return fmt.Errorf("%w: %q", acorn.ErrServiceNotFound, args[0])
			}

			before := c.Services()
			if err := c.Reload(d, cascade); err != nil {
				return err
			}
			printChanges(cmd.OutOrStdout(), c.ServicesDetails(), before)
			return nil
		},
		DisableAutoGenTag: true,
	}
	cmd.Flags().BoolVar(&cascade, flagCascade, false, "also reload every dependent")
	return cmd
}

// findByName matches either the full type string or the bare type name.
func findByName(descs []*acorn.Descriptor, name string) (*acorn.Descriptor, bool) {
	for _, d := range descs {
		full := d.Type().String()
		if full == name || shortName(full) == name {
			return d, true
		}
	}
	return nil, false
}

func shortName(typ string) string {
	typ = strings.TrimLeft(typ, "*")
	if i := strings.LastIndex(typ, "."); i >= 0 {
		return typ[i+1:]
	}
	return typ
}

func printChanges(w io.Writer, descs []*acorn.Descriptor, before []any) {
	changed := color.New(color.FgGreen)
	same := color.New(color.Faint)

	for i, d := range descs {
		if !acorn.SameInstance(d.Instance(), before[i]) {
			changed.Fprintf(w, "reloaded  %s\n", d.Type())
		} else {
			same.Fprintf(w, "unchanged %s\n", d.Type())
		}
	}
}
