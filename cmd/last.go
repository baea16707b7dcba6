package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/dbrowse/dbrowse/internal/config"
	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/model"
	"github.com/dbrowse/dbrowse/internal/model1"
	"github.com/dbrowse/dbrowse/internal/render"
)

// errInactive is returned when the store could not be reached.
var errInactive = errors.New("metadata store not reachable")

func newLastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Print the most recent runs and the selected run's details",
		Args:  cobra.NoArgs,
		RunE:  runLast,
	}
}

func runLast(cmd *cobra.Command, _ []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	broker, err := dao.BrokerFor(s.factory)
	if err != nil {
		return err
	}
	timeout, err := s.cfg.Dbrowse.GetAPITimeout()
	if err != nil {
		timeout = config.DefaultAPITimeout
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	b := model.NewBrowser(broker)
	if err := printLast(ctx, cmd.OutOrStdout(), b, s.factory.Store(), s.cfg.RetrievalCount(), s.cfg.Selection()); err != nil {
		return err
	}

	if c := s.cfg.Dbrowse.ActiveContext(); c != nil {
		c.SetCount(b.Count())
		c.SetSelection(string(b.Selected()))
	}
	return s.cfg.Dbrowse.SaveContext()
}

// printLast retrieves the last n runs and writes the status line, the run
// list, and the summary and channels of the selected run. selection picks the
// run by uid or uid prefix, the newest run when empty.
func printLast(ctx context.Context, w io.Writer, b *model.Browser, store string, n int, selection string) error {
	if err := b.SetRetrievalCount(ctx, n); err != nil {
		return err
	}

	status := b.Status()
	fmt.Fprintln(w, statusLine(status))
	if !status.Active {
		return errInactive
	}

	headers := b.Headers()
	if len(headers) == 0 {
		return nil
	}
	if err := printTable(w, render.KindDataset, store, render.DatasetObjects(headers)); err != nil {
		return err
	}

	uid := headers[0].UID
	if selection != "" {
		var found bool
		if uid, found = dao.MatchUID(headers, selection); !found {
			return fmt.Errorf("%w: %s", model.ErrUnknownDataset, selection)
		}
	}
	if err := b.Select(uid); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n# %s\n", uid)
	if err := printSummary(w, b.Summary()); err != nil {
		return err
	}
	fmt.Fprintln(w)

	return printTable(w, render.KindChannel, store, render.ChannelObjects(b.Channels()))
}

func statusLine(s model.Status) string {
	if s.Active {
		return "[active] " + s.Message
	}
	return "[inactive] " + s.Message
}

// printTable renders objects with the renderer of the given kind.
func printTable(w io.Writer, kind, store string, oo []any) error {
	r, err := render.RendererFor(kind)
	if err != nil {
		return err
	}

	header := r.Header(store)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header.Names(true), "\t"))

	for _, o := range oo {
		row := model1.NewRow(len(header))
		if err := r.Render(o, store, &row); err != nil {
			return err
		}
		fmt.Fprintln(tw, strings.Join(row.Fields, "\t"))
	}

	return tw.Flush()
}

// printSummary writes the summary as YAML in display order.
func printSummary(w io.Writer, s model.Summary) error {
	om := orderedmap.New[string, any]()
	for _, f := range render.SummaryFields(s) {
		v := f.Value
		if sec, ok := v.(float64); ok && f.Name == dao.FieldTime {
			v = render.FormatEpoch(sec)
		}
		om.Set(f.Name, v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(om); err != nil {
		return err
	}
	return enc.Close()
}
