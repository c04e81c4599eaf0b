package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"sjsage522/vesselschedule/config"
	"sjsage522/vesselschedule/internal/crawler"
	"sjsage522/vesselschedule/internal/schedule"
	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
	"sjsage522/vesselschedule/services/worker"
)

// runner carries what every command needs once the services are up
type runner struct {
	cfg      *config.Config
	adapters []crawler.Adapter
	out      io.Writer

	services *Services
	worker   *worker.Worker
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, adapters []crawler.Adapter, out io.Writer) *cli.App {
	r := &runner{cfg: cfg, adapters: adapters, out: out}
	app := &cli.App{
		Name:      "vesselschedule",
		Usage:     "Look up vessel arrival and departure schedules at Thai container terminals",
		ArgsUsage: "<adapter> [vessel] [voyage] [terminal]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "publish", Usage: "Publish results to the Redis stream"},
		},
		Before: r.setup,
		After: func(*cli.Context) error {
			r.services.Cleanup()
			return nil
		},
		Action: r.lookupCmd,
		Commands: []*cli.Command{
			r.bulkCmd(),
			r.batchCmd(),
			r.terminalsCmd(),
		},
	}
	// exit codes are decided by main, not by the library
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func (r *runner) setup(c *cli.Context) error {
	services, err := initializeServices(c.Context, r.cfg, c.Bool("publish"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	r.services = services
	r.worker = worker.NewWorker(worker.OptionsFromConfig(r.cfg), services.Dependencies())
	return nil
}

// lookupCmd runs a single-vessel lookup, or a bulk listing when only the adapter
// is named. Everything after the adapter name is reported as JSON, including
// unknown adapters and invalid queries.
func (r *runner) lookupCmd(c *cli.Context) error {
	switch c.NArg() {
	case 0:
		return cli.Exit(fmt.Sprintf("usage: %s %s", c.App.Name, c.App.ArgsUsage), 1)
	case 1:
		return r.runBulk(c, c.Args().First())
	}
	args := c.Args()
	name := args.Get(0)

	a, ok := crawler.Lookup(r.adapters, name)
	if !ok {
		return r.fail(schedule.Failure(name, unknownAdapter(name, r.adapters)))
	}
	q, err := schedule.NewQuery(args.Get(1), args.Get(2), args.Get(3))
	if err != nil {
		return r.fail(schedule.Failure(a.Terminal(), scrapeerrors.NewConfiguration(err.Error(), err)))
	}

	res := r.worker.Lookup(c.Context, a, q)
	r.worker.TrimStreams(c.Context)
	if !res.Success {
		return r.fail(res)
	}
	return outputJSON(r.out, res)
}

// bulkCmd creates the bulk command, an explicit spelling of "<adapter>" alone.
func (r *runner) bulkCmd() *cli.Command {
	return &cli.Command{
		Name:      "bulk",
		Usage:     "List every vessel a terminal currently shows",
		ArgsUsage: "<adapter>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: bulk <adapter>", 1)
			}
			return r.runBulk(c, c.Args().First())
		},
	}
}

// runBulk lists every vessel on the named terminal
func (r *runner) runBulk(c *cli.Context, name string) error {
	a, ok := crawler.Lookup(r.adapters, name)
	if !ok {
		return r.fail(schedule.BulkFailure(name, unknownAdapter(name, r.adapters)))
	}

	res := r.worker.Bulk(c.Context, a)
	r.worker.TrimStreams(c.Context)
	if !res.Success {
		return r.fail(res)
	}
	return outputJSON(r.out, res)
}

// batchCmd creates the batch command.
func (r *runner) batchCmd() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Look one vessel up on several terminals at once",
		ArgsUsage: "<vessel> [voyage]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "terminals", Aliases: []string{"t"}, Usage: "Comma-separated adapter names (default: all)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("usage: batch <vessel> [voyage] --terminals a,b", 1)
			}
			q, err := schedule.NewQuery(c.Args().Get(0), c.Args().Get(1), "")
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			adapters := r.adapters
			if names := parseList(c.String("terminals")); len(names) > 0 {
				adapters = adapters[:0:0]
				for _, name := range names {
					a, ok := crawler.Lookup(r.adapters, name)
					if !ok {
						return cli.Exit(unknownAdapter(name, r.adapters).Error(), 1)
					}
					adapters = append(adapters, a)
				}
			}

			results := r.worker.Batch(c.Context, adapters, q)
			if err := outputJSON(r.out, results); err != nil {
				return err
			}
			for _, res := range results {
				if !res.Success {
					return cli.Exit("", 1)
				}
			}
			return nil
		},
	}
}

type terminalInfo struct {
	Name     string `json:"name"`
	Terminal string `json:"terminal"`
	Flow     string `json:"flow,omitempty"`
	Bulk     bool   `json:"bulk"`
}

// terminalsCmd creates the terminals command.
func (r *runner) terminalsCmd() *cli.Command {
	return &cli.Command{
		Name:  "terminals",
		Usage: "List the available adapters",
		Action: func(c *cli.Context) error {
			infos := make([]terminalInfo, 0, len(r.adapters))
			for _, a := range r.adapters {
				info := terminalInfo{Name: a.Name(), Terminal: a.Terminal(), Bulk: a.SupportsBulk()}
				if b, ok := a.(*crawler.BaseAdapter); ok {
					info.Flow = b.Config.Flow.String()
				}
				infos = append(infos, info)
			}
			return outputJSON(r.out, infos)
		},
	}
}

// fail writes a failed envelope and turns it into exit status 1
func (r *runner) fail(v any) error {
	if err := outputJSON(r.out, v); err != nil {
		return err
	}
	return cli.Exit("", 1)
}

func unknownAdapter(name string, adapters []crawler.Adapter) error {
	return scrapeerrors.NewConfiguration(
		fmt.Sprintf("unknown adapter %q (available: %s)", name, strings.Join(crawler.Names(adapters), ", ")), nil)
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseList splits a comma-separated list, dropping blanks.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}
