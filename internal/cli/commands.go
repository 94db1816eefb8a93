package cli

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mmdevice/internal/adapter"
	"mmdevice/internal/config"
	"mmdevice/internal/probe"
)

type adapterInfo struct {
	Name    string `json:"name" yaml:"name"`
	Builtin bool   `json:"builtin" yaml:"builtin"`
}

func newAdaptersCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "adapters",
		Short:   "List adapter modules found on the search paths and built in",
		Example: "  mmdevice adapters -p /opt/micro-manager",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := opts.manager(nil).Available()
			if err != nil {
				opts.log.Warn().Err(err).Msg("search path scan incomplete")
			}
			builtins := adapter.Builtins()
			infos := make([]adapterInfo, 0, len(names))
			for _, n := range names {
				infos = append(infos, adapterInfo{Name: n, Builtin: slices.Contains(builtins, n)})
			}
			return render(cmd.OutOrStdout(), opts.Output, infos, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ADAPTER\tSOURCE")
				for _, a := range infos {
					src := "library"
					if a.Builtin {
						src = "builtin"
					}
					fmt.Fprintf(tw, "%s\t%s\n", a.Name, src)
				}
			})
		},
	}
}

type deviceInfo struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

func newDevicesCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "devices <adapter>",
		Short:   "List the devices an adapter module can create",
		Example: "  mmdevice devices demo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := opts.manager(nil).Load(args[0])
			if err != nil {
				return err
			}
			defer mod.Release()
			names := mod.DeviceNames()
			sort.Strings(names)
			infos := make([]deviceInfo, 0, len(names))
			for _, n := range names {
				infos = append(infos, deviceInfo{Name: n, Type: mod.DeviceType(n).String(), Description: mod.DeviceDescription(n)})
			}
			return render(cmd.OutOrStdout(), opts.Output, infos, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "DEVICE\tTYPE\tDESCRIPTION")
				for _, d := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.Type, d.Description)
				}
			})
		},
	}
}

func newProbeCmd(opts *Options) *cobra.Command {
	var cfgPath string
	var showEvents bool
	cmd := &cobra.Command{
		Use:     "probe",
		Short:   "Create, initialize and read every device in a config, then tear them down",
		Example: "  mmdevice probe --config rig.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config %s:\n%w", cfgPath, err)
			}
			// config search paths come after the ones given on the command line
			opts.SearchPaths = append(opts.SearchPaths, cfg.SearchPaths...)

			pub := adapter.NewMemoryPublisher()
			s := probe.NewSession(opts.manager(pub), probe.LogCore{Log: opts.log}, opts.log)
			openErr := s.Open(cfg.Devices)
			reports := s.Report()
			s.Close()

			out := cmd.OutOrStdout()
			err = render(out, opts.Output, reports, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "LABEL\tADAPTER\tDEVICE\tTYPE\tSTATE\tVALUES")
				for _, r := range reports {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Label, r.Adapter, r.Device, r.Type, r.State, formatValues(r))
				}
			})
			if err != nil {
				return err
			}
			if showEvents {
				for _, e := range pub.Events() {
					fmt.Fprintf(out, "event %s module=%s device=%s\n", e.Name, e.Module, e.Device)
				}
			}
			return openErr
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Probe config file (.yaml, .json or .toml)")
	cmd.Flags().BoolVar(&showEvents, "events", false, "Print adapter lifecycle events")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func formatValues(r probe.Report) string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+len(r.Errors))
	for _, k := range keys {
		parts = append(parts, k+"="+r.Values[k])
	}
	parts = append(parts, r.Errors...)
	return strings.Join(parts, " ")
}
