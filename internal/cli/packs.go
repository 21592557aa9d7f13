package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"creed-trivia/internal/packs"
	"github.com/spf13/cobra"
)

// NewPacksCmd groups pack administration.
func NewPacksCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packs",
		Short: "List, enable, disable or import question packs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Load every pack and print normalization counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()

			off, err := svc.disabled.Load(cmd.Context())
			if err != nil {
				return err
			}
			pool := svc.library.Load(cmd.Context())
			reports := make(map[string]packs.PackReport, len(pool.Packs))
			for _, r := range pool.Packs {
				reports[r.PackID] = r
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PACK\tSTATUS\tRAW\tNORMALIZED\tUSABLE\tDEFAULTED\tERROR")
			for _, src := range svc.library.Sources() {
				status := "enabled"
				switch {
				case !src.Enabled:
					status = "off"
				case off[src.ID]:
					status = "disabled"
				}
				r := reports[src.ID]
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n", src.ID, status,
					r.Counts.Raw, r.Counts.Normalized, r.Counts.Usable, r.Counts.Defaulted, r.Error)
			}
			d := pool.Diagnostics
			fmt.Fprintf(w, "TOTAL\t\t%d\t%d\t%d\t%d\t\n", d.Raw, d.Normalized, d.Usable, d.Defaulted)
			if d.Fallback {
				fmt.Fprintf(w, "fallback\tin use\t\t%d\t\t\t\n", len(pool.Questions))
			}
			return w.Flush()
		},
	}

	toggle := func(use, short string, enable bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <pack-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := loadServices(cmd.Context(), *configPath)
				if err != nil {
					return err
				}
				defer svc.Close()
				if enable {
					err = svc.disabled.Enable(cmd.Context(), args[0])
				} else {
					err = svc.disabled.Disable(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pack %s %sd\n", args[0], use)
				return nil
			},
		}
	}

	importCmd := &cobra.Command{
		Use:   "import <pack-id> <file>",
		Short: "Store a pack file in Postgres (reference it as pg:<pack-id>)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			raws, err := packs.DecodePack(data)
			if err != nil {
				return err
			}

			svc, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()
			if svc.packsDB == nil {
				return fmt.Errorf("postgres url not configured")
			}
			if err := svc.packsDB.SavePack(cmd.Context(), args[0], data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d questions as %s%s\n", len(raws), packs.DatabasePrefix, args[0])
			return nil
		},
	}

	cmd.AddCommand(list,
		toggle("disable", "Skip a pack when building the question pool", false),
		toggle("enable", "Include a previously disabled pack again", true),
		importCmd,
	)
	return cmd
}
