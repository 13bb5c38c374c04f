package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/andreyvit/kvsearch"
	"github.com/spf13/cobra"
)

func refreshCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <table> <records.json|records.yaml>",
		Short: "Rebuild a table from a file of records",
		Long: `Delete every key of the table, index the records from the file and reset
total_count. Records without an identifier field are skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(args[1])
			if err != nil {
				return err
			}
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				n, err := idx.BulkReplace(cmd.Context(), args[0], records)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d records\n", n, len(records))
				return nil
			})
		},
	}
}

func searchCmd(g *globalFlags) *cobra.Command {
	var (
		field     string
		full      bool
		substring bool
	)

	cmd := &cobra.Command{
		Use:   "search <table> <text>",
		Short: "Print ids of records with a value starting with (or containing) text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []kvsearch.SearchOption
			if field != "" {
				opts = append(opts, kvsearch.InField(field))
			}
			if full {
				opts = append(opts, kvsearch.FullMatch())
			}
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				var ids []string
				var err error
				if substring {
					ids, err = idx.SearchSubstring(cmd.Context(), args[0], args[1], opts...)
				} else {
					ids, err = idx.SearchPrefix(cmd.Context(), args[0], args[1], opts...)
				}
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Search only this field")
	cmd.Flags().BoolVar(&full, "full", false, "Require the whole value to match")
	cmd.Flags().BoolVar(&substring, "substring", false, "Match text anywhere in the value")

	return cmd
}

func countCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "count <table>",
		Short: "Print total_count as of the last refresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				n, ok, err := idx.TotalCount(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("table %q has never been refreshed", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func upsertCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upsert <table> <id> <record-json>",
		Short: "Replace the index entries of one record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := parseRecord(args[2])
			if err != nil {
				return err
			}
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				return idx.UpsertRecord(cmd.Context(), args[0], args[1], rec)
			})
		},
	}
}

func updateFieldCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update-field <table> <id> <field> <value>",
		Short: "Replace the values of one field of a record",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				return idx.UpdateField(cmd.Context(), args[0], args[1], args[2], args[3])
			})
		},
	}
}

func deleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Remove the index entries of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				return idx.DeleteRecord(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func deleteFieldCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-field <table> <id> <field>",
		Short: "Remove the entries of one field of a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				return idx.DeleteField(cmd.Context(), args[0], args[1], args[2])
			})
		},
	}
}

func keysCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [table]",
		Short: "List the keys of a table, or every key in the store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var table string
			if len(args) > 0 {
				table = args[0]
			}
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				keys, err := idx.ListKeys(cmd.Context(), table)
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}
}

func auxCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aux",
		Short: "Read and write auxiliary JSON values",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <json>",
		Short: "Store a JSON value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any
			if err := json.Unmarshal([]byte(args[1]), &v); err != nil {
				return fmt.Errorf("invalid JSON: %w", err)
			}
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				return idx.SetAuxiliary(cmd.Context(), args[0], v)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print a JSON value (null when absent or malformed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				v, err := idx.GetAuxiliaryValue(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(v)
			})
		},
	})

	return cmd
}

func filterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <records.json|records.yaml> <needle>",
		Short: "Print records having a field value that contains needle",
		Long:  `Filter records from a file in memory, without touching the store. Matching is a raw, case-sensitive substring test.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range kvsearch.FilterByString(records, args[1]) {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func exportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every key of the namespace to a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			err = withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				n, err := idx.Export(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d keys\n", n)
				return nil
			})
			if err != nil {
				return err
			}
			return f.Close()
		},
	}
}

func importCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a snapshot file into the namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				n, err := idx.Import(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d keys\n", n)
				return nil
			})
		},
	}
}

func clearAllCmd(g *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Wipe the ENTIRE store (FLUSHALL), not just this namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to flush the whole store without --yes")
			}
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				return idx.ClearAll(cmd.Context())
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm wiping every key in the store")

	return cmd
}

func statsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <table>",
		Short: "Print entry, record and field counts of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				s, err := idx.TableStats(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "entries: %d\n", s.Entries)
				fmt.Fprintf(out, "records: %d\n", s.Records)
				if s.HasTotalCount {
					fmt.Fprintf(out, "total_count: %d\n", s.TotalCount)
				} else {
					fmt.Fprintln(out, "total_count: -")
				}
				for _, f := range s.FieldNames() {
					fmt.Fprintf(out, "field %s: %d\n", f, s.Fields[f])
				}
				return nil
			})
		},
	}
}

func dumpCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [table]",
		Short: "Print keys and values of a table or of the whole namespace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var table string
			if len(args) > 0 {
				table = args[0]
			}
			return withIndex(cmd.Context(), g, func(idx *kvsearch.Index) error {
				return idx.Dump(cmd.Context(), cmd.OutOrStdout(), table)
			})
		},
	}
}
