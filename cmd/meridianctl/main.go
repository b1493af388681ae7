// meridianctl is an offline companion tool: it validates and recalculates
// document drafts exported as JSON, without a running server.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/meridian-erp/meridian/internal/catalog"
	"github.com/meridian-erp/meridian/internal/docform"
)

type draftFile struct {
	DocType string                 `json:"doc_type"`
	Header  docform.DocumentHeader `json:"header"`
	Lines   []docform.LineItem     `json:"lines"`
	Totals  docform.Totals         `json:"totals"`
}

func main() {
	root := &cobra.Command{
		Use:           "meridianctl",
		Short:         "Offline tooling for Meridian document drafts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var catalogPath, doctypesPath string
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "path to a catalog snapshot JSON file")
	root.PersistentFlags().StringVar(&doctypesPath, "doctypes", "", "path to a document type config YAML (defaults to built-in types)")

	root.AddCommand(newValidateCmd(&catalogPath, &doctypesPath))
	root.AddCommand(newRecalcCmd(&catalogPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newValidateCmd(catalogPath, doctypesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <draft.json>",
		Short: "Validate a draft and print its error map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := loadDraft(args[0])
			if err != nil {
				return err
			}
			registry, err := loadRegistry(*doctypesPath)
			if err != nil {
				return err
			}
			if _, err := registry.Get(draft.DocType); err != nil {
				return err
			}
			snap, err := loadSnapshot(*catalogPath)
			if err != nil {
				return err
			}

			errs := docform.Validate(draft.Header, draft.Lines, snap)
			if len(errs) == 0 {
				cmd.Println("draft is valid")
				return nil
			}

			keys := make([]string, 0, len(errs))
			for k := range errs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				cmd.Printf("%s: %s\n", k, errs[k])
			}
			return fmt.Errorf("%d issue(s) found", len(errs))
		},
	}
}

func newRecalcCmd(catalogPath *string) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "recalc <draft.json>",
		Short: "Recompute derived amounts and totals for a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := loadDraft(args[0])
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(*catalogPath)
			if err != nil {
				return err
			}

			for i := range draft.Lines {
				draft.Lines[i] = docform.RecomputeLine(draft.Lines[i], snap)
			}
			draft.Totals = docform.Aggregate(draft.Lines)

			if write {
				data, err := json.MarshalIndent(draft, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[0], data, 0o644); err != nil {
					return err
				}
			}

			cmd.Printf("product subtotal: %s\n", docform.FormatAmount(draft.Totals.ProductSubtotal))
			cmd.Printf("tax total:        %s\n", docform.FormatAmount(draft.Totals.TaxTotal))
			cmd.Printf("grand total:      %s\n", docform.FormatAmount(draft.Totals.GrandTotal))
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write recomputed amounts back to the draft file")
	return cmd
}

func loadDraft(path string) (*draftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	var draft draftFile
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	return &draft, nil
}

// loadSnapshot reads a catalog snapshot JSON file shaped as
// {"taxes":[...],"products":[...],...}. Without one, validation still runs but
// catalog lookups are skipped and tax codes resolve to nothing.
func loadSnapshot(path string) (*catalog.Snapshot, error) {
	if path == "" {
		return catalog.NewSnapshot(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var entries map[catalog.Kind][]catalog.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return catalog.NewSnapshot(entries), nil
}

func loadRegistry(path string) (*docform.Registry, error) {
	if path == "" {
		return docform.DefaultRegistry(), nil
	}
	return docform.LoadRegistry(path)
}
