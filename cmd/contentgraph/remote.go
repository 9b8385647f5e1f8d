package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	graphql "github.com/llehouerou/go-contentgraph-client"
	"github.com/llehouerou/go-contentgraph-client/pkg/querybuilder"
	"github.com/llehouerou/go-contentgraph-client/pkg/schema"
)

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "check that the endpoint answers an introspection probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			ok, msg := client.TestConnection(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if !ok {
				return errCommandFailed
			}
			return nil
		},
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	var (
		asJSON    bool
		queryable bool
	)
	cmd := &cobra.Command{
		Use:   "schema [content-type]",
		Short: "list the content types of the endpoint and their fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			cache := schema.NewCache(client, schema.WithLogger(a.log))
			info, err := cache.GetSchemaInfo(cmd.Context())
			if err != nil {
				return err
			}
			if info == nil {
				return errors.New("schema could not be loaded")
			}

			types := info.ContentTypes
			if len(args) == 1 {
				ct, ok := info.ContentType(args[0])
				if !ok {
					return fmt.Errorf("unknown content type %q", args[0])
				}
				types = []schema.ContentTypeInfo{ct}
			} else if queryable {
				types = slices.DeleteFunc(slices.Clone(types), func(ct schema.ContentTypeInfo) bool {
					return !ct.IsQueryable
				})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(types)
			}
			return printContentTypes(cmd.OutOrStdout(), types)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&queryable, "queryable", false, "only list queryable content types")
	return cmd
}

func printContentTypes(w io.Writer, types []schema.ContentTypeInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ct := range types {
		marker := ""
		if ct.IsQueryable {
			marker = " (queryable)"
		}
		fmt.Fprintf(tw, "%s%s\n", ct.Name, marker)
		for _, f := range ct.Fields {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Name, f.Type, strings.Join(f.AvailableOperators, ","))
		}
	}
	return tw.Flush()
}

func newExecCmd(a *app) *cobra.Command {
	var (
		definition bool
		variables  string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "exec [query-file]",
		Short: "run a query, or a query definition with --definition, and print the data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			req := graphql.Request{}
			if definition {
				def, err := loadDefinition(cmd, args)
				if err != nil {
					return err
				}
				req.Query = querybuilder.BuildQuery(def)
			} else {
				data, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				req.Query = string(data)
			}
			if variables != "" {
				if !gjson.Valid(variables) || !gjson.Parse(variables).IsObject() {
					return errors.New("--vars must be a JSON object")
				}
				if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
					return fmt.Errorf("problem decoding --vars: %w", err)
				}
			}

			resp := client.Execute(cmd.Context(), req)
			if verbose {
				printDiagnostics(cmd.ErrOrStderr(), client.LastRequest())
			}
			if resp.Data != nil {
				var out bytes.Buffer
				if err := json.Indent(&out, *resp.Data, "", "  "); err != nil {
					return fmt.Errorf("problem formatting data: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out.String())
			}
			if resp.HasErrors() {
				for _, e := range resp.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", e.Message)
				}
				return errCommandFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&definition, "definition", false, "read a query definition instead of query text")
	cmd.Flags().StringVar(&variables, "vars", "", "query variables as a JSON object")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print request and response diagnostics")
	return cmd
}

func printDiagnostics(w io.Writer, info *graphql.LastRequestInfo) {
	if info == nil {
		return
	}
	fmt.Fprintf(w, "> %s %s\n", info.Method, info.URL)
	for _, k := range slices.Sorted(maps.Keys(info.RequestHeaders)) {
		fmt.Fprintf(w, "> %s: %s\n", k, info.RequestHeaders[k])
	}
	fmt.Fprintf(w, "> %s\n", info.RequestBody)
	fmt.Fprintf(w, "< %d in %s\n", info.StatusCode, info.Duration.Round(time.Millisecond))
	for _, k := range slices.Sorted(maps.Keys(info.ResponseHeaders)) {
		fmt.Fprintf(w, "< %s: %s\n", k, info.ResponseHeaders[k])
	}
}
