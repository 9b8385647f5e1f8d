package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/go-contentgraph-client/pkg/querybuilder"
)

func newBuildCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:     "build [definition-file]",
		Short:   "build a GraphQL query from a YAML or JSON query definition",
		Example: "contentgraph build articles.yaml --pretty",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadDefinition(cmd, args)
			if err != nil {
				return err
			}
			query := querybuilder.BuildQuery(def)
			if pretty {
				query = querybuilder.FormatQuery(query)
			}
			fmt.Fprintln(cmd.OutOrStdout(), query)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "format the generated query")
	return cmd
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format [query-file]",
		Short: "re-indent GraphQL query text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), querybuilder.FormatQuery(string(data)))
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [query-file]",
		Short: "check braces and string literals of GraphQL query text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ok, problems := querybuilder.ValidateQuery(string(data))
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Query is valid")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return errCommandFailed
		},
	}
}

func loadDefinition(cmd *cobra.Command, args []string) (querybuilder.QueryDefinition, error) {
	data, err := readInput(cmd, args)
	if err != nil {
		return querybuilder.QueryDefinition{}, err
	}
	return querybuilder.DecodeDefinition(bytes.NewReader(data))
}
