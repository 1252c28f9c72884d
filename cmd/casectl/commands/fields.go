package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

var fieldHeaders = []string{"ID", "Value", "Field", "Record"}

// NewFieldsCommand creates the fields command group for custom field values.
func NewFieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fields",
		Aliases: []string{"field"},
		Short:   "Read and write custom field values",
		Long:    "Find and upsert custom field values addressed by data collection group and field name",
	}

	cmd.AddCommand(newFieldsGetCommand())
	cmd.AddCommand(newFieldsSetCommand())
	cmd.AddCommand(newFundingCommand())

	return cmd
}

type fieldFlags struct {
	group string
	field string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.group, "group", "", "data collection name (required)")
	cmd.Flags().StringVar(&f.field, "field", "", "field name within the collection (required)")
}

func (f *fieldFlags) validate() error {
	if f.group == "" {
		return constants.ErrFieldGroupRequired
	}

	if f.field == "" {
		return constants.ErrFieldNameRequired
	}

	return nil
}

func newFieldsGetCommand() *cobra.Command {
	var flags fieldFlags

	cmd := &cobra.Command{
		Use:   "get ACTION_ID",
		Short: "Get a custom field value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := flags.validate()
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			value, err := client.FieldValues().Find(cmd.Context(), caseapi.ID(args[0]), flags.group, flags.field)
			if err != nil {
				return fmt.Errorf("failed to get field %s.%s: %w", flags.group, flags.field, err)
			}

			if value == nil {
				return fmt.Errorf("%w: %s.%s on action %s", ErrFieldNotSet, flags.group, flags.field, args[0])
			}

			return renderOutput(cmd, value, fieldHeaders, [][]string{fieldRow(value)})
		},
	}

	flags.register(cmd)

	return cmd
}

func newFieldsSetCommand() *cobra.Command {
	var flags fieldFlags

	cmd := &cobra.Command{
		Use:   "set ACTION_ID VALUE",
		Short: "Set a custom field value",
		Long:  "Update the field value on the action, creating the collection record first when none exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := flags.validate()
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			value, err := client.FieldValues().Upsert(cmd.Context(), caseapi.ID(args[0]), flags.group, flags.field, args[1])
			if err != nil {
				return fmt.Errorf("failed to set field %s.%s: %w", flags.group, flags.field, err)
			}

			return renderOutput(cmd, value, fieldHeaders, [][]string{fieldRow(value)})
		},
	}

	flags.register(cmd)

	return cmd
}

func newFundingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "funding ACTION_ID",
		Short: "Classify the funding source of an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			source, err := client.Classifier().FundingSource(cmd.Context(), caseapi.ID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to classify funding source: %w", err)
			}

			result := map[string]string{"action": args[0], "funding_source": source.String()}

			return renderOutput(cmd, result, []string{"Action", "Funding Source"},
				[][]string{{args[0], source.String()}})
		},
	}
}

func fieldRow(value *caseapi.DataCollectionRecordValue) []string {
	return []string{
		value.ID.String(),
		value.StringValue,
		orNA(value.Links.DataCollectionField.String()),
		orNA(value.Links.DataCollectionRecord.String()),
	}
}
