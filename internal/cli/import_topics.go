package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/revisit/internal/ingest"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import-topics <file>",
		Short: "Add topics from an XLSX or CSV list",
		Long:  "Add one topic per row of an .xlsx or .csv file. Names that already exist are skipped.",
		Args:  cobra.ExactArgs(1),
		Run:   runImportTopics,
	}

	cmd.Flags().String("sheet", "", "Sheet name (xlsx only, default: first sheet)")
	cmd.Flags().Int("name-col", 1, "1-based column holding the topic name")
	cmd.Flags().Int("desc-col", 2, "1-based column holding the description (0 for none)")
	cmd.Flags().Bool("no-header", false, "The first row is data, not a header")

	RootCmd.AddCommand(cmd)
}

func runImportTopics(cmd *cobra.Command, args []string) {
	sheet, _ := cmd.Flags().GetString("sheet")
	nameCol, _ := cmd.Flags().GetInt("name-col")
	descCol, _ := cmd.Flags().GetInt("desc-col")
	noHeader, _ := cmd.Flags().GetBool("no-header")

	topics, err := ingest.ReadFile(args[0], ingest.Options{
		Sheet:             sheet,
		NameColumn:        nameCol - 1,
		DescriptionColumn: descCol - 1,
		SkipHeader:        !noHeader,
	})
	if err != nil {
		exitErr("read topics", err)
	}

	s := mustOpen(cmd)
	defer s.Close()

	res, err := ingest.Import(cmd.Context(), s.engine, topics)
	if err != nil {
		s.Close()
		exitErr("import topics", err)
	}
	printJSON(cmd, res)
}
