package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/revisit/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a JSON snapshot",
		Long:  "Import a snapshot (file or stdin) in the format produced by export. Topics already present are kept unless --replace is given.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	cmd.Flags().Bool("replace", false, "Replace the whole schedule with the snapshot")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	replace, _ := cmd.Flags().GetBool("replace")

	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open snapshot", err)
		}
		defer f.Close()
		r = f
	}

	items, err := store.DecodeSnapshot(r)
	if err != nil {
		exitErr("parse snapshot", err)
	}

	s := mustOpen(cmd)
	defer s.Close()

	imported, err := s.engine.Import(cmd.Context(), items, replace)
	if err != nil {
		s.Close()
		exitErr("import", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d,"total":%d}`+"\n", imported, len(s.engine.All()))
}
