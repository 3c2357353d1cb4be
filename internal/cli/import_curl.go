package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newImportCurlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-curl [file|-]",
		Short: "Save credentials from a curl command",
		Long: `Read a curl command copied from the browser ("Copy as cURL" on a
points-history request) and save its cookie and headers. With no argument
or "-" the command is read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readCurl(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			creds, err := e.manager.ImportCurl(cmd.Context(), raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Credentials saved.")
			if creds.Revision == "" || creds.TagID == "" {
				fmt.Fprintln(out, "Revision or tag id missing; the stored defaults will be used.")
			}
			return nil
		},
	}
}

func readCurl(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read curl command: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return "", fmt.Errorf("empty curl command")
	}
	return raw, nil
}
