package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/QuickFlo/condkit/internal/core/db"
	"github.com/QuickFlo/condkit/internal/store"
	"github.com/spf13/cobra"
)

var setsTemplate bool

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Manage named condition sets",
}

var setsSaveCmd = &cobra.Command{
	Use:   "save <name> [file]",
	Short: "Save a JSONLogic document under a name (reads stdin without a file)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSetsSave,
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored condition sets",
	Args:  cobra.NoArgs,
	RunE:  runSetsList,
}

var setsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored condition set's JSONLogic",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetsShow,
}

var setsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored condition set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetsDelete,
}

func init() {
	rootCmd.AddCommand(setsCmd)
	setsCmd.AddCommand(setsSaveCmd, setsListCmd, setsShowCmd, setsDeleteCmd)
	setsSaveCmd.Flags().BoolVar(&setsTemplate, "template", false, "store under {{path}} template syntax")
}

// openStore connects to the configured database and wires up the store.
// The returned closer owns the connection.
func openStore() (*store.Store, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	queries, err := db.LoadQueries(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}

	return store.New(queries), conn.Close, nil
}

func runSetsSave(cmd *cobra.Command, args []string) error {
	st, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer()

	var data []byte
	if len(args) == 2 {
		data, err = os.ReadFile(args[1])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	templateMode := setsTemplate
	if !cmd.Flags().Changed("template") {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		templateMode = cfg.TemplateSyntax
	}

	set, err := st.Save(cmd.Context(), args[0], json.RawMessage(data), templateMode)
	if err != nil {
		return err
	}

	fmt.Printf("saved %s (%s)\n", set.Name, set.SetID)
	return nil
}

func runSetsList(cmd *cobra.Command, args []string) error {
	st, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer()

	sets, err := st.List(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTEMPLATE\tUPDATED")
	for _, set := range sets {
		mode := "-"
		if set.TemplateMode {
			mode = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", set.Name, mode, set.UpdatedAt)
	}
	return w.Flush()
}

func runSetsShow(cmd *cobra.Command, args []string) error {
	st, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer()

	set, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var value any
	if err := json.Unmarshal([]byte(set.Logic), &value); err != nil {
		return fmt.Errorf("stored logic is corrupt: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, value, cfg.Pretty)
}

func runSetsDelete(cmd *cobra.Command, args []string) error {
	st, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer()

	if err := st.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
