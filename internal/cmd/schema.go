package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/willfong/incremental-datagen/internal/database"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema [type]",
	Short: "Output the landing table DDL",
	Long: `Output the SQL for the raw_transactions_day1..3 landing tables.

Available schema types:
  full      Tables and indexes (default)
  tables    Tables only, no indexes (for bulk loading)
  indexes   Indexes only (run after loading)

The table prefix comes from database.table_prefix.

Examples:
  datagen schema                        # Output complete schema
  datagen schema tables | mysql -u root dw
  datagen schema indexes -o indexes.sql`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSchema,
}

var schemaOutputFile string

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutputFile, "output", "o", "", "output file (default: stdout)")
}

func runSchema(cmd *cobra.Command, args []string) {
	u := newUI()
	cfg, _ := setup(u)

	schemaType := "full"
	if len(args) > 0 {
		schemaType = args[0]
	}

	var files []string
	switch schemaType {
	case "full":
		files = []string{database.TablesSchema, database.IndexesSchema}
	case "tables":
		files = []string{database.TablesSchema}
	case "indexes":
		files = []string{database.IndexesSchema}
	default:
		fmt.Fprintln(os.Stderr, u.Error(fmt.Sprintf("Unknown schema type '%s'", schemaType)))
		fmt.Fprintln(os.Stderr, "Valid types: full, tables, indexes")
		os.Exit(1)
	}

	tables := make([]string, 0, 3)
	for day := 1; day <= 3; day++ {
		tables = append(tables, database.TableName(cfg.Database.TablePrefix, day))
	}

	var content string
	for _, file := range files {
		sqlText, err := database.RenderSchema(file, tables)
		if err != nil {
			fail(u, "Reading schema", err)
		}
		content += sqlText + "\n"
	}

	if schemaOutputFile == "" {
		fmt.Print(content)
		return
	}

	if err := os.WriteFile(schemaOutputFile, []byte(content), 0644); err != nil {
		fail(u, "Writing schema", err)
	}
	fmt.Fprintln(os.Stderr, u.Success(fmt.Sprintf("Schema written to %s", schemaOutputFile)))
}
