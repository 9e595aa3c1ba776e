// Command roster inspects and dry-runs roster seed files used by the API at startup.
//
// Usage:
//
//	roster validate [file]
//	roster print [file]
//	roster check [file]
//
// Without a file the embedded sample roster is used.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/straye-as/attendance-api/internal/config"
	"github.com/straye-as/attendance-api/internal/database"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/seed"
	"github.com/straye-as/attendance-api/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var timezone string

	root := &cobra.Command{
		Use:          "roster",
		Short:        "Inspect attendance roster seed files",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&timezone, "timezone", "Local", "IANA timezone used to interpret dateAdded")

	root.AddCommand(
		&cobra.Command{
			Use:   "validate [file]",
			Short: "Parse and validate a roster file",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				roster, err := loadRoster(args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok: %d students, %d classes\n", len(roster.Students), len(roster.Classes))
				return nil
			},
		},
		&cobra.Command{
			Use:   "print [file]",
			Short: "Print the students and classes of a roster file",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				roster, err := loadRoster(args)
				if err != nil {
					return err
				}
				return printRoster(cmd.OutOrStdout(), roster)
			},
		},
		&cobra.Command{
			Use:   "check [file]",
			Short: "Load a roster into a throwaway in-memory store",
			Long: "Migrates a fresh in-memory database, applies the roster twice and reports\n" +
				"what was inserted. The second pass must insert nothing.",
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				roster, err := loadRoster(args)
				if err != nil {
					return err
				}
				cfg := &config.AppConfig{Timezone: timezone}
				loc, err := cfg.Location()
				if err != nil {
					return err
				}
				return checkRoster(cmd.Context(), cmd.OutOrStdout(), roster, loc)
			},
		},
	)

	return root
}

func loadRoster(args []string) (*seed.Roster, error) {
	if len(args) == 0 {
		return seed.Default()
	}
	return seed.LoadFile(args[0])
}

func printRoster(w io.Writer, roster *seed.Roster) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tNAME\tDEPARTMENT\tADDED")
	for _, s := range roster.Students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Department, s.DateAdded)
	}
	if len(roster.Classes) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "CLASS\tDEPARTMENT")
		for _, c := range roster.Classes {
			fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Department)
		}
	}

	return tw.Flush()
}

func checkRoster(ctx context.Context, w io.Writer, roster *seed.Roster, loc *time.Location) error {
	db, err := database.NewDatabase(&config.DatabaseConfig{
		Name:         "roster_check_" + uuid.NewString(),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	studentRepo := repository.NewStudentRepository(db)
	loader := seed.NewLoader(studentRepo, repository.NewClassRepository(db), loc, time.Now, zap.NewNop())

	first, err := loader.Apply(ctx, roster)
	if err != nil {
		return err
	}
	second, err := loader.Apply(ctx, roster)
	if err != nil {
		return err
	}
	if second.Students != 0 || second.Classes != 0 {
		return fmt.Errorf("roster is not idempotent: second pass inserted %d students, %d classes", second.Students, second.Classes)
	}

	next, err := studentRepo.NextSequence(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "inserted %d students, %d classes; next student id %s\n", first.Students, first.Classes, service.FormatStudentID(next))
	return nil
}
