package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jrowledge/staff-rota/internal/config"
	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/services"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
	"github.com/jrowledge/staff-rota/pkg/db"
	"github.com/jrowledge/staff-rota/pkg/postgres"
	"github.com/jrowledge/staff-rota/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	database *postgres.DB
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rota",
		Short: "Staff rota CLI - generate rosters and check working time compliance",
		Long:  `A CLI tool for generating staff rosters from repeating shift patterns, backfilling open slots, and checking rosters against the UK Working Time Regulations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.logger != nil {
					app.logger.Sync()
				}
				if app.database != nil {
					app.database.Close()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(backfillCmd())
	rootCmd.AddCommand(listStaffCmd())
	rootCmd.AddCommand(addStaffCmd())
	rootCmd.AddCommand(addShiftCmd())
	rootCmd.AddCommand(removeStaffCmd())
	rootCmd.AddCommand(removeShiftCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and database
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := app.database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Info("Database initialized successfully")

	return nil
}

// Command definitions

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <start_date> <num_weeks>",
		Short: "Generate a roster from the configured pattern and requirements",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := shifttime.ParseDate(args[0])
			if err != nil {
				return err
			}
			numWeeks, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("num_weeks must be a number: %w", err)
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := services.GenerateRoster(app.ctx, app.database, app.logger, app.cfg, start, numWeeks, dryRun)
			if err != nil {
				return err
			}

			fmt.Printf("\nRoster generated (version %s)\n\n", result.VersionID)
			fmt.Printf("Assignments: %d\n", len(result.Assignments))
			for code, count := range result.FilledByCode {
				fmt.Printf("  %s: %d\n", code, count)
			}

			if len(result.Shortfalls) > 0 {
				fmt.Printf("\n%d shifts could not be filled:\n", len(result.Shortfalls))
				for _, shortfall := range result.Shortfalls {
					fmt.Printf("  %s %s (%s): %s\n", shortfall.Date, shortfall.Code, shortfall.StaffID, shortfall.Reason)
				}
				fmt.Println("\nAdd more staff or relax rest constraints to close the gaps.")
			} else {
				fmt.Println("\nAll requirements met.")
			}

			if dryRun {
				fmt.Println("\nDry run - nothing was saved.")
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to database")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <from_date> <to_date>",
		Short: "Check the roster against the Working Time Regulations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := shifttime.ParseDate(args[0])
			if err != nil {
				return err
			}
			to, err := shifttime.ParseDate(args[1])
			if err != nil {
				return err
			}

			report, err := services.CheckCompliance(app.ctx, app.database, app.logger, app.cfg, from, to)
			if err != nil {
				return err
			}

			fmt.Printf("\nCompliance report %s to %s\n\n", args[0], args[1])
			for _, entry := range report.Staff {
				if len(entry.Violations) == 0 {
					continue
				}
				fmt.Printf("%s (%s) - fairness score %.1f\n", entry.Staff.Name, entry.Staff.ID, entry.FairnessScore)
				for _, v := range entry.Violations {
					fmt.Printf("  [%s] %s %s: %s\n", v.Severity, v.Date, v.Type, v.Message)
				}
				fmt.Println()
			}

			fmt.Printf("Total: %d critical, %d warnings across %d staff\n",
				report.CriticalCount, report.WarningCount, len(report.Staff))
			return nil
		},
	}
}

func backfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill <date> <shift_code>",
		Short: "Rank candidates for an open shift slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			commit, _ := cmd.Flags().GetBool("commit")

			result, err := services.BackfillSlot(app.ctx, app.database, app.logger, app.cfg, args[0], model.ShiftCode(args[1]), commit)
			if err != nil {
				return err
			}

			fmt.Printf("\nCandidates for %s shift on %s (%s-%s):\n\n",
				result.Slot.Code, result.Slot.Date, result.Slot.StartTime, result.Slot.EndTime)
			if len(result.Candidates) == 0 {
				fmt.Println("  No safe candidates available.")
				return nil
			}
			for i, candidate := range result.Candidates {
				fmt.Printf("  %2d. %s (%s)\n", i+1, candidate.Name, candidate.ID)
			}

			if result.Committed != nil {
				fmt.Printf("\nAssigned %s (assignment %s)\n", result.Candidates[0].Name, result.Committed.ID)
			}
			return nil
		},
	}

	cmd.Flags().Bool("commit", false, "Assign the top candidate")
	return cmd
}

func listStaffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "liststaff",
		Short: "List all staff members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			staff, err := app.database.GetStaff(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to list staff: %w", err)
			}

			fmt.Printf("\nFound %d staff members:\n\n", len(staff))
			for _, member := range staff {
				optOut := ""
				if member.OptedOut48Hour {
					optOut = " [48h opt-out]"
				}
				fmt.Printf("- %s (%s) - %s - %.1fh/week%s\n",
					member.Name, member.ID, member.Role, member.ContractedHours, optOut)
			}
			return nil
		},
	}
}

func addStaffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addstaff <name>",
		Short: "Add a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")
			rate, _ := cmd.Flags().GetFloat64("rate")
			hours, _ := cmd.Flags().GetFloat64("hours")
			dob, _ := cmd.Flags().GetString("dob")
			optOut, _ := cmd.Flags().GetBool("opt-out-48h")

			member := &db.Staff{
				ID:              uuid.New().String(),
				Name:            args[0],
				Role:            role,
				HourlyRate:      rate,
				ContractedHours: hours,
				OptedOut48Hour:  optOut,
			}
			if dob != "" {
				parsed, err := shifttime.ParseDate(dob)
				if err != nil {
					return fmt.Errorf("invalid date of birth: %w", err)
				}
				member.DateOfBirth = &parsed
			}

			if err := app.database.InsertStaff(app.ctx, member); err != nil {
				return fmt.Errorf("failed to add staff: %w", err)
			}

			fmt.Printf("Added %s (%s)\n", member.Name, member.ID)
			return nil
		},
	}

	cmd.Flags().String("role", "", "Job role")
	cmd.Flags().Float64("rate", 0, "Hourly rate")
	cmd.Flags().Float64("hours", 0, "Contracted weekly hours")
	cmd.Flags().String("dob", "", "Date of birth (2006-01-02), used for young worker checks")
	cmd.Flags().Bool("opt-out-48h", false, "Has signed the 48-hour average opt-out")
	return cmd
}

func addShiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addshift <staff_id> <date> <shift_code>",
		Short: "Manually add a shift for a staff member",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID, date := args[0], args[1]
			code := model.ShiftCode(args[2])

			if _, err := shifttime.ParseDate(date); err != nil {
				return err
			}

			var times model.ShiftTimes
			if configured, ok := app.cfg.ShiftTimes[string(code)]; ok {
				times = model.ShiftTimes{Start: configured.Start, End: configured.End}
			} else if def, ok := model.DefaultShiftTimeStandards()[code]; ok {
				times = def
			} else {
				return fmt.Errorf("unknown shift code %q", code)
			}

			shift := &db.Shift{
				ID:        uuid.New().String(),
				Date:      date,
				StartTime: times.Start,
				EndTime:   times.End,
				Code:      string(code),
				StaffID:   staffID,
			}

			if err := app.database.InsertShift(app.ctx, shift); err != nil {
				if errors.Is(err, db.ErrShiftConflict) {
					return fmt.Errorf("cannot add shift: %w", err)
				}
				return err
			}

			fmt.Printf("Shift %s added: %s %s for staff %s\n", shift.ID, date, code, staffID)
			return nil
		},
	}
}

func removeStaffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "removestaff <staff_id>",
		Short: "Remove a staff member and all of their shifts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID := args[0]

			shifts, err := app.database.GetShiftsForStaff(app.ctx, staffID)
			if err != nil {
				return err
			}

			if err := app.database.DeleteStaff(app.ctx, staffID); err != nil {
				return fmt.Errorf("failed to remove staff %s: %w", staffID, err)
			}

			fmt.Printf("Removed staff %s and %d shifts\n", staffID, len(shifts))
			return nil
		},
	}
}

func removeShiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "removeshift <shift_id>",
		Short: "Remove a single shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.database.DeleteShift(app.ctx, args[0]); err != nil {
				return fmt.Errorf("failed to remove shift %s: %w", args[0], err)
			}

			fmt.Printf("Removed shift %s\n", args[0])
			return nil
		},
	}
}
