package main

import (
	"context"
	"fmt"
	"os"

	"jobboard/common/database"
	"jobboard/common/database/schema"
	"jobboard/internal/archive"
	apperrors "jobboard/internal/errors"
	"jobboard/internal/models"
)

const defaultDays = 30

func runAnalytics(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("analytics", "[-days n] [-job id]")
	days := fs.Int("days", defaultDays, "day range")
	jobID := fs.String("job", "", "show a single job")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	if *jobID != "" {
		stat, err := e.Console.JobAnalytics(ctx, *jobID, *days)
		if err != nil {
			return err
		}
		heading(fmt.Sprintf("%s at %s, last %d days", stat.Role, stat.CompanyName, *days))
		fmt.Printf("  views %d  clicks %d  conversion %.2f%%\n", stat.Views, stat.Clicks, stat.ConversionRate)
		return nil
	}

	ov, err := e.Console.Overview(ctx, *days)
	if err != nil {
		return err
	}

	d := ov.Dashboard
	heading(fmt.Sprintf("Last %d days", ov.Days))
	fmt.Printf("  visits %d  unique %d  job views %d  clicks %d  conversion %.2f%%\n",
		d.TotalVisits, d.TotalUniqueVisitors, d.TotalJobViews, d.TotalJobClicks, d.ConversionRate)
	s := ov.Trends.Summary
	fmt.Printf("  daily avg: visits %.1f  unique %.1f  job views %.1f\n",
		s.AvgDailyVisits, s.AvgDailyUniqueVisitors, s.AvgDailyJobViews)

	fmt.Println()
	heading("Top jobs")
	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, "ROLE\tCOMPANY\tVIEWS\tCLICKS\tCONVERSION")
	for _, j := range ov.Jobs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f%%\n", j.Role, j.CompanyName, j.Views, j.Clicks, j.ConversionRate)
	}
	tw.Flush()

	fmt.Println()
	heading("Top companies")
	tw = newTable(os.Stdout)
	fmt.Fprintln(tw, "COMPANY\tVIEWS\tCLICKS\tCONVERSION")
	for _, c := range ov.Companies {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f%%\n", c.Company, c.Views, c.Clicks, c.ConversionRate)
	}
	return tw.Flush()
}

func runExport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("export", "[-days n] [-format json|csv]")
	days := fs.Int("days", defaultDays, "day range")
	format := fs.String("format", string(models.ExportJSON), "json or csv")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}
	path, err := e.Console.Export(ctx, *days, models.ExportFormat(*format))
	if err != nil {
		return err
	}
	success("Exported to %s", path)
	return nil
}

func openDatabase(ctx context.Context, e *env) (*database.Database, error) {
	cfg := e.Config
	if cfg.ClickHouseDSN == "" {
		return nil, apperrors.InvalidInput("CLICKHOUSE_DSN is not set", nil)
	}
	return database.New(ctx, database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, e.Logger)
}

func runArchive(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("archive", "[-days n]")
	days := fs.Int("days", defaultDays, "day range")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	db, err := openDatabase(ctx, e)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := e.Console.ArchiveSnapshot(ctx, archive.New(db.Conn(), e.Logger), *days)
	if err != nil {
		return err
	}
	success("Snapshot %s stored", id)
	return nil
}

func runMigrate(ctx context.Context, e *env, args []string) error {
	if _, err := parse(newFlagSet("migrate", ""), args, 0, 0); err != nil {
		return err
	}

	db, err := openDatabase(ctx, e)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := schema.NewMigrator(db.Conn(), e.Logger).Migrate(ctx, archive.Migrations)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		success("Schema is up to date")
		return nil
	}
	success("Applied migrations %v", applied)
	return nil
}
