package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/config"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/infra/sqlite"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// Migration represents a single migration file
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// AppliedMigration represents a migration that has already been applied
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

// target names the dataset migrations are applied to.
type target struct {
	projectID string
	datasetID string
}

func (t target) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", t.projectID, t.datasetID, name)
}

// migrationPattern matches migration files: 0001_name.sql
var migrationPattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

func main() {
	envFile := flag.String("env", "", "Path to .env file (default .env)")
	backend := flag.String("backend", "", "Storage backend to migrate: bigquery or sqlite (default from STORAGE_BACKEND)")
	projectID := flag.String("project", "", "GCP project ID (default from BQ_PROJECT)")
	datasetID := flag.String("dataset", "", "BigQuery dataset ID (default from BQ_DATASET)")
	sqlitePath := flag.String("sqlite", "", "SQLite database path (default from SQLITE_PATH)")
	appliedBy := flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
	migrationsDir := flag.String("migrations", "migrations/bigquery", "Path to migrations directory")
	dryRun := flag.Bool("dry-run", false, "List pending BigQuery migrations without applying them")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	switch firstNonEmpty(*backend, cfg.StorageBackend) {
	case config.BackendSQLite:
		path := firstNonEmpty(*sqlitePath, cfg.SQLitePath)
		if err := migrateSQLite(ctx, path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("SQLite migration failed")
		}
	case config.BackendBigQuery:
		t := target{
			projectID: firstNonEmpty(*projectID, cfg.BQProject),
			datasetID: firstNonEmpty(*datasetID, cfg.BQDataset),
		}
		if t.projectID == "" {
			log.Fatal().Msg("Error: -project flag or BQ_PROJECT is required")
		}
		if err := migrateBigQuery(ctx, log, t, *migrationsDir, *appliedBy, *dryRun); err != nil {
			log.Fatal().Err(err).Msg("BigQuery migration failed")
		}
	default:
		log.Fatal().Str("backend", *backend).Msg("Unknown backend")
	}
}

// migrateSQLite opens the database, which applies every pending schema version.
func migrateSQLite(ctx context.Context, path string) error {
	repo, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer repo.Close()

	version, err := repo.SchemaVersionOf(ctx)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().Str("path", path).Int("version", version).Msg("SQLite schema is up to date")
	return nil
}

func migrateBigQuery(ctx context.Context, log zerolog.Logger, t target, dir, appliedBy string, dryRun bool) error {
	client, err := bigquery.NewClient(ctx, t.projectID)
	if err != nil {
		return fmt.Errorf("creating BigQuery client: %w", err)
	}
	defer client.Close()

	log.Info().Str("project", t.projectID).Str("dataset", t.datasetID).Msg("Connected to BigQuery")

	if err := ensureSchemaMigrationsTable(ctx, client, t); err != nil {
		return fmt.Errorf("ensuring schema_migrations table: %w", err)
	}

	migrations, err := readMigrations(log, resolveDir(dir), t)
	if err != nil {
		return err
	}
	log.Info().Int("files", len(migrations)).Msg("Found migration files")

	applied, err := getAppliedMigrations(ctx, client, t)
	if err != nil {
		return err
	}
	log.Info().Int("applied", len(applied)).Msg("Found already applied migrations")

	pending, drifted := planMigrations(migrations, applied)
	for _, m := range drifted {
		log.Warn().Str("migration", m.Filename).Msg("Applied migration file has changed since it was run")
	}

	for _, m := range pending {
		if dryRun {
			log.Info().Str("migration", m.Filename).Msg("[DRY RUN] Would apply migration")
			continue
		}

		log.Info().Str("migration", m.Filename).Msg("Applying migration")
		if err := runDDL(ctx, client, m.SQL, nil); err != nil {
			return fmt.Errorf("executing migration %s: %w", m.Filename, err)
		}
		if err := recordMigration(ctx, client, t, m, appliedBy); err != nil {
			return fmt.Errorf("recording migration %s: %w", m.Filename, err)
		}
	}

	if len(pending) == 0 {
		log.Info().Msg("No new migrations to apply. Database is up to date.")
	} else if !dryRun {
		log.Info().Int("count", len(pending)).Msg("Successfully applied migrations")
	}
	return nil
}

// resolveDir falls back to the repository root when run from cmd/migrate.
func resolveDir(dir string) string {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) && !filepath.IsAbs(dir) {
		parent := filepath.Join("..", "..", dir)
		if _, err := os.Stat(parent); err == nil {
			return parent
		}
	}
	return dir
}

// readMigrations reads all migration files from dir, substituting the target's
// project and dataset. Checksums cover the file before substitution so the same
// migration compares equal across datasets.
func readMigrations(log zerolog.Logger, dir string, t target) ([]Migration, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		matches := migrationPattern.FindStringSubmatch(file.Name())
		if matches == nil {
			log.Warn().Str("file", file.Name()).Msg("Skipping file with invalid format")
			continue
		}
		version, _ := strconv.Atoi(matches[1])

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", file.Name(), err)
		}

		sql := strings.ReplaceAll(string(content), "{{PROJECT_ID}}", t.projectID)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", t.datasetID)

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     matches[2],
			Filename: file.Name(),
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// planMigrations splits migrations into those not yet applied and those
// applied with a different checksum.
func planMigrations(all []Migration, applied []AppliedMigration) (pending, drifted []Migration) {
	checksums := make(map[int]string, len(applied))
	for _, am := range applied {
		checksums[am.Version] = am.Checksum
	}

	for _, m := range all {
		sum, ok := checksums[m.Version]
		switch {
		case !ok:
			pending = append(pending, m)
		case sum != "" && sum != m.Checksum:
			drifted = append(drifted, m)
		}
	}
	return pending, drifted
}

// ensureSchemaMigrationsTable creates the schema_migrations table if it doesn't exist
func ensureSchemaMigrationsTable(ctx context.Context, client *bigquery.Client, t target) error {
	return runDDL(ctx, client, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`, t.table("schema_migrations")), nil)
}

// getAppliedMigrations retrieves the list of already applied migrations
func getAppliedMigrations(ctx context.Context, client *bigquery.Client, t target) ([]AppliedMigration, error) {
	query := client.Query(fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM %s
		ORDER BY version ASC
	`, t.table("schema_migrations")))

	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []AppliedMigration
	for {
		var row struct {
			Version   int64
			Name      string
			AppliedAt time.Time
			Checksum  bigquery.NullString
			AppliedBy bigquery.NullString
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}

		applied = append(applied, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}

	return applied, nil
}

// recordMigration records a successfully applied migration in schema_migrations
func recordMigration(ctx context.Context, client *bigquery.Client, t target, m Migration, appliedBy string) error {
	return runDDL(ctx, client, fmt.Sprintf(`
		INSERT INTO %s
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, t.table("schema_migrations")), []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	})
}

// runDDL runs a statement and waits for its job to finish.
func runDDL(ctx context.Context, client *bigquery.Client, sql string, params []bigquery.QueryParameter) error {
	query := client.Query(sql)
	query.Parameters = params

	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
