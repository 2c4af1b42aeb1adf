// Command mgmigrate imports data from a source database into a
// destination Memgraph-compatible graph database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/memgraph-tools/mgmigrate/internal/bolt"
	"github.com/memgraph-tools/mgmigrate/internal/config"
	"github.com/memgraph-tools/mgmigrate/internal/destination"
	"github.com/memgraph-tools/mgmigrate/internal/migrate"
	"github.com/memgraph-tools/mgmigrate/internal/schema"
	srcgraph "github.com/memgraph-tools/mgmigrate/internal/source/graph"
	"github.com/memgraph-tools/mgmigrate/internal/source/mysql"
	"github.com/memgraph-tools/mgmigrate/internal/source/postgres"
)

var (
	configPath        string
	raw               config.Raw
	sourceKind        string
	sourceHost        string
	sourceUseSSL      bool
	destinationHost   string
	destinationPort   int
	destinationUseSSL bool
)

var rootCmd = &cobra.Command{
	Use:   "mgmigrate",
	Short: "Import data from a source database into a destination Memgraph-compatible database",
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "optional TOML config file; CLI flags take precedence over it")

	flags.StringVar(&sourceKind, "source-kind", "memgraph", "source database kind: memgraph, postgresql, or mysql")
	flags.StringVar(&sourceHost, "source-host", "127.0.0.1", "source server address")
	flags.IntVar(&raw.SourcePort, "source-port", 0, "source server port (0 picks a kind-based default)")
	flags.StringVar(&raw.SourceUsername, "source-username", "", "source username")
	flags.StringVar(&raw.SourcePassword, "source-password", "", "source password")
	flags.BoolVar(&sourceUseSSL, "source-use-ssl", true, "use TLS when connecting to the source")
	flags.StringVar(&raw.SourceDatabase, "source-database", "", "source database name (required for postgresql/mysql)")

	flags.StringVar(&destinationHost, "destination-host", "127.0.0.1", "destination server address")
	flags.IntVar(&destinationPort, "destination-port", 7687, "destination server port")
	flags.StringVar(&raw.DestinationUsername, "destination-username", "", "destination username")
	flags.StringVar(&raw.DestinationPassword, "destination-password", "", "destination password")
	flags.BoolVar(&destinationUseSSL, "destination-use-ssl", true, "use TLS when connecting to the destination")

	flags.BoolVar(&raw.DryRun, "dry-run", false, "introspect the source schema and report it without writing to the destination")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	effective := raw
	if cmd.Flags().Changed("source-kind") {
		effective.SourceKind = sourceKind
	}
	if cmd.Flags().Changed("source-host") {
		effective.SourceHost = sourceHost
	}
	if cmd.Flags().Changed("source-use-ssl") {
		effective.SourceUseSSL = &sourceUseSSL
	}
	if cmd.Flags().Changed("destination-host") {
		effective.DestinationHost = destinationHost
	}
	if cmd.Flags().Changed("destination-port") {
		effective.DestinationPort = destinationPort
	}
	if cmd.Flags().Changed("destination-use-ssl") {
		effective.DestinationUseSSL = &destinationUseSSL
	}
	if configPath != "" {
		fileRaw, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		effective = config.Override(fileRaw, effective)
	}

	cfg, err := config.Resolve(effective)
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()
	log.Printf("mgmigrate: migrating %s source %s:%d -> destination %s:%d", cfg.SourceKind, cfg.SourceHost, cfg.SourcePort, cfg.DestinationHost, cfg.DestinationPort)

	if cfg.DryRun {
		if err := runDryRun(ctx, cfg); err != nil {
			return err
		}
		log.Printf("mgmigrate: dry run completed in %s", time.Since(start).Round(time.Millisecond))
		return nil
	}

	dst, err := bolt.Connect(ctx, bolt.Params{
		Host: cfg.DestinationHost, Port: cfg.DestinationPort,
		Username: cfg.DestinationUsername, Password: cfg.DestinationPassword, UseSSL: cfg.DestinationUseSSL,
	})
	if err != nil {
		return fmt.Errorf("mgmigrate: %w", err)
	}
	defer dst.Close(ctx)
	writer := destination.NewWriter(dst)

	switch cfg.SourceKind {
	case "memgraph":
		err = runGraphMigration(ctx, cfg, writer)
	case "postgresql":
		err = runPostgresMigration(ctx, cfg, writer)
	case "mysql":
		err = runMySQLMigration(ctx, cfg, writer)
	default:
		err = fmt.Errorf("unreachable: unvalidated source_kind %q", cfg.SourceKind)
	}
	if err != nil {
		return err
	}

	log.Printf("mgmigrate: completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// runDryRun introspects the source schema and reports it without ever
// connecting to the destination. Only the relational sources have a
// schema worth reporting ahead of time.
func runDryRun(ctx context.Context, cfg config.Config) error {
	switch cfg.SourceKind {
	case "postgresql":
		src, err := postgres.Connect(ctx, cfg.SourceHost, cfg.SourcePort, cfg.SourceUsername, cfg.SourcePassword, cfg.SourceDatabase)
		if err != nil {
			return fmt.Errorf("mgmigrate: connect to source: %w", err)
		}
		defer src.Close()
		warnSourceObjects(ctx, src)
		return reportSchema(ctx, src, "public")
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", cfg.SourceUsername, cfg.SourcePassword, cfg.SourceHost, cfg.SourcePort, cfg.SourceDatabase)
		src, err := mysql.Connect(dsn)
		if err != nil {
			return fmt.Errorf("mgmigrate: connect to source: %w", err)
		}
		defer src.Close()
		warnSourceObjects(ctx, src)
		return reportSchema(ctx, src, cfg.SourceDatabase)
	default:
		return fmt.Errorf("mgmigrate: --dry-run only supports a postgresql or mysql source, got %q", cfg.SourceKind)
	}
}

func runGraphMigration(ctx context.Context, cfg config.Config, dst *destination.Writer) error {
	client, err := bolt.Connect(ctx, bolt.Params{
		Host: cfg.SourceHost, Port: cfg.SourcePort,
		Username: cfg.SourceUsername, Password: cfg.SourcePassword, UseSSL: cfg.SourceUseSSL,
	})
	if err != nil {
		return fmt.Errorf("mgmigrate: connect to source: %w", err)
	}
	defer client.Close(ctx)
	src := srcgraph.NewSource(client)
	return migrate.Graph(ctx, src, dst)
}

func runPostgresMigration(ctx context.Context, cfg config.Config, dst *destination.Writer) error {
	src, err := postgres.Connect(ctx, cfg.SourceHost, cfg.SourcePort, cfg.SourceUsername, cfg.SourcePassword, cfg.SourceDatabase)
	if err != nil {
		return fmt.Errorf("mgmigrate: connect to source: %w", err)
	}
	defer src.Close()
	warnSourceObjects(ctx, src)
	return migrate.Relational(ctx, src, dst, "public")
}

func runMySQLMigration(ctx context.Context, cfg config.Config, dst *destination.Writer) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", cfg.SourceUsername, cfg.SourcePassword, cfg.SourceHost, cfg.SourcePort, cfg.SourceDatabase)
	src, err := mysql.Connect(dsn)
	if err != nil {
		return fmt.Errorf("mgmigrate: connect to source: %w", err)
	}
	defer src.Close()
	warnSourceObjects(ctx, src)
	return migrate.Relational(ctx, src, dst, cfg.SourceDatabase)
}

// sourceObjectIntrospector is implemented by both relational source
// adapters; it is not part of migrate.RelationalSource because
// reporting non-table objects is a command-level diagnostic, not
// something the migration itself needs.
type sourceObjectIntrospector interface {
	IntrospectSourceObjects(ctx context.Context) (schema.SourceObjects, error)
}

func warnSourceObjects(ctx context.Context, src sourceObjectIntrospector) {
	objs, err := src.IntrospectSourceObjects(ctx)
	if err != nil {
		log.Printf("mgmigrate: source object introspection: %v", err)
		return
	}
	for _, w := range schema.SourceObjectWarnings(objs) {
		log.Printf("  WARN: %s", w)
	}
}

// reportSchema prints the introspected relational schema's shape without
// writing anything to the destination: how each table will be
// represented (a label, or folded into a relationship as a join table),
// and how many foreign keys and constraints were found.
func reportSchema(ctx context.Context, src migrate.RelationalSource, defaultSchema string) error {
	info, err := src.SchemaInfo(ctx)
	if err != nil {
		return fmt.Errorf("mgmigrate: dry run: %w", err)
	}
	fmt.Printf("%d tables, %d foreign keys, %d unique constraints, %d existence constraints\n",
		len(info.Tables), len(info.ForeignKeys), len(info.UniqueConstraints), len(info.ExistenceConstraints))
	for _, t := range info.Tables {
		if t.IsJoinTable() {
			fmt.Printf("  %s.%s -> relationship (join table)\n", t.SchemaName, t.Name)
			continue
		}
		fmt.Printf("  %s.%s -> node label %q (%d columns, %d foreign keys)\n", t.SchemaName, t.Name, t.Label(defaultSchema), len(t.Columns), len(t.ForeignKeys))
	}
	for _, w := range schema.CollectUnsupportedTypeWarnings(info) {
		fmt.Printf("  WARN: %s\n", w)
	}
	for _, w := range schema.CollectIndexCompatibilityWarnings(info) {
		fmt.Printf("  WARN: %s\n", w)
	}
	return nil
}
