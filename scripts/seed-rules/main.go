// seed-rules loads compliance rules and versions from a YAML fixture into
// the database. It is intended for local development and demo setups, not
// for production imports.
//
// Usage: go run ./scripts/seed-rules [-approve] <project-id> <fixture.yaml>
//
// Database connection: Uses standard PG* environment variables
//
// Flags:
//
//	-approve  Mark every seeded version approved (default: false, versions stay draft)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"
)

// seedFile is the top-level YAML fixture structure.
type seedFile struct {
	Rules []seedRule `yaml:"rules"`
}

type seedRule struct {
	Jurisdiction string        `yaml:"jurisdiction"`
	TopicKey     string        `yaml:"topic_key"`
	Versions     []seedVersion `yaml:"versions"`
}

type seedVersion struct {
	Content    string          `yaml:"content"`
	SourceRefs []seedSourceRef `yaml:"source_refs"`
}

type seedSourceRef struct {
	SourceDocumentID string `yaml:"source_document_id"`
	Excerpt          string `yaml:"excerpt"`
}

func main() {
	approve := flag.Bool("approve", false, "Mark every seeded version approved")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-approve] <project-id> <fixture.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	projectID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid project ID: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read fixture: %v\n", err)
		os.Exit(1)
	}

	var fixture seedFile
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse fixture: %v\n", err)
		os.Exit(1)
	}
	if len(fixture.Rules) == 0 {
		fmt.Fprintln(os.Stderr, "Fixture contains no rules")
		os.Exit(1)
	}

	ctx := context.Background()

	conn, err := pgx.Connect(ctx, buildConnString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to begin transaction: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status := "draft"
	if *approve {
		status = "approved"
	}

	seededRules, seededVersions := 0, 0
	for _, rule := range fixture.Rules {
		if rule.Jurisdiction == "" || rule.TopicKey == "" {
			fmt.Fprintf(os.Stderr, "Skipping rule with missing jurisdiction or topic_key\n")
			continue
		}

		var ruleID uuid.UUID
		err := tx.QueryRow(ctx,
			`INSERT INTO kb_rules (project_id, jurisdiction, topic_key) VALUES ($1, $2, $3) RETURNING id`,
			projectID, rule.Jurisdiction, rule.TopicKey,
		).Scan(&ruleID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to insert rule %s: %v\n", rule.TopicKey, err)
			os.Exit(1)
		}
		seededRules++

		for i, version := range rule.Versions {
			if len(version.SourceRefs) == 0 {
				fmt.Fprintf(os.Stderr, "Rule %s version %d has no source refs\n", rule.TopicKey, i+1)
				os.Exit(1)
			}

			refs := make([]map[string]string, 0, len(version.SourceRefs))
			for _, ref := range version.SourceRefs {
				refs = append(refs, map[string]string{
					"source_document_id": ref.SourceDocumentID,
					"excerpt":            ref.Excerpt,
				})
			}
			refsJSON, err := json.Marshal(refs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to marshal source refs: %v\n", err)
				os.Exit(1)
			}

			approvedBy := any(nil)
			if *approve {
				approvedBy = "seed-rules"
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO kb_rule_versions (rule_id, jurisdiction, topic_key, version, content, status, source_refs, approved_by, approved_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $6 = 'approved' THEN now() END)`,
				ruleID, rule.Jurisdiction, rule.TopicKey, i+1, version.Content, status, refsJSON, approvedBy,
			)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to insert version %d of %s: %v\n", i+1, rule.TopicKey, err)
				os.Exit(1)
			}
			seededVersions++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to commit: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d rules with %d versions (status: %s)\n", seededRules, seededVersions, status)
}

// buildConnString assembles a connection string from PG* environment
// variables, matching the server's database configuration.
func buildConnString() string {
	host := envOr("PGHOST", "localhost")
	port := envOr("PGPORT", "5432")
	user := envOr("PGUSER", "juristack")
	password := os.Getenv("PGPASSWORD")
	dbname := envOr("PGDATABASE", "juristack_kb")
	sslmode := envOr("PGSSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
