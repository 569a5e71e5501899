package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vrhub/pkg/database"
)

func main() {
	out := flag.String("out", "data/games.csv", "output CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportGames(ctx, db, *out); err != nil {
		log.Fatalf("export failed: %v", err)
	}

	log.Printf("exported games to %s", *out)
}

func exportGames(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "name", "version", "release_date", "community_score",
		"is_installed", "install_directory", "developers", "publishers", "source",
	}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, name, version, release_date, community_score,
               is_installed, install_directory, developers, publishers, source
        FROM games
        ORDER BY name
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          string
			name        string
			version     sql.NullString
			releaseDate sql.NullString
			score       int
			installed   int
			installDir  sql.NullString
			developers  sql.NullString
			publishers  sql.NullString
			source      sql.NullString
		)

		if err := rows.Scan(&id, &name, &version, &releaseDate, &score,
			&installed, &installDir, &developers, &publishers, &source); err != nil {
			return err
		}

		if err := w.Write([]string{
			id,
			name,
			version.String,
			releaseDate.String,
			strconv.Itoa(score),
			strconv.FormatBool(installed != 0),
			installDir.String,
			developers.String,
			publishers.String,
			source.String,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
