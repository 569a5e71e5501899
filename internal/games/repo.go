package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"vrhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q         string   // keyword search in name/developers
	Installed *bool    // nil means both
	Platforms []string // any-match
	Limit     int
	Offset    int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const gameColumns = `
	id, name, description, version, release_date, community_score,
	is_installed, install_directory, install_size,
	icon, cover_image, background_image, background_urls,
	features, platforms, developers, publishers, genres, age_ratings, tags,
	links, source
`

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Game, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE id = ?
	`, id)

	g, err := scanGame(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return g, nil
}

// Has reports whether the id is already cataloged.
func (r *Repo) Has(ctx context.Context, id string) (bool, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT 1 FROM games WHERE id = ?`, id)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("has scan: %w", err)
	}
	return true, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Game, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Game, 0, q.Limit)
	for rows.Next() {
		g, err := scanGame(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Upsert writes one record, replacing any previous version of the same id.
func (r *Repo) Upsert(ctx context.Context, g models.Game) error {
	return upsertTx(ctx, r.DB, g)
}

// SaveAll upserts a whole import result in one transaction so a crashed run
// never leaves a half-written catalog.
func (r *Repo) SaveAll(ctx context.Context, games []models.Game) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin saveAll: %w", err)
	}
	for _, g := range games {
		if err := upsertTx(ctx, tx, g); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit saveAll: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertTx(ctx context.Context, db execer, g models.Game) error {
	if g.ID == "" {
		return fmt.Errorf("upsert: record has no id")
	}

	releaseDate := ""
	if g.ReleaseDate != nil {
		releaseDate = g.ReleaseDate.String()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO games (`+gameColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			version = excluded.version,
			release_date = excluded.release_date,
			community_score = excluded.community_score,
			is_installed = excluded.is_installed,
			install_directory = excluded.install_directory,
			install_size = excluded.install_size,
			icon = excluded.icon,
			cover_image = excluded.cover_image,
			background_image = excluded.background_image,
			background_urls = excluded.background_urls,
			features = excluded.features,
			platforms = excluded.platforms,
			developers = excluded.developers,
			publishers = excluded.publishers,
			genres = excluded.genres,
			age_ratings = excluded.age_ratings,
			tags = excluded.tags,
			links = excluded.links,
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP
	`,
		g.ID, g.Name, g.Description, g.Version, releaseDate, g.CommunityScore,
		boolToInt(g.IsInstalled), g.InstallDirectory, g.InstallSize,
		g.Icon, g.CoverImage, g.BackgroundImage, toJSON(g.BackgroundImageURLs),
		toJSON(g.Features), toJSON(g.Platforms), toJSON(g.Developers),
		toJSON(g.Publishers), toJSON(g.Genres), toJSON(g.AgeRatings), toJSON(g.Tags),
		toJSON(g.Links), g.Source,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", g.ID, err)
	}
	return nil
}

// buildListSQL builds either COUNT(*) or the SELECT list. The platform
// filter is "any-match" via LIKE searches inside the stored JSON text.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + gameColumns + ` FROM games`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM games`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(developers) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw)
	}

	if q.Installed != nil {
		where = append(where, "is_installed = ?")
		args = append(args, boolToInt(*q.Installed))
	}

	if len(q.Platforms) > 0 {
		var platformOr []string
		for _, p := range q.Platforms {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			platformOr = append(platformOr, "LOWER(platforms) LIKE ?")
			args = append(args, `%`+strings.ToLower(p)+`%`)
		}
		if len(platformOr) > 0 {
			where = append(where, "("+strings.Join(platformOr, " OR ")+")")
		}
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY name ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

func scanGame(scan func(dest ...any) error) (*models.Game, error) {
	var (
		g           models.Game
		description sql.NullString
		version     sql.NullString
		releaseDate sql.NullString
		installed   int
		installDir  sql.NullString
		installSize sql.NullString
		icon        sql.NullString
		cover       sql.NullString
		background  sql.NullString
		bgURLs      sql.NullString
		features    sql.NullString
		platforms   sql.NullString
		developers  sql.NullString
		publishers  sql.NullString
		genres      sql.NullString
		ageRatings  sql.NullString
		tags        sql.NullString
		links       sql.NullString
		source      sql.NullString
	)

	if err := scan(
		&g.ID, &g.Name, &description, &version, &releaseDate, &g.CommunityScore,
		&installed, &installDir, &installSize,
		&icon, &cover, &background, &bgURLs,
		&features, &platforms, &developers, &publishers, &genres, &ageRatings, &tags,
		&links, &source,
	); err != nil {
		return nil, err
	}

	g.Description = description.String
	g.Version = version.String
	g.ReleaseDate = parseStoredDate(releaseDate.String)
	g.IsInstalled = installed != 0
	g.InstallDirectory = installDir.String
	g.InstallSize = installSize.String
	g.Icon = icon.String
	g.CoverImage = cover.String
	g.BackgroundImage = background.String
	g.Source = source.String

	fromJSON(bgURLs.String, &g.BackgroundImageURLs)
	fromJSON(features.String, &g.Features)
	fromJSON(platforms.String, &g.Platforms)
	fromJSON(developers.String, &g.Developers)
	fromJSON(publishers.String, &g.Publishers)
	fromJSON(genres.String, &g.Genres)
	fromJSON(ageRatings.String, &g.AgeRatings)
	fromJSON(tags.String, &g.Tags)
	fromJSON(links.String, &g.Links)

	return &g, nil
}

func parseStoredDate(s string) *models.ReleaseDate {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return nil
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	return &models.ReleaseDate{Year: year, Month: month, Day: day}
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func fromJSON(s string, v any) {
	if s == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), v)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
