package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/repository"
)

const playerColumns = `id, firstname, lastname, shortname, sex, country, picture, data, created_at, updated_at`

// sortColumns maps the public sort keys onto SQL expressions. JSONB numbers are
// cast so they order numerically.
var sortColumns = map[string]string{
	"id":           "id",
	"firstname":    "firstname",
	"lastname":     "lastname",
	"shortname":    "shortname",
	"sex":          "sex",
	"country.code": "country->>'code'",
	"data.rank":    "(data->>'rank')::bigint",
	"data.points":  "(data->>'points')::bigint",
	"data.weight":  "(data->>'weight')::bigint",
	"data.height":  "(data->>'height')::bigint",
	"data.age":     "(data->>'age')::bigint",
}

type playerRepository struct {
	pool *pgxpool.Pool
	tx   repository.TxManager
	log  zerolog.Logger
}

// NewPlayerRepository stores players as rows with the nested country and data
// objects kept in JSONB columns.
func NewPlayerRepository(pool *pgxpool.Pool, logger zerolog.Logger) repository.PlayerRepository {
	return &playerRepository{
		pool: pool,
		tx:   NewTxManager(pool),
		log:  logger.With().Str("module", "repository").Str("component", "postgres").Logger(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner, extra ...any) (model.Player, error) {
	var p model.Player
	dest := []any{
		&p.ID, &p.Firstname, &p.Lastname, &p.Shortname, &p.Sex,
		&p.Country, &p.Picture, &p.Data, &p.CreatedAt, &p.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return p, err
}

// whereClause renders the filter starting at placeholder $start.
func whereClause(f repository.PlayerFilter, start int) (string, []any) {
	var conds []string
	var args []any
	if f.CountryCode != "" {
		args = append(args, f.CountryCode)
		conds = append(conds, fmt.Sprintf("upper(country->>'code') = upper($%d)", start+len(args)-1))
	}
	if f.Sex != "" {
		args = append(args, f.Sex)
		conds = append(conds, fmt.Sprintf("sex = $%d", start+len(args)-1))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(s repository.Sort) string {
	col, ok := sortColumns[s.Field]
	if !ok {
		s = repository.DefaultSort
		col = sortColumns[s.Field]
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	if s.Field == "id" {
		return " ORDER BY id " + dir
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)
}

func (r *playerRepository) Ping(ctx context.Context) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return r.pool.Ping(ctx)
}

func (r *playerRepository) GetByID(ctx context.Context, id int64) (model.Player, error) {
	const op = "repository/postgres/GetByID"
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		return model.Player{}, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	return p, nil
}

// List reads one window together with COUNT(*) OVER(). A window past the end
// has no rows to carry the total, so Count answers then.
func (r *playerRepository) List(ctx context.Context, lq repository.ListQuery) (repository.PageResult[model.Player], error) {
	const op = "repository/postgres/List"
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Player]{}, err
	}
	page := lq.Page.Bounded()
	limit, offset := page.Limit, page.Offset
	where, args := whereClause(lq.Filter, 1)
	n := len(args)
	sql := `SELECT ` + playerColumns + `, COUNT(*) OVER() AS total FROM players` + where +
		orderClause(lq.Sort) + fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, limit, offset)

	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return repository.PageResult[model.Player]{}, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	defer rows.Close()

	res := repository.PageResult[model.Player]{Items: make([]model.Player, 0, limit)}
	for rows.Next() {
		var total int64
		p, err := scanPlayer(rows, &total)
		if err != nil {
			return repository.PageResult[model.Player]{}, fmt.Errorf("%s: scan: %w", op, err)
		}
		res.Items = append(res.Items, p)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Player]{}, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}

	if len(res.Items) == 0 && offset > 0 {
		total, err := r.Count(ctx, lq.Filter)
		if err != nil {
			return repository.PageResult[model.Player]{}, err
		}
		res.Total = total
	}
	return res, nil
}

func (r *playerRepository) Count(ctx context.Context, f repository.PlayerFilter) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	where, args := whereClause(f, 1)
	var n int64
	if err := getQ(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM players`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("repository/postgres/Count: %w", repository.MapPgError(err))
	}
	return n, nil
}

func (r *playerRepository) All(ctx context.Context) ([]model.Player, error) {
	const op = "repository/postgres/All"
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, `SELECT `+playerColumns+` FROM players`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	return out, nil
}

// Heights skips rows whose data.height is missing or not a JSON number.
func (r *playerRepository) Heights(ctx context.Context) ([]float64, error) {
	const op = "repository/postgres/Heights"
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT (data->>'height')::float8 FROM players WHERE jsonb_typeof(data->'height') = 'number'`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	hs, err := pgx.CollectRows(rows, pgx.RowTo[float64])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	return hs, nil
}

func (r *playerRepository) ExistsByIDOrShortname(ctx context.Context, id int64, shortname string) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var ok bool
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM players WHERE id = $1 OR shortname = $2)`, id, shortname,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("repository/postgres/ExistsByIDOrShortname: %w", repository.MapPgError(err))
	}
	return ok, nil
}

func (r *playerRepository) ShortnameTaken(ctx context.Context, shortname string, exceptID int64) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var ok bool
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM players WHERE shortname = $1 AND id <> $2)`, shortname, exceptID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("repository/postgres/ShortnameTaken: %w", repository.MapPgError(err))
	}
	return ok, nil
}

func (r *playerRepository) Create(ctx context.Context, p model.Player) (model.Player, error) {
	const op = "repository/postgres/Create"
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO players (id, firstname, lastname, shortname, sex, country, picture, data)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8::jsonb)
		 RETURNING `+playerColumns,
		p.ID, p.Firstname, p.Lastname, p.Shortname, p.Sex, p.Country, p.Picture, p.Data,
	)
	out, err := scanPlayer(row)
	if err != nil {
		return model.Player{}, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	return out, nil
}

// CreateMany inserts the batch in one transaction: a conflict on any row leaves
// nothing behind.
func (r *playerRepository) CreateMany(ctx context.Context, ps []model.Player) ([]model.Player, error) {
	out := make([]model.Player, 0, len(ps))
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, p := range ps {
			created, err := r.Create(ctx, p)
			if err != nil {
				return err
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository/postgres/CreateMany: %w", err)
	}
	r.log.Debug().Int("count", len(out)).Msg("players inserted")
	return out, nil
}

func (r *playerRepository) Replace(ctx context.Context, p model.Player) (model.Player, error) {
	const op = "repository/postgres/Replace"
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`UPDATE players
		 SET firstname = $2, lastname = $3, shortname = $4, sex = $5,
		     country = $6::jsonb, picture = $7, data = $8::jsonb, updated_at = now()
		 WHERE id = $1
		 RETURNING `+playerColumns,
		p.ID, p.Firstname, p.Lastname, p.Shortname, p.Sex, p.Country, p.Picture, p.Data,
	)
	out, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		return model.Player{}, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	return out, nil
}

// Update merges nested patches with the jsonb || operator, so keys not named in
// the patch keep their stored values.
func (r *playerRepository) Update(ctx context.Context, id int64, u model.PlayerUpdate) (model.Player, error) {
	const op = "repository/postgres/Update"
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	sets, args := updateAssignments(u, 2)
	sets = append(sets, "updated_at = now()")
	sql := `UPDATE players SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + playerColumns

	out, err := scanPlayer(getQ(ctx, r.pool).QueryRow(ctx, sql, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		return model.Player{}, fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	return out, nil
}

func (r *playerRepository) Delete(ctx context.Context, id int64) error {
	const op = "repository/postgres/Delete"
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, repository.MapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}

// updateAssignments renders the SET list for u, numbering placeholders from start.
func updateAssignments(u model.PlayerUpdate, start int) ([]string, []any) {
	var sets []string
	var args []any
	add := func(format string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(format, start+len(args)-1))
	}
	str := func(col string, v *string) {
		if v != nil {
			add(col+" = $%d", *v)
		}
	}

	str("firstname", u.Firstname)
	str("lastname", u.Lastname)
	str("shortname", u.Shortname)
	str("sex", u.Sex)
	str("picture", u.Picture)
	if m := countryPatch(u.Country); len(m) > 0 {
		add("country = country || $%d::jsonb", m)
	}
	if m := dataPatch(u.Data); len(m) > 0 {
		add("data = data || $%d::jsonb", m)
	}
	return sets, args
}

func countryPatch(c *model.CountryPatch) map[string]any {
	if c == nil {
		return nil
	}
	m := map[string]any{}
	if c.Picture != nil {
		m["picture"] = *c.Picture
	}
	if c.Code != nil {
		m["code"] = *c.Code
	}
	return m
}

func dataPatch(d *model.DataPatch) map[string]any {
	if d == nil {
		return nil
	}
	m := map[string]any{}
	num := func(key string, v *int) {
		if v != nil {
			m[key] = *v
		}
	}
	num("rank", d.Rank)
	num("points", d.Points)
	num("weight", d.Weight)
	num("height", d.Height)
	num("age", d.Age)
	if d.Last != nil {
		m["last"] = d.Last
	}
	return m
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
