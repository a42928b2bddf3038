package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/SirClappington/signjobs/internal/domain"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

type Store struct{ db DB }

func New(db DB) *Store { return &Store{db} }

const jobColumns = `id, customer, jobtype, note, duetime, price, items, status, notified, is_deleted, created_at`

// Insert persists a new job and returns its id. Status starts pending and
// both flags start false.
func (s *Store) Insert(ctx context.Context, j domain.NewJob) (string, error) {
	items, err := encodeItems(j.Items)
	if err != nil {
		return "", &domain.StoreError{Op: "insert", Err: err}
	}
	id := uuid.NewString()
	_, err = s.db.Exec(ctx, `insert into jobs(
id, customer, jobtype, note, duetime, price, items, status, notified, is_deleted
) values ($1,$2,$3,$4,$5,$6,$7,$8,false,false)`,
		id, j.Customer, j.JobType, j.Note, j.DueTime.UTC(), j.Price, items, domain.Pending.Label(),
	)
	if err != nil {
		return "", &domain.StoreError{Op: "insert", Err: err}
	}
	return id, nil
}

// Update writes the non-nil fields of p.
func (s *Store) Update(ctx context.Context, id string, p domain.JobPatch) error {
	if p.Empty() {
		return nil
	}
	q, args, err := buildUpdate(id, p)
	if err != nil {
		return &domain.StoreError{Op: "update", Err: err}
	}
	tag, err := s.db.Exec(ctx, q, args...)
	if err != nil {
		return &domain.StoreError{Op: "update", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.Job, error) {
	row := s.db.QueryRow(ctx, `select `+jobColumns+` from jobs where id = $1`, id)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Job{}, &domain.StoreError{Op: "get", Err: err}
	}
	return j, nil
}

func (s *Store) Query(ctx context.Context, f Filter, o Order) ([]domain.Job, error) {
	q, args := buildSelect(f, o)
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, &domain.StoreError{Op: "query", Err: err}
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, &domain.StoreError{Op: "query", Err: err}
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "query", Err: err}
	}
	return out, nil
}

func scanJob(row pgx.Row) (domain.Job, error) {
	var (
		j      domain.Job
		items  []byte
		status string
	)
	if err := row.Scan(&j.ID, &j.Customer, &j.JobType, &j.Note, &j.DueTime, &j.Price,
		&items, &status, &j.Notified, &j.IsDeleted, &j.CreatedAt); err != nil {
		return domain.Job{}, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Job{}, errors.Wrapf(err, "job %s", j.ID)
	}
	j.Status = st
	if len(items) > 0 {
		if err := json.Unmarshal(items, &j.Items); err != nil {
			return domain.Job{}, errors.Wrapf(err, "decode items of job %s", j.ID)
		}
	}
	return j, nil
}

func encodeItems(items []domain.Item) ([]byte, error) {
	if items == nil {
		items = []domain.Item{}
	}
	b, err := json.Marshal(items)
	return b, errors.Wrap(err, "encode items")
}

func buildUpdate(id string, p domain.JobPatch) (string, []any, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Customer != nil {
		set("customer", strings.TrimSpace(*p.Customer))
	}
	if p.JobType != nil {
		set("jobtype", strings.TrimSpace(*p.JobType))
	}
	if p.Note != nil {
		set("note", strings.TrimSpace(*p.Note))
	}
	if p.DueTime != nil {
		set("duetime", p.DueTime.UTC())
	}
	if p.Items != nil {
		b, err := encodeItems(*p.Items)
		if err != nil {
			return "", nil, err
		}
		set("items", b)
	}
	if p.Price != nil {
		set("price", *p.Price)
	}
	if p.Status != nil {
		set("status", p.Status.Label())
	}
	if p.Notified != nil {
		set("notified", *p.Notified)
	}
	if p.IsDeleted != nil {
		set("is_deleted", *p.IsDeleted)
	}
	args = append(args, id)
	q := fmt.Sprintf("update jobs set %s where id = $%d", strings.Join(sets, ", "), len(args))
	if p.Live {
		q += " and is_deleted = false"
	}
	return q, args, nil
}

// Column is a sortable job column.
type Column string

const (
	ByCreated Column = "created_at"
	ByDue     Column = "duetime"
)

// Order sorts query results. The zero value is newest first.
type Order struct {
	By  Column
	Asc bool
}

var SoonestFirst = Order{By: ByDue, Asc: true}

// Filter narrows a query. Soft-deleted jobs are excluded unless IncludeDeleted is set.
type Filter struct {
	Status         *domain.Status
	NotStatus      *domain.Status
	Notified       *bool
	IncludeDeleted bool
	DueFrom        *time.Time // inclusive
	DueBefore      *time.Time // exclusive
	DueUntil       *time.Time // inclusive
	Search         string     // case-insensitive substring of customer
	Limit          int
}

func buildSelect(f Filter, o Order) (string, []any) {
	var (
		where []string
		args  []any
	)
	cond := func(format string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(format, len(args)))
	}
	if !f.IncludeDeleted {
		where = append(where, "is_deleted = false")
	}
	if f.Status != nil {
		cond("status = $%d", f.Status.Label())
	}
	if f.NotStatus != nil {
		cond("status <> $%d", f.NotStatus.Label())
	}
	if f.Notified != nil {
		cond("notified = $%d", *f.Notified)
	}
	if f.DueFrom != nil {
		cond("duetime >= $%d", f.DueFrom.UTC())
	}
	if f.DueBefore != nil {
		cond("duetime < $%d", f.DueBefore.UTC())
	}
	if f.DueUntil != nil {
		cond("duetime <= $%d", f.DueUntil.UTC())
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		cond("customer ilike $%d", "%"+escapeLike(s)+"%")
	}

	var b strings.Builder
	b.WriteString("select " + jobColumns + " from jobs")
	if len(where) > 0 {
		b.WriteString(" where " + strings.Join(where, " and "))
	}
	col := o.By
	if col != ByDue {
		col = ByCreated
	}
	dir := "desc"
	if o.Asc {
		dir = "asc"
	}
	fmt.Fprintf(&b, " order by %s %s, id %s", col, dir, dir)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " limit $%d", len(args))
	}
	return b.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
