package project

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/repositories"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

const table = "projects"

var columns = []string{"id", "title", "composition", "created_at", "updated_at"}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("ProjectRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, project domain.Project) (domain.Project, error) {
	body, err := json.Marshal(project.Composition)
	if err != nil {
		return domain.Project{}, errors.Wrap(err, "encode composition")
	}
	now := time.Now().UTC()
	project.CreatedAt, project.UpdatedAt = now, now

	query, args, err := repositories.SqBuilder.
		Insert(table).
		Columns(columns...).
		Values(project.ID, project.Title, body, now, now).
		ToSql()
	if err != nil {
		return domain.Project{}, repositories.ErrBadQuery
	}

	if _, err = p.pg.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == repositories.UniqueViolation {
			return domain.Project{}, ErrAlreadyExists
		}
		return domain.Project{}, err
	}
	p.logger.Info("Project created", "id", project.ID)
	return project, nil
}

func (p *Pgx) Get(ctx context.Context, id string) (domain.Project, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Project{}, repositories.ErrBadQuery
	}

	project, err := scan(p.pg.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, ErrNotFound
	}
	return project, err
}

func (p *Pgx) Update(ctx context.Context, project domain.Project) error {
	body, err := json.Marshal(project.Composition)
	if err != nil {
		return errors.Wrap(err, "encode composition")
	}
	query, args, err := repositories.SqBuilder.
		Update(table).
		Set("title", project.Title).
		Set("composition", body).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": project.ID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Pgx) List(ctx context.Context, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = 50
	}
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		OrderBy("updated_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scan(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

func (p *Pgx) Delete(ctx context.Context, id string) error {
	query, args, err := repositories.SqBuilder.
		Delete(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.logger.Info("Project deleted", "id", id)
	return nil
}

func scan(row pgx.Row) (domain.Project, error) {
	var (
		project domain.Project
		body    []byte
	)
	if err := row.Scan(&project.ID, &project.Title, &body, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return domain.Project{}, err
	}
	if err := json.Unmarshal(body, &project.Composition); err != nil {
		return domain.Project{}, errors.Wrapf(err, "decode composition of project %s", project.ID)
	}
	return project, nil
}
