package publication

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/repositories"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

const table = "publications"

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PublicationRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, pub domain.Publication) (domain.Publication, error) {
	pub.CreatedAt = time.Now().UTC()
	query, args, err := repositories.SqBuilder.
		Insert(table).
		Columns("project_id", "sink", "artifact_uri", "status", "error", "created_at").
		Values(pub.ProjectID, pub.Sink, pub.ArtifactURI, string(pub.Status), pub.Error, pub.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Publication{}, repositories.ErrBadQuery
	}

	if err := p.pg.QueryRow(ctx, query, args...).Scan(&pub.ID); err != nil {
		return domain.Publication{}, err
	}
	return pub, nil
}

func (p *Pgx) ListByProject(ctx context.Context, projectID string) ([]domain.Publication, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "project_id", "sink", "artifact_uri", "status", "error", "created_at").
		From(table).
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []domain.Publication
	for rows.Next() {
		var (
			pub    domain.Publication
			status string
		)
		if err := rows.Scan(&pub.ID, &pub.ProjectID, &pub.Sink, &pub.ArtifactURI, &status, &pub.Error, &pub.CreatedAt); err != nil {
			return nil, err
		}
		pub.Status = domain.PublicationStatus(status)
		pubs = append(pubs, pub)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pubs, nil
}

func (p *Pgx) ArtifactURIs(ctx context.Context, since time.Time) ([]string, error) {
	query, args, err := repositories.SqBuilder.
		Select("DISTINCT artifact_uri").
		From(table).
		Where(sq.Eq{"status": string(domain.PublicationSucceeded)}).
		Where(sq.GtOrEq{"created_at": since}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, err
		}
		uris = append(uris, uri)
	}
	return uris, rows.Err()
}

func (p *Pgx) CleanupOldRecords(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Delete(table).
		Where(sq.Lt{"created_at": before}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	if n := tag.RowsAffected(); n > 0 {
		p.logger.Info("Old publications removed", "count", n, "before", before)
	}
	return tag.RowsAffected(), nil
}
