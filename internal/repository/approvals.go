package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/vetting-tracker/internal/entity"
)

var approvalColumns = []string{"id", "planhead", "workname", "approval_date", "approval_time", "raw_text", "source_object", "created_at"}

// ApprovalRepository stores GM approval records.
type ApprovalRepository interface {
	Create(ctx context.Context, rec *entity.ApprovalRecord) error
	// ListRecentDated returns up to limit records that carry an approval date,
	// ordered by created_at, approval_date, approval_time, all descending.
	ListRecentDated(ctx context.Context, limit int) ([]*entity.ApprovalRecord, error)
	ListAll(ctx context.Context) ([]*entity.ApprovalRecord, error)
	Count(ctx context.Context) (int, error)
}

type approvalRepository struct {
	drv    dialect.Driver
	logger *slog.Logger
}

func NewApprovalRepository(drv dialect.Driver, logger *slog.Logger) ApprovalRepository {
	return &approvalRepository{
		drv:    drv,
		logger: logger,
	}
}

func (r *approvalRepository) Create(ctx context.Context, rec *entity.ApprovalRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	q, args := entsql.Dialect(r.drv.Dialect()).
		Insert(approvalRecordsTable).
		Columns(approvalColumns...).
		Values(rec.ID, rec.Planhead, rec.Workname, rec.ApprovalDate, rec.ApprovalTime,
			rec.RawText, rec.SourceObject, rec.CreatedAt).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("failed to create approval record", "approval_id", rec.ID, "error", err)
		return fmt.Errorf("insert approval record: %w", err)
	}
	return nil
}

func (r *approvalRepository) ListRecentDated(ctx context.Context, limit int) ([]*entity.ApprovalRecord, error) {
	s := entsql.Dialect(r.drv.Dialect()).Select(approvalColumns...).From(entsql.Table(approvalRecordsTable))
	s.Where(entsql.NotNull(s.C("approval_date"))).
		OrderBy(
			entsql.Desc(s.C("created_at")),
			entsql.Desc(s.C("approval_date")),
			entsql.Desc(s.C("approval_time")),
		)
	if limit > 0 {
		s.Limit(limit)
	}
	q, args := s.Query()

	recs, err := r.list(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list dated approval records", "limit", limit, "error", err)
		return nil, fmt.Errorf("list approval records: %w", err)
	}
	return recs, nil
}

func (r *approvalRepository) ListAll(ctx context.Context) ([]*entity.ApprovalRecord, error) {
	s := entsql.Dialect(r.drv.Dialect()).Select(approvalColumns...).From(entsql.Table(approvalRecordsTable))
	s.OrderBy(entsql.Desc(s.C("created_at")))
	q, args := s.Query()

	recs, err := r.list(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list approval records", "error", err)
		return nil, fmt.Errorf("list approval records: %w", err)
	}
	return recs, nil
}

func (r *approvalRepository) Count(ctx context.Context) (int, error) {
	n, err := count(ctx, r.drv, approvalRecordsTable)
	if err != nil {
		return 0, fmt.Errorf("count approval records: %w", err)
	}
	return n, nil
}

func (r *approvalRepository) list(ctx context.Context, q string, args []any) ([]*entity.ApprovalRecord, error) {
	var out []*entity.ApprovalRecord
	err := queryRows(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var (
			a                                        entity.ApprovalRecord
			planhead, workname, date, clock, raw, src sql.NullString
		)
		if err := rows.Scan(&a.ID, &planhead, &workname, &date, &clock, &raw, &src, &a.CreatedAt); err != nil {
			return err
		}
		a.Planhead = nullable(planhead)
		a.Workname = nullable(workname)
		a.ApprovalDate = nullable(date)
		a.ApprovalTime = nullable(clock)
		a.RawText = nullable(raw)
		a.SourceObject = nullable(src)
		out = append(out, &a)
		return nil
	})
	return out, err
}
