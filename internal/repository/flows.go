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

var (
	flowHeaderColumns = []string{"id", "planhead", "workname", "source_object", "created_at"}
	flowItemColumns   = []string{"id", "flow_id", "sequence_no", "designation", "department", "action_date", "action_time", "is_current_pending", "created_at"}
)

// FlowRepository stores vetting cases: a flow header and its ordered items.
type FlowRepository interface {
	// CreateWithItems writes the header and every item in one transaction.
	// IDs and timestamps left zero are filled in.
	CreateWithItems(ctx context.Context, header *entity.FlowHeader, items []*entity.FlowItem) error
	// ListRecent returns up to limit headers, newest first. limit <= 0 means all.
	ListRecent(ctx context.Context, limit int) ([]*entity.FlowHeader, error)
	// ListItems returns a header's items ordered by sequence number.
	ListItems(ctx context.Context, flowID uuid.UUID) ([]*entity.FlowItem, error)
	ListAll(ctx context.Context) ([]*entity.FlowHeader, error)
	ListAllItems(ctx context.Context) ([]*entity.FlowItem, error)
	Count(ctx context.Context) (int, error)
}

type flowRepository struct {
	drv    dialect.Driver
	logger *slog.Logger
}

func NewFlowRepository(drv dialect.Driver, logger *slog.Logger) FlowRepository {
	return &flowRepository{
		drv:    drv,
		logger: logger,
	}
}

func (r *flowRepository) CreateWithItems(ctx context.Context, header *entity.FlowHeader, items []*entity.FlowItem) error {
	if header.ID == uuid.Nil {
		header.ID = uuid.New()
	}
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.FlowID = header.ID
		if it.CreatedAt.IsZero() {
			it.CreatedAt = header.CreatedAt
		}
	}

	err := WithTx(ctx, r.drv, func(tx dialect.Tx) error {
		q, args := entsql.Dialect(r.drv.Dialect()).
			Insert(flowHeadersTable).
			Columns(flowHeaderColumns...).
			Values(header.ID, header.Planhead, header.Workname, header.SourceObject, header.CreatedAt).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert flow header: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		ins := entsql.Dialect(r.drv.Dialect()).Insert(flowItemsTable).Columns(flowItemColumns...)
		for _, it := range items {
			ins.Values(it.ID, it.FlowID, it.SequenceNo, it.Designation, it.Department,
				it.ActionDate, it.ActionTime, it.IsCurrentPending, it.CreatedAt)
		}
		q, args = ins.Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert flow items: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to create flow", "flow_id", header.ID, "items", len(items), "error", err)
		return err
	}
	r.logger.Debug("flow created", "flow_id", header.ID, "items", len(items))
	return nil
}

func (r *flowRepository) ListRecent(ctx context.Context, limit int) ([]*entity.FlowHeader, error) {
	s := entsql.Dialect(r.drv.Dialect()).Select(flowHeaderColumns...).From(entsql.Table(flowHeadersTable))
	s.OrderBy(entsql.Desc(s.C("created_at")))
	if limit > 0 {
		s.Limit(limit)
	}
	q, args := s.Query()

	var out []*entity.FlowHeader
	err := queryRows(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		h, err := scanFlowHeader(rows)
		if err != nil {
			return err
		}
		out = append(out, h)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list flow headers", "limit", limit, "error", err)
		return nil, fmt.Errorf("list flow headers: %w", err)
	}
	return out, nil
}

func (r *flowRepository) ListAll(ctx context.Context) ([]*entity.FlowHeader, error) {
	return r.ListRecent(ctx, 0)
}

func (r *flowRepository) ListItems(ctx context.Context, flowID uuid.UUID) ([]*entity.FlowItem, error) {
	s := entsql.Dialect(r.drv.Dialect()).Select(flowItemColumns...).From(entsql.Table(flowItemsTable))
	s.Where(entsql.EQ(s.C("flow_id"), flowID)).OrderBy(entsql.Asc(s.C("sequence_no")))
	q, args := s.Query()

	items, err := r.listItems(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list flow items", "flow_id", flowID, "error", err)
		return nil, fmt.Errorf("list flow items: %w", err)
	}
	return items, nil
}

func (r *flowRepository) ListAllItems(ctx context.Context) ([]*entity.FlowItem, error) {
	s := entsql.Dialect(r.drv.Dialect()).Select(flowItemColumns...).From(entsql.Table(flowItemsTable))
	s.OrderBy(s.C("flow_id"), entsql.Asc(s.C("sequence_no")))
	q, args := s.Query()

	items, err := r.listItems(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list all flow items", "error", err)
		return nil, fmt.Errorf("list all flow items: %w", err)
	}
	return items, nil
}

func (r *flowRepository) Count(ctx context.Context) (int, error) {
	n, err := count(ctx, r.drv, flowHeadersTable)
	if err != nil {
		return 0, fmt.Errorf("count flow headers: %w", err)
	}
	return n, nil
}

func (r *flowRepository) listItems(ctx context.Context, q string, args []any) ([]*entity.FlowItem, error) {
	var out []*entity.FlowItem
	err := queryRows(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var (
			it                                         entity.FlowItem
			designation, department, actDate, actTime sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.FlowID, &it.SequenceNo, &designation, &department,
			&actDate, &actTime, &it.IsCurrentPending, &it.CreatedAt); err != nil {
			return err
		}
		it.Designation = nullable(designation)
		it.Department = nullable(department)
		it.ActionDate = nullable(actDate)
		it.ActionTime = nullable(actTime)
		out = append(out, &it)
		return nil
	})
	return out, err
}

func scanFlowHeader(rows *entsql.Rows) (*entity.FlowHeader, error) {
	var (
		h                          entity.FlowHeader
		planhead, workname, source sql.NullString
	)
	if err := rows.Scan(&h.ID, &planhead, &workname, &source, &h.CreatedAt); err != nil {
		return nil, err
	}
	h.Planhead = nullable(planhead)
	h.Workname = nullable(workname)
	h.SourceObject = nullable(source)
	return &h, nil
}
