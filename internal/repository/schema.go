package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	flowHeadersTable     = "flow_headers"
	flowItemsTable       = "flow_items"
	approvalRecordsTable = "approval_records"
)

var (
	// FlowHeadersColumns holds the columns for the "flow_headers" table.
	FlowHeadersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "planhead", Type: field.TypeString, Nullable: true},
		{Name: "workname", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "source_object", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// FlowHeadersTable holds the schema information for the "flow_headers" table.
	FlowHeadersTable = &schema.Table{
		Name:       flowHeadersTable,
		Columns:    FlowHeadersColumns,
		PrimaryKey: []*schema.Column{FlowHeadersColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "flowheader_created_at",
				Unique:  false,
				Columns: []*schema.Column{FlowHeadersColumns[4]},
			},
		},
	}
	// FlowItemsColumns holds the columns for the "flow_items" table.
	FlowItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "sequence_no", Type: field.TypeInt},
		{Name: "designation", Type: field.TypeString, Nullable: true},
		{Name: "department", Type: field.TypeString, Nullable: true},
		{Name: "action_date", Type: field.TypeString, Nullable: true, Size: 10},
		{Name: "action_time", Type: field.TypeString, Nullable: true, Size: 64},
		{Name: "is_current_pending", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "flow_id", Type: field.TypeUUID},
	}
	// FlowItemsTable holds the schema information for the "flow_items" table.
	FlowItemsTable = &schema.Table{
		Name:       flowItemsTable,
		Columns:    FlowItemsColumns,
		PrimaryKey: []*schema.Column{FlowItemsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "flow_items_flow_headers_items",
				Columns:    []*schema.Column{FlowItemsColumns[8]},
				RefColumns: []*schema.Column{FlowHeadersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "flowitem_flow_id_sequence_no",
				Unique:  true,
				Columns: []*schema.Column{FlowItemsColumns[8], FlowItemsColumns[1]},
			},
		},
	}
	// ApprovalRecordsColumns holds the columns for the "approval_records" table.
	ApprovalRecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "planhead", Type: field.TypeString, Nullable: true},
		{Name: "workname", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "approval_date", Type: field.TypeString, Nullable: true, Size: 10},
		{Name: "approval_time", Type: field.TypeString, Nullable: true, Size: 8},
		{Name: "raw_text", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "source_object", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ApprovalRecordsTable holds the schema information for the "approval_records" table.
	ApprovalRecordsTable = &schema.Table{
		Name:       approvalRecordsTable,
		Columns:    ApprovalRecordsColumns,
		PrimaryKey: []*schema.Column{ApprovalRecordsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "approvalrecord_created_at",
				Unique:  false,
				Columns: []*schema.Column{ApprovalRecordsColumns[7]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		FlowHeadersTable,
		FlowItemsTable,
		ApprovalRecordsTable,
	}
)

func init() {
	FlowItemsTable.ForeignKeys[0].RefTable = FlowHeadersTable
}

// Migrate creates or updates the tables. Existing columns are never dropped.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
