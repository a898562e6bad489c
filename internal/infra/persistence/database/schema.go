/*
 * @Description: 新闻与历史快照的表结构定义
 * @Author: 安知鱼
 * @Date: 2026-02-04 10:02:18
 */
package database

import (
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
)

// 表名与列名，仓储实现与迁移共用
const (
	NewsTableName        = "news"
	NewsHistoryTableName = "news_histories"

	ColumnID        = "id"
	ColumnTitle     = "title"
	ColumnText      = "text"
	ColumnImg       = "img"
	ColumnTags      = "tags"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
	ColumnNewsID    = "news_id"
	ColumnFields    = "fields"
)

// timeSchemaType 为 MySQL 保留微秒精度，保证快照的时间顺序
var timeSchemaType = map[string]string{dialect.MySQL: "datetime(6)"}

var (
	// NewsColumns holds the columns for the "news" table.
	NewsColumns = []*schema.Column{
		{Name: ColumnID, Type: field.TypeUint, Increment: true},
		{Name: ColumnTitle, Type: field.TypeString, Size: model.TitleMaxLength},
		{Name: ColumnText, Type: field.TypeString, Size: 2147483647},
		{Name: ColumnImg, Type: field.TypeString, Size: model.ImgMaxLength},
		{Name: ColumnTags, Type: field.TypeJSON},
		{Name: ColumnCreatedAt, Type: field.TypeTime, SchemaType: timeSchemaType},
		{Name: ColumnUpdatedAt, Type: field.TypeTime, SchemaType: timeSchemaType},
	}
	// NewsTable holds the schema information for the "news" table.
	NewsTable = &schema.Table{
		Name:       NewsTableName,
		Columns:    NewsColumns,
		PrimaryKey: []*schema.Column{NewsColumns[0]},
	}

	// NewsHistoriesColumns holds the columns for the "news_histories" table.
	NewsHistoriesColumns = []*schema.Column{
		{Name: ColumnID, Type: field.TypeUint, Increment: true},
		{Name: ColumnFields, Type: field.TypeJSON},
		{Name: ColumnCreatedAt, Type: field.TypeTime, SchemaType: timeSchemaType},
		{Name: ColumnNewsID, Type: field.TypeUint},
	}
	// NewsHistoriesTable holds the schema information for the "news_histories" table.
	NewsHistoriesTable = &schema.Table{
		Name:       NewsHistoryTableName,
		Columns:    NewsHistoriesColumns,
		PrimaryKey: []*schema.Column{NewsHistoriesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "news_histories_news_news",
				Columns:    []*schema.Column{NewsHistoriesColumns[3]},
				RefColumns: []*schema.Column{NewsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "newshistory_news_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{NewsHistoriesColumns[3], NewsHistoriesColumns[2]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		NewsTable,
		NewsHistoriesTable,
	}
)

func init() {
	NewsHistoriesTable.ForeignKeys[0].RefTable = NewsTable
}
