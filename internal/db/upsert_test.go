package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "housing.parcel_model",
		Columns:      []string{"BlockLot", "Height_Ft"},
		ConflictKeys: []string{"BlockLot"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "housing.parcel_model",
		ConflictKeys: []string{"BlockLot"},
	}, [][]any{{"0001001", 40.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:   "housing.parcel_model",
		Columns: []string{"BlockLot", "Height_Ft"},
	}, [][]any{{"0001001", 40.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_parcel_model"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_parcel_model"}, []string{"BlockLot", "Height_Ft"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "parcel_model" .* ON CONFLICT \("BlockLot"\) DO UPDATE SET "Height_Ft" = EXCLUDED."Height_Ft"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "parcel_model",
		Columns:      []string{"BlockLot", "Height_Ft"},
		ConflictKeys: []string{"BlockLot"},
	}, [][]any{{"0001001", 40.0}, {"0001002", 65.0}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_parcel_model"}, []string{"BlockLot"}).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "parcel_model",
		Columns:      []string{"BlockLot"},
		ConflictKeys: []string{"BlockLot"},
	}, [][]any{{"0001001"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_ConflictKeyNotAColumn(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "parcel_model",
		Columns:      []string{"Height_Ft"},
		ConflictKeys: []string{"BlockLot"},
	}, [][]any{{40.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `conflict key "BlockLot" is not a column`)
}

func TestBulkUpsert_KeysOnlyDoesNothing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_housing_parcel_keys" \(LIKE "housing"."parcel_keys"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_housing_parcel_keys"}, []string{"BlockLot"}).
		WillReturnResult(1)
	mock.ExpectExec(`ON CONFLICT \("BlockLot"\) DO NOTHING$`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "housing.parcel_keys",
		Columns:      []string{"BlockLot"},
		ConflictKeys: []string{"BlockLot"},
	}, [][]any{{"0001001"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeSQL(t *testing.T) {
	tests := []struct {
		name string
		cfg  UpsertConfig
		want string
	}{
		{
			name: "default update columns",
			cfg:  UpsertConfig{Table: "housing.m", Columns: []string{"BlockLot", "Height_Ft", "Area_1000"}, ConflictKeys: []string{"BlockLot"}},
			want: `INSERT INTO "housing"."m" ("BlockLot", "Height_Ft", "Area_1000") SELECT "BlockLot", "Height_Ft", "Area_1000" FROM "_tmp_upsert_housing_m" ON CONFLICT ("BlockLot") DO UPDATE SET "Height_Ft" = EXCLUDED."Height_Ft", "Area_1000" = EXCLUDED."Area_1000"`,
		},
		{
			name: "explicit update columns",
			cfg:  UpsertConfig{Table: "m", Columns: []string{"BlockLot", "Height_Ft", "Area_1000"}, ConflictKeys: []string{"BlockLot"}, UpdateCols: []string{"Height_Ft"}},
			want: `INSERT INTO "m" ("BlockLot", "Height_Ft", "Area_1000") SELECT "BlockLot", "Height_Ft", "Area_1000" FROM "_tmp_upsert_m" ON CONFLICT ("BlockLot") DO UPDATE SET "Height_Ft" = EXCLUDED."Height_Ft"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.mergeSQL(tt.cfg.stagingTable()))
		})
	}
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"housing.parcel_model", `"housing"."parcel_model"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeTable(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"id", "name", "value"})
	assert.Equal(t, `"id", "name", "value"`, result)
}
