package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))
	return db, sr
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, a := range s.Attributes() {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db, sr := setupTracedDB(t, DBTracingConfig{Enabled: false})

	require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)
	assert.Empty(t, sr.Ended())
}

func TestDBTracingPlugin_AnnotatesSpans(t *testing.T) {
	db, sr := setupTracedDB(t, DBTracingConfig{Enabled: true, DBName: "sqlite"})

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{Name: "a"}).Error)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	rows, ok := spanAttr(spans[len(spans)-1], "db.rows_affected")
	require.True(t, ok)
	assert.Equal(t, int64(1), rows.AsInt64())
	table, ok := spanAttr(spans[len(spans)-1], "db.sql.table")
	require.True(t, ok)
	assert.Equal(t, "traced_rows", table.AsString())
}

func TestDBTracingPlugin_MarksErrorsButNotMisses(t *testing.T) {
	db, sr := setupTracedDB(t, DBTracingConfig{Enabled: true, DBName: "sqlite"})

	var row tracedRow
	err := db.First(&row, 999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	missSpans := sr.Ended()
	require.NotEmpty(t, missSpans)
	assert.NotEqual(t, codes.Error, missSpans[len(missSpans)-1].Status().Code)

	require.Error(t, db.Exec("SELECT * FROM missing_table").Error)
	spans := sr.Ended()
	assert.Equal(t, codes.Error, spans[len(spans)-1].Status().Code)
}

func TestDBTracingPlugin_FlagsSlowQueries(t *testing.T) {
	db, sr := setupTracedDB(t, DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond})

	require.NoError(t, db.Create(&tracedRow{Name: "slow"}).Error)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	slow, ok := spanAttr(spans[len(spans)-1], "db.slow_query")
	require.True(t, ok)
	assert.True(t, slow.AsBool())
}

func TestDBTracingPlugin_DoubleRegistrationFails(t *testing.T) {
	db, _ := setupTracedDB(t, DBTracingConfig{Enabled: true})

	err := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop()).Register(db)
	assert.Error(t, err)
}
