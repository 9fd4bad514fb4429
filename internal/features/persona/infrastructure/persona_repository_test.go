package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"synthetic-persona/backend/internal/db"
	"synthetic-persona/backend/internal/features/persona/domain"
)

// audienceRow mirrors the full audiences table, including columns the
// directory never reads.
type audienceRow struct {
	ID              int64 `gorm:"primaryKey"`
	AudienceName    string
	AudienceSummary *string
	UploadDate      *string
	CreatedAt       *string
}

func (audienceRow) TableName() string { return "audiences" }

func strPtr(s string) *string { return &s }

func newTestRepository(t *testing.T, rows ...audienceRow) PersonaRepository {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive across queries.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&audienceRow{}))
	for i := range rows {
		require.NoError(t, gdb.Create(&rows[i]).Error)
	}
	return NewPersonaRepository(db.Wrap(gdb))
}

func TestListPersonasOrdering(t *testing.T) {
	repo := newTestRepository(t,
		audienceRow{ID: 1, AudienceName: "urban cyclists", AudienceSummary: strPtr("Commutes by bike.")},
		audienceRow{ID: 2, AudienceName: "Gen Z Gamers"},
		audienceRow{ID: 3, AudienceName: "Busy Parents", AudienceSummary: strPtr("Two kids."), UploadDate: strPtr("2024-01-01")},
		audienceRow{ID: 4, AudienceName: "busy parents"},
	)

	personas, err := repo.ListPersonas(context.Background())
	require.NoError(t, err)
	require.Len(t, personas, 4)

	var ids []int64
	for _, p := range personas {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{3, 4, 2, 1}, ids)

	assert.Equal(t, "Busy Parents", personas[0].AudienceName)
	require.NotNil(t, personas[0].AudienceSummary)
	assert.Equal(t, "Two kids.", *personas[0].AudienceSummary)
	assert.Nil(t, personas[2].AudienceSummary)
}

func TestListPersonasEmpty(t *testing.T) {
	repo := newTestRepository(t)

	personas, err := repo.ListPersonas(context.Background())
	require.NoError(t, err)
	assert.Empty(t, personas)
}

func TestGetPersona(t *testing.T) {
	repo := newTestRepository(t,
		audienceRow{ID: 7, AudienceName: "Retirees", AudienceSummary: strPtr("Enjoys travel.")},
	)

	p, err := repo.GetPersona(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Retirees", p.AudienceName)
	assert.Equal(t, "Enjoys travel.", p.EffectiveSummary())

	_, err = repo.GetPersona(context.Background(), 8)
	assert.ErrorIs(t, err, domain.ErrPersonaNotFound)
}

func TestUnavailableRepository(t *testing.T) {
	repo := NewUnavailableRepository()

	_, err := repo.ListPersonas(context.Background())
	assert.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
	_, err = repo.GetPersona(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
}
