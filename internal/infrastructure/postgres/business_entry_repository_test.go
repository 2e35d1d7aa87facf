package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/reporting"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

func TestScopedEntriesQuery_PorRol(t *testing.T) {
	q, args := scopedEntriesQuery(repository.Credentials{UserID: "rm-1", Role: entity.RoleRM})
	assert.Contains(t, q, "e.rm_id::TEXT = $1")
	assert.Contains(t, q, "SELECT id FROM associates WHERE rm_id::TEXT = $1")
	assert.Equal(t, []any{"rm-1"}, args)

	q, args = scopedEntriesQuery(repository.Credentials{UserID: "as-1", Role: entity.RoleAssociate})
	assert.Contains(t, q, "e.associate_id::TEXT = $1")
	assert.Equal(t, []any{"as-1"}, args)

	q, args = scopedEntriesQuery(repository.Credentials{UserID: "u", Role: entity.RoleOwner})
	assert.NotContains(t, q, "WHERE")
	assert.Empty(t, args)
}

func TestConversiones_CompatiblesConElNucleo(t *testing.T) {
	ist, _ := time.LoadLocation("Asia/Kolkata")
	// 2025-10-31 20:00 UTC es 1 de noviembre en IST.
	issued := time.Date(2025, 10, 31, 20, 0, 0, 0, time.UTC)
	e := entity.BusinessEntry{
		PolicyIssueDate: timestamp(&issued),
		NetPremium:      amount(decimal.NullDecimal{Decimal: decimal.RequireFromString("1250.50"), Valid: true}),
		NetRevenue:      amount(decimal.NullDecimal{}),
		State:           text(nil),
	}

	d, ok := reporting.ResolveEffectiveDate(&e, ist)
	assert.True(t, ok)
	assert.Equal(t, time.November, d.Month())
	assert.Equal(t, 1, d.Day())

	assert.Equal(t, "1250.5", reporting.ResolvePremium(&e).String())
	assert.False(t, e.NetRevenue.Present())
	assert.Equal(t, reporting.UnknownStateLabel, reporting.StateLabel(&e))
	assert.Equal(t, entity.Text(""), timestamp(nil))
}

func TestCalendarDate_NoSeCorreConZonaNegativa(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Así escanea pgx una columna DATE.
	issued := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	e := entity.BusinessEntry{PolicyIssueDate: calendarDate(&issued)}

	assert.Equal(t, entity.Text("2025-11-01"), e.PolicyIssueDate)
	d, ok := reporting.ResolveEffectiveDate(&e, ny)
	require.True(t, ok)
	assert.Equal(t, time.November, d.Month())
	assert.Equal(t, 1, d.Day())
	assert.Equal(t, entity.Text(""), calendarDate(nil))
}
