package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

func TestBusinessEntry_DecodificaCamposTolerantes(t *testing.T) {
	raw := `{
		"id": 42,
		"policyIssueDate": "2025-11-01",
		"createdAt": null,
		"netPremium": "1,250.50",
		"grossPremium": 1300,
		"totalPayout": null,
		"brokerData": {"brokername": "PolicyBoss", "brokerid": 7},
		"rmData": {"name": "", "rmid": "rm-1"}
	}`
	var e entity.BusinessEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, "42", e.ID.String())
	assert.False(t, e.CreatedAt.Present())
	assert.Equal(t, "1250.5", e.NetPremium.Value().String())
	assert.Equal(t, "1300", e.GrossPremium.Value().String())
	assert.False(t, e.TotalPayout.Present())
	assert.Equal(t, "7", e.BrokerData.BrokerID.String())
	assert.Equal(t, "rm-1", e.RMID())
	assert.Equal(t, "", e.AssociateID())
}

func TestAmount_NoNumericoEsCero(t *testing.T) {
	for _, s := range []string{"", "  ", "N/A", "12a", "--"} {
		d, ok := entity.Amount(s).Decimal()
		assert.False(t, ok, s)
		assert.True(t, d.IsZero(), s)
	}
	d, ok := entity.Amount(" ₹ 1,00,000.75 ").Decimal()
	require.True(t, ok)
	assert.Equal(t, "100000.75", d.String())
}
