package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

var _ repository.EntrySource = (*BusinessEntryRepo)(nil)

// BusinessEntryRepo lee entradas de negocio, RMs y asociados desde una réplica
// PostgreSQL del back-office. Es una alternativa al backend REST para volúmenes
// grandes; el alcance por rol se aplica ya en la consulta.
type BusinessEntryRepo struct {
	pool *pgxpool.Pool
}

// NewBusinessEntryRepository construye el adaptador.
func NewBusinessEntryRepository(pool *pgxpool.Pool) *BusinessEntryRepo {
	return &BusinessEntryRepo{pool: pool}
}

const selectEntries = `
	SELECT
	    e.id::TEXT,
	    e.policy_number,
	    e.customer_name,
	    e.policy_issue_date,
	    e.policy_start_date,
	    e.created_at,
	    e.net_premium,
	    e.gross_premium,
	    e.total_payin,
	    e.total_payout,
	    e.net_revenue,
	    e.net_premium_payin,
	    e.net_premium_payout,
	    e.insurance_company,
	    e.state,
	    e.product_type,
	    e.insurance_type,
	    e.broker_id,
	    b.name,
	    e.rm_id,
	    rm.name,
	    e.associate_id,
	    a.name
	FROM business_entries e
	LEFT JOIN brokers                b  ON b.id  = e.broker_id
	LEFT JOIN relationship_managers  rm ON rm.id = e.rm_id
	LEFT JOIN associates             a  ON a.id  = e.associate_id`

// ListBusinessEntries devuelve las entradas visibles para el rol de cred.
func (r *BusinessEntryRepo) ListBusinessEntries(ctx context.Context, cred repository.Credentials) ([]entity.BusinessEntry, error) {
	query, args := scopedEntriesQuery(cred)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("business_entries.List: %w", err)
	}
	defer rows.Close()

	var out []entity.BusinessEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("business_entries.List scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("business_entries.List rows: %w", err)
	}
	return out, nil
}

// ListRelationshipManagers todos los RMs.
func (r *BusinessEntryRepo) ListRelationshipManagers(ctx context.Context, _ repository.Credentials) ([]entity.RelationshipManager, error) {
	const query = `SELECT id::TEXT, name, email, phone FROM relationship_managers ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("relationship_managers.List: %w", err)
	}
	defer rows.Close()

	var out []entity.RelationshipManager
	for rows.Next() {
		var (
			id                 string
			name, email, phone *string
		)
		if err := rows.Scan(&id, &name, &email, &phone); err != nil {
			return nil, fmt.Errorf("relationship_managers.List scan: %w", err)
		}
		out = append(out, entity.RelationshipManager{
			ID: entity.Text(id), Name: text(name), Email: text(email), Phone: text(phone),
		})
	}
	return out, rows.Err()
}

// ListAssociates todos los asociados con el RM que los dio de alta.
func (r *BusinessEntryRepo) ListAssociates(ctx context.Context, _ repository.Credentials) ([]entity.Associate, error) {
	const query = `SELECT id::TEXT, name, rm_id::TEXT, email, phone FROM associates ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("associates.List: %w", err)
	}
	defer rows.Close()

	var out []entity.Associate
	for rows.Next() {
		var (
			id                       string
			name, rmID, email, phone *string
		)
		if err := rows.Scan(&id, &name, &rmID, &email, &phone); err != nil {
			return nil, fmt.Errorf("associates.List scan: %w", err)
		}
		out = append(out, entity.Associate{
			ID: entity.Text(id), Name: text(name), RMID: text(rmID), Email: text(email), Phone: text(phone),
		})
	}
	return out, rows.Err()
}

// ── helpers ───────────────────────────────────────────────────────────────────

// scopedEntriesQuery aplica el alcance por rol: RM = propias + de sus asociados;
// asociado = propias; el resto ve todo.
func scopedEntriesQuery(cred repository.Credentials) (string, []any) {
	switch cred.Role {
	case entity.RoleRM:
		return selectEntries + `
	WHERE e.rm_id::TEXT = $1
	   OR e.associate_id IN (SELECT id FROM associates WHERE rm_id::TEXT = $1)
	ORDER BY e.created_at`, []any{cred.UserID}
	case entity.RoleAssociate:
		return selectEntries + `
	WHERE e.associate_id::TEXT = $1
	ORDER BY e.created_at`, []any{cred.UserID}
	}
	return selectEntries + `
	ORDER BY e.created_at`, nil
}

func scanEntry(row pgx.Row) (entity.BusinessEntry, error) {
	var (
		e                                                      entity.BusinessEntry
		policyNumber, customer                                 *string
		issue, start, created                                  *time.Time
		netPremium, grossPremium, payin, payout, netRevenue    decimal.NullDecimal
		netPayin, netPayout                                    decimal.NullDecimal
		insurer, state, product, insuranceType                 *string
		brokerID, brokerName, rmID, rmName, assocID, assocName *string
		id                                                     string
	)
	if err := row.Scan(
		&id, &policyNumber, &customer,
		&issue, &start, &created,
		&netPremium, &grossPremium, &payin, &payout, &netRevenue, &netPayin, &netPayout,
		&insurer, &state, &product, &insuranceType,
		&brokerID, &brokerName, &rmID, &rmName, &assocID, &assocName,
	); err != nil {
		return e, err
	}

	e.ID = entity.Text(id)
	e.PolicyNumber = text(policyNumber)
	e.CustomerName = text(customer)
	e.PolicyIssueDate = calendarDate(issue)
	e.PolicyStartDate = calendarDate(start)
	e.CreatedAt = timestamp(created)
	e.NetPremium = amount(netPremium)
	e.GrossPremium = amount(grossPremium)
	e.TotalPayin = amount(payin)
	e.TotalPayout = amount(payout)
	e.NetRevenue = amount(netRevenue)
	e.NetPremiumPayin = amount(netPayin)
	e.NetPremiumPayout = amount(netPayout)
	e.InsuranceCompany = text(insurer)
	e.State = text(state)
	e.ProductType = text(product)
	e.InsuranceType = text(insuranceType)

	if brokerID != nil || brokerName != nil {
		e.BrokerData = &entity.BrokerData{BrokerID: text(brokerID), BrokerName: text(brokerName)}
	}
	if rmID != nil {
		e.RMData = &entity.RMData{RMID: text(rmID), Name: text(rmName)}
	}
	if assocID != nil {
		e.AssociateData = &entity.AssociateData{AssociateID: text(assocID), Name: text(assocName)}
	}
	return e, nil
}

func text(s *string) entity.Text {
	if s == nil {
		return ""
	}
	return entity.Text(*s)
}

// timestamp conserva el instante con su zona; el núcleo lo convierte a la zona del reporte.
func timestamp(t *time.Time) entity.Text {
	if t == nil || t.IsZero() {
		return ""
	}
	return entity.Text(t.Format(time.RFC3339Nano))
}

// calendarDate para columnas DATE: pgx las entrega a medianoche UTC, así que solo
// vale el día. Se emite YYYY-MM-DD para que el núcleo lo lea en la zona del reporte.
func calendarDate(t *time.Time) entity.Text {
	if t == nil || t.IsZero() {
		return ""
	}
	return entity.Text(t.Format("2006-01-02"))
}

func amount(d decimal.NullDecimal) entity.Amount {
	if !d.Valid {
		return ""
	}
	return entity.Amount(d.Decimal.String())
}
