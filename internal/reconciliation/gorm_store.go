package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

const channelCacheTTL = 10 * time.Minute

// GormStores backs the engine's read interfaces with the relational schema.
// Channel lookups are cached in redis when a client is configured; a nil
// client disables caching without changing behavior.
type GormStores struct {
	db  *gorm.DB
	rdb *redis.Client
}

var (
	_ InvoiceStore = (*GormStores)(nil)
	_ ChannelStore = (*GormStores)(nil)
)

func NewGormStores(db *gorm.DB, rdb *redis.Client) *GormStores {
	return &GormStores{db: db, rdb: rdb}
}

type candidateRow struct {
	InvoiceID   uint
	TenantPhone string
	Amount      decimal.Decimal
	DueDate     time.Time
}

func (r candidateRow) candidate() Candidate {
	return Candidate{
		InvoiceID:   r.InvoiceID,
		TenantPhone: r.TenantPhone,
		Amount:      r.Amount,
		DueDate:     r.DueDate,
	}
}

func (s *GormStores) EligibleByReference(ctx context.Context, code string) (*Candidate, error) {
	var row candidateRow
	err := s.db.WithContext(ctx).Table("invoices i").
		Joins("LEFT JOIN tenants t ON t.id = i.tenant_id").
		Where("i.reference_code = ? AND i.status IN ? AND i.deleted_at IS NULL", code, eligibleStatuses).
		Select(`i.id AS invoice_id, i.amount AS amount, i.due_date AS due_date, COALESCE(t.phone_number, '') AS tenant_phone`).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.InvoiceID == 0 {
		return nil, nil
	}
	c := row.candidate()
	return &c, nil
}

func (s *GormStores) CandidatesForLandlord(ctx context.Context, landlordID uint, minAmount, maxAmount decimal.Decimal, from, to time.Time) ([]Candidate, error) {
	var rows []candidateRow
	err := s.db.WithContext(ctx).Table("invoices i").
		Joins("JOIN leases l ON l.id = i.lease_id").
		Joins("JOIN units u ON u.id = l.unit_id").
		Joins("JOIN properties p ON p.id = u.property_id").
		Joins("LEFT JOIN tenants t ON t.id = i.tenant_id").
		Where("p.landlord_id = ?", landlordID).
		Where("i.status IN ?", eligibleStatuses).
		Where("i.amount BETWEEN ? AND ?", minAmount, maxAmount).
		Where("i.due_date BETWEEN ? AND ?", from, to).
		Where("i.deleted_at IS NULL").
		Select(`i.id AS invoice_id, i.amount AS amount, i.due_date AS due_date, COALESCE(t.phone_number, '') AS tenant_phone`).
		Order("i.due_date ASC, i.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	cands := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		cands = append(cands, r.candidate())
	}
	return cands, nil
}

func (s *GormStores) ActiveChannel(ctx context.Context, paybill, account string) (*Channel, error) {
	cacheKey := fmt.Sprintf("paychan:%s:%s", paybill, account)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var ch Channel
			if json.Unmarshal([]byte(cached), &ch) == nil {
				return &ch, nil
			}
			slog.Warn("Failed to unmarshal cached channel", "key", cacheKey)
		} else if err != redis.Nil {
			slog.Error("Redis GET command failed", "error", err, "key", cacheKey)
		}
	}

	var row models.LandlordPaymentChannel
	err := s.db.WithContext(ctx).
		Where("bank_paybill_number = ? AND bank_account_number = ? AND active = ?", paybill, account, true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ch := Channel{ID: row.ID, LandlordID: row.LandlordID, BankName: row.BankName}

	if s.rdb != nil {
		if data, err := json.Marshal(ch); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, channelCacheTTL).Err(); err != nil {
				slog.Error("Failed to cache channel", "error", err, "key", cacheKey)
			}
		}
	}

	return &ch, nil
}
