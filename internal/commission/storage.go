package commission

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"wikenfarma-system/internal/database/models"
)

// gormStore is the relational implementation of calculationStore.
type gormStore struct {
	db *gorm.DB
}

func (g *gormStore) ActiveInformatore(ctx context.Context, informatoreID int64) (*models.Informatore, error) {
	var inf models.Informatore
	err := g.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", informatoreID, true).
		First(&inf).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: fmt.Sprintf("informatore %d", informatoreID)}
		}
		return nil, err
	}
	return &inf, nil
}

// CompensationForPeriod returns nil for an uncalculated period; absence is
// the normal case, not an error.
func (g *gormStore) CompensationForPeriod(ctx context.Context, informatoreID int64, month, year int) (*models.Compensation, error) {
	var comp models.Compensation
	err := g.db.WithContext(ctx).
		Where("informatore_id = ? AND month = ? AND year = ?", informatoreID, month, year).
		First(&comp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &comp, nil
}

func (g *gormStore) SubordinateIDs(ctx context.Context, capoID int64) ([]int64, error) {
	var ids []int64
	err := g.db.WithContext(ctx).Model(&models.Informatore{}).
		Where("capo_area_id = ? AND is_active = ?", capoID, true).
		Pluck("id", &ids).Error
	return ids, err
}

func (g *gormStore) CompensationsForPeriod(ctx context.Context, informatoreIDs []int64, month, year int) ([]models.Compensation, error) {
	if len(informatoreIDs) == 0 {
		return nil, nil
	}
	var comps []models.Compensation
	err := g.db.WithContext(ctx).
		Where("informatore_id IN ? AND month = ? AND year = ?", informatoreIDs, month, year).
		Find(&comps).Error
	return comps, err
}

func (g *gormStore) Adjustments(ctx context.Context, informatoreID int64, month, year int) ([]models.BonusMalus, error) {
	var rows []models.BonusMalus
	err := g.db.WithContext(ctx).
		Where("informatore_id = ? AND month = ? AND year = ?", informatoreID, month, year).
		Find(&rows).Error
	return rows, err
}

// SaveCalculation writes one calculation result all-or-nothing: the old audit
// logs are deleted and the header rewritten in a single transaction, so a
// failure leaves the prior record authoritative. replaceID zero creates a new
// header.
func (g *gormStore) SaveCalculation(ctx context.Context, comp *models.Compensation, logs []models.CommissionLog, replaceID int64) (*models.Compensation, error) {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replaceID != 0 {
			if err := tx.Where("compensation_id = ?", replaceID).Delete(&models.CommissionLog{}).Error; err != nil {
				return fmt.Errorf("failed to delete old commission logs: %w", err)
			}
			updates := map[string]interface{}{
				"FixedSalary":           comp.FixedSalary,
				"IqviaCommission":       comp.IqviaCommission,
				"WikenshipCommission":   comp.WikenshipCommission,
				"DirectSalesCommission": comp.DirectSalesCommission,
				"PerformanceBonus":      comp.PerformanceBonus,
				"VisitPenalty":          comp.VisitPenalty,
				"CutOffReduction":       comp.CutOffReduction,
				"TeamCommission":        comp.TeamCommission,
				"TotalGross":            comp.TotalGross,
				"TotalNet":              comp.TotalNet,
				"TotalSales":            comp.TotalSales,
				"AvgSalesLast12Months":  comp.AvgSalesLast12Months,
				"MonthlyVisits":         comp.MonthlyVisits,
				"Status":                comp.Status,
				"Stale":                 false,
				"CalculatedBy":          comp.CalculatedBy,
				"CalculatedAt":          comp.CalculatedAt,
				"ApprovedBy":            nil,
				"PaidBy":                nil,
				"PaidAt":                nil,
			}
			if err := tx.Model(&models.Compensation{}).Where("id = ?", replaceID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update compensation header: %w", err)
			}
			comp.ID = replaceID
		} else {
			if err := tx.Create(comp).Error; err != nil {
				return fmt.Errorf("failed to create compensation: %w", err)
			}
		}

		if len(logs) > 0 {
			for i := range logs {
				logs[i].CompensationID = comp.ID
			}
			if err := tx.Create(&logs).Error; err != nil {
				return fmt.Errorf("failed to create commission logs: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var saved models.Compensation
	if err := g.db.WithContext(ctx).Preload("CommissionLogs").First(&saved, comp.ID).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (g *gormStore) MarkStale(ctx context.Context, capoID int64, month, year int) (bool, error) {
	result := g.db.WithContext(ctx).Model(&models.Compensation{}).
		Where("informatore_id = ? AND month = ? AND year = ?", capoID, month, year).
		Update("stale", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
