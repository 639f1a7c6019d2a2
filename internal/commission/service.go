package commission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wikenfarma-system/internal/database/models"
)

const myCompensationCacheTTL = 30 * time.Minute

// calculationStore is everything one calculation run reads and writes.
type calculationStore interface {
	ActiveInformatore(ctx context.Context, informatoreID int64) (*models.Informatore, error)
	CompensationForPeriod(ctx context.Context, informatoreID int64, month, year int) (*models.Compensation, error)
	SubordinateIDs(ctx context.Context, capoID int64) ([]int64, error)
	CompensationsForPeriod(ctx context.Context, informatoreIDs []int64, month, year int) ([]models.Compensation, error)
	Adjustments(ctx context.Context, informatoreID int64, month, year int) ([]models.BonusMalus, error)
	SaveCalculation(ctx context.Context, comp *models.Compensation, logs []models.CommissionLog, replaceID int64) (*models.Compensation, error)
	MarkStale(ctx context.Context, capoID int64, month, year int) (bool, error)
}

// revenueSource feeds the calculator its sales picture.
type revenueSource interface {
	Breakdown(ctx context.Context, inf *models.Informatore, month, year int) (*RevenueBreakdown, error)
	MonthlySales(ctx context.Context, informatoreID int64, month, year int) (decimal.Decimal, error)
	OrdersForPeriod(ctx context.Context, informatoreID int64, month, year int) ([]OrderInput, error)
}

// Service orchestrates the engine over the stores: it loads the calculator's
// inputs, guards each period with an advisory lock, persists results
// transactionally and runs the lifecycle transitions.
type Service struct {
	db     *gorm.DB
	policy Policy
	store  calculationStore
	agg    revenueSource
	cache  periodCache
	locks  periodLocker
}

func NewService(db *gorm.DB, redisClient *redis.Client, policy Policy) *Service {
	cache := &redisCache{client: redisClient}
	return &Service{
		db:     db,
		policy: policy,
		store:  &gormStore{db: db},
		agg:    NewAggregator(db),
		cache:  cache,
		locks:  cache,
	}
}

func (s *Service) Policy() Policy {
	return s.policy
}

func previousPeriod(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

func (s *Service) adjustmentTotals(ctx context.Context, informatoreID int64, month, year int) (AdjustmentTotals, error) {
	rows, err := s.store.Adjustments(ctx, informatoreID, month, year)
	if err != nil {
		return AdjustmentTotals{}, err
	}

	totals := AdjustmentTotals{Bonus: decimal.Zero, Malus: decimal.Zero}
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return AdjustmentTotals{}, &ValidationError{
				Field:  "bonus_malus",
				Reason: fmt.Sprintf("adjustment %d has a malformed amount", row.ID),
			}
		}
		if amount.IsNegative() {
			totals.Malus = totals.Malus.Add(amount.Abs())
		} else {
			totals.Bonus = totals.Bonus.Add(amount)
		}
	}
	return totals, nil
}

// teamCommissionBase sums the post-cutoff commissions already finalized for
// the capo's subordinates this period. Subordinates without a calculated
// compensation contribute nothing; the batch runs them first, and a later
// subordinate recalculation marks the capo's record stale instead of
// recursing into it.
func (s *Service) teamCommissionBase(ctx context.Context, capo *models.Informatore, month, year int) (decimal.Decimal, error) {
	subordinateIDs, err := s.store.SubordinateIDs(ctx, capo.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(subordinateIDs) == 0 {
		return decimal.Zero, nil
	}

	comps, err := s.store.CompensationsForPeriod(ctx, subordinateIDs, month, year)
	if err != nil {
		return decimal.Zero, err
	}

	base := decimal.Zero
	for _, comp := range comps {
		// A rejected record carries disputed figures; it re-enters the base
		// once recalculated.
		if comp.Status == models.StatusDraft {
			continue
		}
		earned, err := earnedCommission(&comp)
		if err != nil {
			return decimal.Zero, err
		}
		base = base.Add(earned)
	}
	return base, nil
}

// earnedCommission is the post-cutoff commission actually paid on sales for
// a stored compensation row.
func earnedCommission(comp *models.Compensation) (decimal.Decimal, error) {
	earned := decimal.Zero
	for _, field := range []string{comp.IqviaCommission, comp.WikenshipCommission, comp.DirectSalesCommission} {
		amount, err := decimal.NewFromString(field)
		if err != nil {
			return decimal.Zero, fmt.Errorf("compensation %d has a malformed commission column: %w", comp.ID, err)
		}
		earned = earned.Add(amount)
	}
	reduction, err := decimal.NewFromString(comp.CutOffReduction)
	if err != nil {
		return decimal.Zero, fmt.Errorf("compensation %d has a malformed cut-off column: %w", comp.ID, err)
	}
	earned = earned.Sub(reduction)
	if earned.IsNegative() {
		return decimal.Zero, nil
	}
	return earned, nil
}

// CalculatePeriod computes (or deterministically recomputes) one
// informatore's compensation for a period.
func (s *Service) CalculatePeriod(ctx context.Context, informatoreID int64, month, year int, calculatedBy int64, force bool) (*models.Compensation, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	inf, err := s.store.ActiveInformatore(ctx, informatoreID)
	if err != nil {
		return nil, err
	}
	rules, err := SelectRuleSet(inf)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, informatoreID, month, year)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.store.CompensationForPeriod(ctx, informatoreID, month, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := Recalculable(existing.Status, force); err != nil {
			return nil, err
		}
	}

	breakdown, err := s.agg.Breakdown(ctx, inf, month, year)
	if err != nil {
		return nil, err
	}
	prevMonth, prevYear := previousPeriod(month, year)
	prevSales, err := s.agg.MonthlySales(ctx, informatoreID, prevMonth, prevYear)
	if err != nil {
		return nil, err
	}
	adjustments, err := s.adjustmentTotals(ctx, informatoreID, month, year)
	if err != nil {
		return nil, err
	}

	var orders []OrderInput
	if rules.Commissionable() {
		orders, err = s.agg.OrdersForPeriod(ctx, informatoreID, month, year)
		if err != nil {
			return nil, err
		}
	}

	teamBase := decimal.Zero
	if rules.Kind == RuleCapoArea {
		teamBase, err = s.teamCommissionBase(ctx, inf, month, year)
		if err != nil {
			return nil, err
		}
	}

	result, err := Calculate(Input{
		Rules:              rules,
		Breakdown:          *breakdown,
		Orders:             orders,
		PrevMonthSales:     prevSales,
		Adjustments:        adjustments,
		TeamCommissionBase: teamBase,
	}, s.policy)
	if err != nil {
		return nil, err
	}

	comp, err := s.persistResult(ctx, inf, existing, month, year, breakdown, result, calculatedBy)
	if err != nil {
		return nil, err
	}

	if err := s.markCapoStale(ctx, inf, month, year); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, informatoreID, month, year)

	return comp, nil
}

func (s *Service) persistResult(ctx context.Context, inf *models.Informatore, existing *models.Compensation, month, year int, breakdown *RevenueBreakdown, result *Result, calculatedBy int64) (*models.Compensation, error) {
	now := time.Now()
	comp := models.Compensation{
		InformatoreID:         inf.ID,
		Month:                 month,
		Year:                  year,
		FixedSalary:           result.FixedSalary.StringFixed(2),
		IqviaCommission:       result.IqviaCommission.StringFixed(2),
		WikenshipCommission:   result.WikenshipCommission.StringFixed(2),
		DirectSalesCommission: result.DirectSalesCommission.StringFixed(2),
		PerformanceBonus:      result.PerformanceBonus.StringFixed(2),
		VisitPenalty:          result.VisitPenalty.StringFixed(2),
		CutOffReduction:       result.CutOffReduction.StringFixed(2),
		TeamCommission:        result.TeamCommission.StringFixed(2),
		TotalGross:            result.TotalGross.StringFixed(2),
		TotalNet:              result.TotalNet.StringFixed(2),
		TotalSales:            breakdown.TotalSales.StringFixed(2),
		AvgSalesLast12Months:  breakdown.AvgSalesLast12Months.StringFixed(2),
		MonthlyVisits:         breakdown.MonthlyVisits,
		Status:                models.StatusCalculated,
		Stale:                 false,
		CalculatedBy:          calculatedBy,
		CalculatedAt:          &now,
	}

	logRows := make([]models.CommissionLog, 0, len(result.Logs))
	for _, entry := range result.Logs {
		orderDate := entry.OrderDate
		logRows = append(logRows, models.CommissionLog{
			InformatoreID:    inf.ID,
			Month:            month,
			Year:             year,
			OrderID:          entry.OrderID,
			OrderDate:        &orderDate,
			CustomerName:     entry.CustomerName,
			CustomerType:     entry.CustomerType,
			Source:           entry.Source,
			OrderAmount:      entry.OrderAmount.StringFixed(2),
			CommissionRate:   entry.CommissionRate.StringFixed(2),
			CommissionAmount: entry.CommissionAmount.StringFixed(2),
			CutOffApplied:    entry.CutOffApplied,
			CutOffAmount:     entry.CutOffAmount.StringFixed(2),
		})
	}

	var replaceID int64
	if existing != nil {
		replaceID = existing.ID
	}
	return s.store.SaveCalculation(ctx, &comp, logRows, replaceID)
}

// markCapoStale flags the supervising capo's compensation for the period:
// its team commission was computed from subordinate results that just
// changed. One-directional staleness, no recursive recomputation.
func (s *Service) markCapoStale(ctx context.Context, inf *models.Informatore, month, year int) error {
	if inf.CapoAreaID == nil || *inf.CapoAreaID == inf.ID {
		return nil
	}
	marked, err := s.store.MarkStale(ctx, *inf.CapoAreaID, month, year)
	if err != nil {
		return err
	}
	if marked {
		s.cache.Invalidate(ctx, *inf.CapoAreaID, month, year)
	}
	return nil
}

// BatchResult reports a bulk calculation run.
type BatchResult struct {
	SuccessCount  int                   `json:"success_count"`
	ErrorCount    int                   `json:"error_count"`
	Errors        []string              `json:"errors,omitempty"`
	Compensations []models.Compensation `json:"compensations"`
}

// CalculateAll runs every active informatore for the period. Plain
// informatori go first so that capo_area team commissions see finalized
// subordinate results; within each phase the runs are independent and
// proceed concurrently.
func (s *Service) CalculateAll(ctx context.Context, month, year int, calculatedBy int64, force bool) (*BatchResult, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	var informatori []models.Informatore
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id asc").
		Find(&informatori).Error
	if err != nil {
		return nil, err
	}

	var (
		batch BatchResult
		wg    sync.WaitGroup
		mu    sync.Mutex
	)

	runPhase := func(role string) {
		for _, inf := range informatori {
			if inf.Role != role {
				continue
			}
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				comp, err := s.CalculatePeriod(ctx, id, month, year, calculatedBy, force)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					batch.Errors = append(batch.Errors, fmt.Sprintf("informatore %d: %v", id, err))
					batch.ErrorCount++
					return
				}
				batch.Compensations = append(batch.Compensations, *comp)
				batch.SuccessCount++
			}(inf.ID)
		}
		wg.Wait()
	}

	runPhase(models.RoleInformatore)
	runPhase(models.RoleCapoArea)

	return &batch, nil
}

func (s *Service) lockedTransition(ctx context.Context, compensationID int64, next string, mutate func(comp *models.Compensation)) (*models.Compensation, error) {
	var comp models.Compensation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&comp, compensationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Resource: fmt.Sprintf("compensation %d", compensationID)}
			}
			return err
		}
		if err := ValidateTransition(comp.Status, next); err != nil {
			return err
		}
		comp.Status = next
		mutate(&comp)
		return tx.Save(&comp).Error
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, comp.InformatoreID, comp.Month, comp.Year)

	if err := s.db.WithContext(ctx).Preload("CommissionLogs").First(&comp, compensationID).Error; err != nil {
		return nil, err
	}
	return &comp, nil
}

// Approve moves a calculated compensation to approved. Admin-only at the
// HTTP boundary.
func (s *Service) Approve(ctx context.Context, compensationID, approvedBy int64, notes string) (*models.Compensation, error) {
	return s.lockedTransition(ctx, compensationID, models.StatusApproved, func(comp *models.Compensation) {
		comp.ApprovedBy = &approvedBy
		if notes != "" {
			comp.Notes = &notes
		}
	})
}

// Pay moves an approved compensation to paid, the terminal state.
func (s *Service) Pay(ctx context.Context, compensationID, paidBy int64) (*models.Compensation, error) {
	now := time.Now()
	return s.lockedTransition(ctx, compensationID, models.StatusPaid, func(comp *models.Compensation) {
		comp.PaidBy = &paidBy
		comp.PaidAt = &now
	})
}

// Reject drops a calculated or approved compensation back to draft with an
// audit note; a draft record may be recalculated without force.
func (s *Service) Reject(ctx context.Context, compensationID, rejectedBy int64, reason string) (*models.Compensation, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Reason: "rejection reason is required"}
	}
	note := fmt.Sprintf("[REJECTED by user %d on %s]: %s",
		rejectedBy, time.Now().Format("2006-01-02 15:04:05"), reason)
	return s.lockedTransition(ctx, compensationID, models.StatusDraft, func(comp *models.Compensation) {
		comp.ApprovedBy = nil
		if comp.Notes != nil && *comp.Notes != "" {
			note = *comp.Notes + "\n" + note
		}
		comp.Notes = &note
	})
}

// ListQuery filters the admin compensation list.
type ListQuery struct {
	Month          int
	Year           int
	InformatoreID  *int64
	EmploymentType string
	Page           int
	PageSize       int
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Compensation, int64, error) {
	if err := ValidatePeriod(q.Month, q.Year); err != nil {
		return nil, 0, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Compensation{}).
		Where("compensations.month = ? AND compensations.year = ?", q.Month, q.Year)
	if q.InformatoreID != nil {
		query = query.Where("compensations.informatore_id = ?", *q.InformatoreID)
	}
	if q.EmploymentType != "" {
		query = query.
			Joins("JOIN informatori ON informatori.id = compensations.informatore_id").
			Where("informatori.employment_type = ?", q.EmploymentType)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var comps []models.Compensation
	err := query.
		Order("compensations.informatore_id asc").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Preload("Informatore").
		Find(&comps).Error
	if err != nil {
		return nil, 0, err
	}
	return comps, totalCount, nil
}

// PeriodStats is the admin dashboard aggregate for one period.
type PeriodStats struct {
	Month             int    `json:"month"`
	Year              int    `json:"year"`
	CompensationCount int64  `json:"compensation_count"`
	EmployeeCount     int64  `json:"employee_count"`
	FreelancerCount   int64  `json:"freelancer_count"`
	TotalGross        string `json:"total_gross"`
	TotalNet          string `json:"total_net"`
	AverageGross      string `json:"average_gross"`
	// Percent change of total gross versus the previous month; empty when
	// the previous month has no calculated compensations.
	GrowthPercent string `json:"growth_percent,omitempty"`
}

func (s *Service) Stats(ctx context.Context, month, year int) (*PeriodStats, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	cacheKey := statsCacheKey(month, year)
	var cached PeriodStats
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var agg struct {
		TotalGross      string
		TotalNet        string
		Count           int64
		EmployeeCount   int64
		FreelancerCount int64
	}
	err := s.db.WithContext(ctx).Model(&models.Compensation{}).
		Joins("JOIN informatori ON informatori.id = compensations.informatore_id").
		Where("compensations.month = ? AND compensations.year = ?", month, year).
		Select("COALESCE(SUM(compensations.total_gross), 0) as total_gross, " +
			"COALESCE(SUM(compensations.total_net), 0) as total_net, " +
			"COUNT(*) as count, " +
			"COALESCE(SUM(CASE WHEN informatori.employment_type = 'employee' THEN 1 ELSE 0 END), 0) as employee_count, " +
			"COALESCE(SUM(CASE WHEN informatori.employment_type = 'freelancer' THEN 1 ELSE 0 END), 0) as freelancer_count").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	totalGross, err := decimal.NewFromString(agg.TotalGross)
	if err != nil {
		totalGross = decimal.Zero
	}
	totalNet, err := decimal.NewFromString(agg.TotalNet)
	if err != nil {
		totalNet = decimal.Zero
	}

	average := decimal.Zero
	if agg.Count > 0 {
		average = totalGross.Div(decimal.NewFromInt(agg.Count))
	}

	stats := &PeriodStats{
		Month:             month,
		Year:              year,
		CompensationCount: agg.Count,
		EmployeeCount:     agg.EmployeeCount,
		FreelancerCount:   agg.FreelancerCount,
		TotalGross:        totalGross.StringFixed(2),
		TotalNet:          totalNet.StringFixed(2),
		AverageGross:      average.StringFixed(2),
	}

	prevMonth, prevYear := previousPeriod(month, year)
	var prev struct {
		TotalGross string
	}
	err = s.db.WithContext(ctx).Model(&models.Compensation{}).
		Where("month = ? AND year = ?", prevMonth, prevYear).
		Select("COALESCE(SUM(total_gross), 0) as total_gross").
		Scan(&prev).Error
	if err == nil {
		prevGross, err := decimal.NewFromString(prev.TotalGross)
		if err == nil && prevGross.GreaterThan(decimal.Zero) {
			growth := totalGross.Sub(prevGross).Div(prevGross).Mul(oneHundred)
			stats.GrowthPercent = growth.StringFixed(2)
		}
	}

	s.cache.Set(ctx, cacheKey, stats, STATS_CACHE_TTL)
	return stats, nil
}

// ForInformatore is the representative dashboard read: the caller's own
// compensation for one period. An uncalculated period surfaces as
// NotFoundError, which the dashboard renders as "not yet calculated".
func (s *Service) ForInformatore(ctx context.Context, informatoreID int64, month, year int) (*models.Compensation, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	cacheKey := myCompensationCacheKey(informatoreID, month, year)
	var cached models.Compensation
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var comp models.Compensation
	err := s.db.WithContext(ctx).
		Where("informatore_id = ? AND month = ? AND year = ?", informatoreID, month, year).
		First(&comp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: fmt.Sprintf("compensation for period %04d-%02d", year, month)}
		}
		return nil, err
	}

	s.cache.Set(ctx, cacheKey, &comp, myCompensationCacheTTL)
	return &comp, nil
}

// LogsForInformatore returns the caller's own audit rows, date ascending,
// optionally filtered by customer name.
func (s *Service) LogsForInformatore(ctx context.Context, informatoreID int64, month, year int, search string) ([]models.CommissionLog, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("informatore_id = ? AND month = ? AND year = ?", informatoreID, month, year)
	if search != "" {
		query = query.Where("customer_name ILIKE ?", "%"+search+"%")
	}

	var logs []models.CommissionLog
	if err := query.Order("order_date asc, id asc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
