package offline

import "context"

// FamilyUsage is the usage of one record family.
type FamilyUsage struct {
	ItemCount  int64 `json:"item_count"`
	TotalBytes int64 `json:"total_bytes"`
}

// UsageReport aggregates cache usage for display. Pure read-side, safe to
// call frequently.
type UsageReport struct {
	Families     map[string]FamilyUsage `json:"families"`
	TotalBytes   int64                  `json:"total_bytes"`
	MaxBytes     int64                  `json:"max_bytes"`
	UsagePercent float64                `json:"usage_percent"`
}

// GetCacheStatistics reports per-family counts and byte totals, the grand
// total, and usage against the configured byte budget. Aggregates are
// computed live from the rows rather than the metadata table, so the
// report is correct even if bookkeeping lags.
func (s *Store) GetCacheStatistics(ctx context.Context) (UsageReport, error) {
	report := UsageReport{
		Families: make(map[string]FamilyUsage, len(families())),
		MaxBytes: s.opts.MaxCacheBytes,
	}

	db := s.db.WithContext(ctx)
	for _, fam := range families() {
		var count int64
		if err := db.Model(fam.model).Count(&count).Error; err != nil {
			return UsageReport{}, storageErr("cache statistics", err)
		}

		var total int64
		if err := db.Model(fam.model).Select(sizeColumn(fam)).Scan(&total).Error; err != nil {
			return UsageReport{}, storageErr("cache statistics", err)
		}

		report.Families[fam.table] = FamilyUsage{ItemCount: count, TotalBytes: total}
		report.TotalBytes += total
	}

	if report.MaxBytes > 0 {
		report.UsagePercent = float64(report.TotalBytes) / float64(report.MaxBytes) * 100
	}
	return report, nil
}
