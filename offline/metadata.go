package offline

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sizeColumn returns the aggregate expression for a family's byte total.
// Queue rows carry no recorded size; their payload length is measured
// directly.
func sizeColumn(fam family) string {
	if fam.table == queueFamily.table {
		return "COALESCE(SUM(LENGTH(payload)), 0)"
	}
	return "COALESCE(SUM(size_bytes), 0)"
}

// refreshMetadata recomputes the count and byte total for one family.
// Runs inside the caller's transaction, after every mutating write to the
// family. last_cleanup is preserved; only the cleanup pass stamps it.
func refreshMetadata(tx *gorm.DB, fam family) error {
	var count int64
	if err := tx.Model(fam.model).Count(&count).Error; err != nil {
		return err
	}

	var total int64
	if err := tx.Model(fam.model).Select(sizeColumn(fam)).Scan(&total).Error; err != nil {
		return err
	}

	meta := CacheMetadata{
		TableName_:     fam.table,
		TotalSizeBytes: total,
		ItemCount:      count,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "table_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_size_bytes", "item_count"}),
	}).Create(&meta).Error
}
