package offline

import "gorm.io/gorm"

// evictOverLimit trims a family back to its configured limit after a write.
// The scope is the category partition for response-style families and the
// whole family otherwise. Must run inside the same transaction as the
// write that may have exceeded the limit, so the count-then-trim sequence
// is atomic.
//
// Rows are ranked by the family's eviction order (lowest value first) and
// the excess beyond the limit is deleted. Lowering a limit in
// configuration needs no separate shrink pass: the next write to the
// partition trims down to the new limit.
func evictOverLimit(tx *gorm.DB, fam family, opts *Options, scope string) error {
	if fam.evictOrder == "" {
		return nil
	}

	limit := fam.limit(opts)
	if limit <= 0 {
		return nil
	}

	q := tx.Model(fam.model)
	if fam.scopeColumn != "" {
		q = q.Where(fam.scopeColumn+" = ?", scope)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count <= int64(limit) {
		return nil
	}

	excess := int(count - int64(limit))

	sub := tx.Model(fam.model).Select("id").Order(fam.evictOrder).Limit(excess)
	if fam.scopeColumn != "" {
		sub = sub.Where(fam.scopeColumn+" = ?", scope)
	}

	return tx.Where("id IN (?)", sub).Delete(fam.model).Error
}
