package db

import (
	"fmt"

	"gorm.io/gorm"
)

// counterColumns enumerates the denormalized counter fields that may be
// adjusted through the cross-service increment/decrement endpoints. The
// allowlist keeps remote-supplied field names out of raw SQL.
var counterColumns = map[string]bool{
	"likes_count":     true,
	"comments_count":  true,
	"replies_count":   true,
	"posts_count":     true,
	"followers_count": true,
	"following_count": true,
}

// adjustCounter applies a signed delta to a counter column with a floor of
// zero. GREATEST clamps decrements; increments pass through unchanged.
func adjustCounter(tx *gorm.DB, model interface{}, keyColumn string, key interface{}, column string, delta int) error {
	if !counterColumns[column] {
		return fmt.Errorf("unknown counter column: %s", column)
	}
	expr := fmt.Sprintf("GREATEST(%s + ?, 0)", column)
	return tx.Model(model).
		Where(keyColumn+" = ?", key).
		UpdateColumn(column, gorm.Expr(expr, delta)).Error
}
