package settings

import (
	"fmt"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/mileage"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

// Fee-rate setting keys follow "fee_<marketplace>_local_pct" and
// "fee_<marketplace>_shipped_pct". The settings-driven schedule is the
// authoritative source for fee computation; profit.DefaultFeeRates only
// seeds these keys.
func feeLocalKey(m domain.Marketplace) string {
	return fmt.Sprintf("fee_%s_local_pct", m)
}

func feeShippedKey(m domain.Marketplace) string {
	return fmt.Sprintf("fee_%s_shipped_pct", m)
}

// SettingDefaults holds all default values for configurable settings
var SettingDefaults = map[string]interface{}{
	// Cost allocation
	"allocation_include_unsellable": 0.0, // 1.0 = spread cost over unsellable items too

	// Mileage deduction
	"mileage_rate_per_mile": mileage.DefaultRatePerMile,

	// Scheduled jobs (cron expressions, with seconds)
	"snapshot_schedule":           "0 0 2 * * *", // Daily valuation snapshot at 02:00
	"backup_schedule":             "",            // Empty = use env/config value
	"job_maintenance_hour":        3.0,           // Daily WAL checkpoint hour (0-23)
	"subscription_sweep_schedule": "0 0 1 * * *", // Daily expiry sweep at 01:00

	// S3 export/backup (empty = use env/config values)
	"s3_bucket":            "",
	"s3_region":            "",
	"s3_access_key_id":     "",
	"s3_secret_access_key": "",
	"s3_endpoint":          "",

	// Backup retention
	"backup_retention_days": 90.0, // Days to keep backups (0 = keep forever)

	// Free-tier limits
	"free_tier_pallet_limit": 3.0, // Max pallets on the free tier
}

// SettingDescriptions documents what each setting controls.
var SettingDescriptions = map[string]string{
	"allocation_include_unsellable": "Spread pallet cost over unsellable items (1) or exclude them from the divisor (0)",
	"mileage_rate_per_mile":         "Deduction rate applied to logged business miles, in dollars per mile",
	"snapshot_schedule":             "Cron schedule for the daily inventory valuation snapshot",
	"backup_schedule":               "Cron schedule for the database backup job (empty uses the environment value)",
	"job_maintenance_hour":          "Hour of day (0-23) for WAL checkpoint maintenance",
	"subscription_sweep_schedule":   "Cron schedule for downgrading expired subscriptions",
	"backup_retention_days":         "Days to keep uploaded backups before pruning (0 keeps forever)",
	"free_tier_pallet_limit":        "Maximum number of pallets a free-tier account may hold",
}

func init() {
	// Seed per-marketplace fee rates from the static default table.
	for m, rate := range profit.DefaultFeeRates {
		SettingDefaults[feeLocalKey(m)] = rate.Local
		SettingDefaults[feeShippedKey(m)] = rate.Shipped
		SettingDescriptions[feeLocalKey(m)] = fmt.Sprintf("%s fee percent for local pickup sales", m)
		SettingDescriptions[feeShippedKey(m)] = fmt.Sprintf("%s fee percent for shipped sales", m)
	}
}
