package constants

import (
	"fmt"
	"time"
)

// Redis key and TTL conventions.
// Pattern: cinebook:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG   = 24 * time.Hour // theater/layout reference data
	TTL_STATIC_MEDIUM = 6 * time.Hour  // screen geometry
)

const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // show details
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // show listings
)

const (
	TTL_DYNAMIC_SHORT = 30 * time.Second // live seat availability
)

// ================== KEY PREFIXES ==================

const CACHE_PREFIX = "cinebook"

// Each key prefix takes the entity's uuid as its suffix. The scheduler
// key doubles as the SET NX arm marker for a show's expiry job.
const (
	CACHE_KEY_SHOW_DETAIL    = CACHE_PREFIX + ":shows:detail:uuid:"
	CACHE_KEY_SHOW_SEATS     = CACHE_PREFIX + ":shows:seats:uuid:"
	CACHE_KEY_LAYOUT_DETAIL  = CACHE_PREFIX + ":layouts:detail:uuid:"
	CACHE_KEY_THEATER_DETAIL = CACHE_PREFIX + ":theaters:detail:uuid:"
	SCHED_KEY_EXPIRY_ARMED   = CACHE_PREFIX + ":sched:expiry:uuid:"
)

func BuildShowSeatsKey(showID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_SHOW_SEATS, showID)
}

func BuildShowDetailKey(showID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_SHOW_DETAIL, showID)
}

func BuildLayoutDetailKey(layoutID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_LAYOUT_DETAIL, layoutID)
}

func BuildExpiryArmKey(showID string) string {
	return fmt.Sprintf("%s%s", SCHED_KEY_EXPIRY_ARMED, showID)
}
