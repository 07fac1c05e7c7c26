package models

// Category classifies a tracked entity. The category is fixed at
// registration and drives the entity's priority tier.
type Category int

const (
	CategoryPlayer Category = iota
	CategoryHostile
	CategoryPassive
	CategoryVillager
	CategoryItem
	CategoryVehicle
	CategoryProjectile
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryHostile:
		return "hostile"
	case CategoryPassive:
		return "passive"
	case CategoryVillager:
		return "villager"
	case CategoryItem:
		return "item"
	case CategoryVehicle:
		return "vehicle"
	case CategoryProjectile:
		return "projectile"
	default:
		return "other"
	}
}

// PriorityTier orders entities for tick-time processing. Lower values are
// processed more often.
type PriorityTier int

const (
	TierCritical PriorityTier = iota
	TierHigh
	TierMedium
	TierLow
)

func (t PriorityTier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// Tier returns the processing tier derived from the category. Players drive
// visibility queries and stay critical; projectiles and hostiles move fast
// enough to need per-tick attention.
func (c Category) Tier() PriorityTier {
	switch c {
	case CategoryPlayer:
		return TierCritical
	case CategoryHostile, CategoryProjectile:
		return TierHigh
	case CategoryPassive, CategoryVillager, CategoryVehicle:
		return TierMedium
	default:
		return TierLow
	}
}

// TrackedEntity is the tracker-side record of one world entity. It is owned
// exclusively by a single tracker and guarded by the tracker's lock.
type TrackedEntity struct {
	ID       int64
	Position Position
	Radius   float32
	Category Category
	Tier     PriorityTier

	// LastUpdateTick is the logical tick of the last position update, or the
	// registration tick if the entity never moved.
	LastUpdateTick uint64
	AccessCount    uint64
}
