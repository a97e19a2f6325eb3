package types

// Event types for the rikiddo module
const (
	EventTypeRikiddoCreated   = "rikiddo_created"
	EventTypeRikiddoDestroyed = "rikiddo_destroyed"
	EventTypeVolumeUpdated    = "rikiddo_volume_updated"
	EventTypeRikiddoCleared   = "rikiddo_cleared"

	AttributeKeyPoolID = "pool_id"
	AttributeKeyVolume = "volume"
	AttributeKeyEma    = "ema"
	AttributeKeyFee    = "fee"
)
