package entity

// Entity is a single object living in the world.
type Entity struct {
	// ID uniquely identifies the entity within its world.
	ID string
	// Kind is the catalogued classification of the entity.
	Kind Kind
	// CustomName is the display name given by a participant; empty when unnamed.
	CustomName string
}

// HasCustomName reports whether the entity carries a non-empty display name.
func (e Entity) HasCustomName() bool {
	return e.CustomName != ""
}
