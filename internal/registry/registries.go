package registry

import "mbtaboard.org/internal/models"

// Registries bundles the per-entity stores owned by the orchestrator.
type Registries struct {
	Routes   *Store[models.Route]
	Stops    *Store[models.Stop]
	Trips    *Store[models.TripDescriptor]
	Vehicles *Store[models.Vehicle]
	Alerts   *Store[models.Alert]
}

// New returns a set of empty entity registries.
func New() *Registries {
	return &Registries{
		Routes:   NewStore[models.Route](),
		Stops:    NewStore[models.Stop](),
		Trips:    NewStore[models.TripDescriptor](),
		Vehicles: NewStore[models.Vehicle](),
		Alerts:   NewStore[models.Alert](),
	}
}
