package tools

import (
	"log/slog"

	"github.com/gymleadhub/atlas-agent/internal/store"
)

// NewBuiltinRegistry returns a registry with the full gym tool set wired to
// the store.
func NewBuiltinRegistry(db *store.DB, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(&CheckClassAvailability{DB: db})
	r.Register(&GetUpcomingClasses{DB: db})
	r.Register(&BookClass{DB: db})
	r.Register(&CancelBooking{DB: db})
	r.Register(&SearchClients{DB: db})
	r.Register(&GetClientDetails{DB: db})
	r.Register(&GetLeadStats{DB: db})
	r.Register(&GetRevenue{DB: db})
	r.Register(&ScheduleFollowup{DB: db})
	return r
}
