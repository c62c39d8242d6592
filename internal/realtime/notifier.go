package realtime

// Notifier is what HTTP handlers use to push events after a write. Delivery
// is best effort: nothing is queued for users who are offline.
type Notifier interface {
	NotifyUser(userID string, payload any) bool
	BroadcastToDrivers(payload any) int
	BroadcastToAdmins(payload any) int
}

var _ Notifier = (*Hub)(nil)

func (h *Hub) NotifyUser(userID string, payload any) bool {
	return h.Notify(userID, payload)
}

func (h *Hub) BroadcastToDrivers(payload any) int {
	return h.BroadcastToRole(RoleDriver, payload)
}

func (h *Hub) BroadcastToAdmins(payload any) int {
	return h.BroadcastToRole(RoleAdmin, payload)
}
