package collect

import (
	"sync"
	"time"
)

// StaleInstanceThreshold is how long without a heartbeat before an
// instance is considered stale.
const StaleInstanceThreshold = 5 * time.Minute

// InstanceRegistry tracks registered editor hosts and their heartbeats.
type InstanceRegistry struct {
	mu        sync.RWMutex
	instances map[string]*InstanceInfo
}

// NewInstanceRegistry creates a new in-memory instance registry.
func NewInstanceRegistry() *InstanceRegistry {
	return &InstanceRegistry{
		instances: make(map[string]*InstanceInfo),
	}
}

// Register adds or updates an instance in the registry.
func (r *InstanceRegistry) Register(reg InstanceRegistration) *InstanceInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	info, exists := r.instances[reg.InstanceID]
	if exists {
		info.Hostname = reg.Hostname
		info.Version = reg.Version
		if !reg.StartedAt.IsZero() {
			info.StartedAt = reg.StartedAt
		}
		info.LastHeartbeat = now
		info.Status = "active"
		return info
	}

	info = &InstanceInfo{
		InstanceID:    reg.InstanceID,
		Hostname:      reg.Hostname,
		Version:       reg.Version,
		StartedAt:     reg.StartedAt,
		LastHeartbeat: now,
		Status:        "active",
	}
	r.instances[reg.InstanceID] = info
	return info
}

// Heartbeat updates the last heartbeat time for an instance. Unregistered
// instances get a minimal entry so actively shipping hosts stay visible
// even without explicit registration.
func (r *InstanceRegistry) Heartbeat(instanceID string) bool {
	if instanceID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	info, ok := r.instances[instanceID]
	if !ok {
		r.instances[instanceID] = &InstanceInfo{
			InstanceID:    instanceID,
			LastHeartbeat: now,
			Status:        "active",
		}
		return false
	}
	info.LastHeartbeat = now
	info.Status = "active"
	return true
}

// IncrementEventCount adds to the event count for an instance.
func (r *InstanceRegistry) IncrementEventCount(instanceID string, count int64) {
	if instanceID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	info, ok := r.instances[instanceID]
	if !ok {
		r.instances[instanceID] = &InstanceInfo{
			InstanceID:    instanceID,
			LastHeartbeat: now,
			EventCount:    count,
			Status:        "active",
		}
		return
	}
	info.EventCount += count
	info.LastHeartbeat = now
	info.Status = "active"
}

// List returns a snapshot of all registered instances with current status.
func (r *InstanceRegistry) List() []InstanceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	result := make([]InstanceInfo, 0, len(r.instances))
	for _, info := range r.instances {
		cp := *info
		if now.Sub(cp.LastHeartbeat) > StaleInstanceThreshold {
			cp.Status = "stale"
		}
		result = append(result, cp)
	}
	return result
}

// CleanStale removes instances without a heartbeat within maxAge.
// Returns the number removed.
func (r *InstanceRegistry) CleanStale(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, info := range r.instances {
		if now.Sub(info.LastHeartbeat) > maxAge {
			delete(r.instances, id)
			removed++
		}
	}
	return removed
}

// Count returns the total and active instance counts.
func (r *InstanceRegistry) Count() (total, active int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	total = len(r.instances)
	for _, info := range r.instances {
		if now.Sub(info.LastHeartbeat) <= StaleInstanceThreshold {
			active++
		}
	}
	return total, active
}
