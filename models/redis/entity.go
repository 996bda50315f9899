package redis

import "time"

// Entity is anything stored as a keyed record plus an entry in an
// active-id index set.
type Entity interface {
	StoreID() string
}

// Touchable entities carry an updated_at timestamp refreshed on mutation
type Touchable interface {
	Touch(now time.Time)
}

// Timestamps is embedded by every ephemeral entity
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newTimestamps(now time.Time) Timestamps {
	now = now.UTC()
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

func (ts *Timestamps) Touch(now time.Time) {
	ts.UpdatedAt = now.UTC()
}

// Now is overridable so tests can pin timestamps
var Now = time.Now

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func removeString(list []string, value string) ([]string, bool) {
	for i, v := range list {
		if v == value {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}
