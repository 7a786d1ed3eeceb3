// Package instance names the running API replica in logs.
package instance

import "github.com/angelmondragon/obohub-backend/pkg/env"

// ID returns the replica identifier from the platform, falling back to "local".
func ID() string {
	for _, key := range []string{"OBOHUB_INSTANCE_ID", "DYNO", "HOSTNAME"} {
		if id := env.Get(key, ""); id != "" {
			return id
		}
	}
	return "local"
}
