// Package env builds the environment of L1 controllers and their
// clients from flags and environment variables.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "fxboard"

// MachineID identifies this machine. It is derived from the OS
// machine ID, keyed by the application, and falls back to the
// hostname.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil && id != "" {
		return id[:12]
	}
	glog.V(1).Infof("machine ID unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
