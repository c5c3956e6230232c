package description

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/host"
)

// HostAttributes returns the non-identifying attributes describing the host the agent
// runs on.
func HostAttributes(ctx context.Context) (map[string]interface{}, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot read host info: %w", err)
	}
	attrs := map[string]interface{}{
		KeyHostName: info.Hostname,
		KeyOSType:   info.OS,
	}
	if info.HostID != "" {
		attrs[KeyHostID] = info.HostID
	}
	if info.KernelArch != "" {
		attrs[KeyHostArch] = info.KernelArch
	}
	if info.Platform != "" {
		attrs[KeyOSDescription] = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	}
	return attrs, nil
}
