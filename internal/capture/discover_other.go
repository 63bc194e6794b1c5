//go:build !linux

package capture

import (
	"context"
	"fmt"
	"os"
)

const defaultProbeCount = 5

// discover probes /dev/video0 .. /dev/video<max-1>.
func discover(ctx context.Context, maxDevices int) ([]Camera, error) {
	if maxDevices <= 0 {
		maxDevices = defaultProbeCount
	}
	var cameras []Camera
	for i := 0; i < maxDevices; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		device := fmt.Sprintf("/dev/video%d", i)
		if _, err := os.Stat(device); err == nil {
			cameras = append(cameras, Camera{Device: device})
		}
	}
	return cameras, nil
}
