package capture

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrNoCamera reports that no capture device is available.
var ErrNoCamera = errors.New("no camera available")

// Camera is a video capture node.
type Camera struct {
	Device string `json:"device"`
	Name   string `json:"name,omitempty"`
	Index  int    `json:"index"`
}

// ListCameras returns up to maxDevices capture nodes ordered by device
// number. maxDevices <= 0 means no limit.
func ListCameras(ctx context.Context, maxDevices int) ([]Camera, error) {
	cameras, err := discover(ctx, maxDevices)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cameras, func(i, j int) bool {
		return deviceNumber(cameras[i].Device) < deviceNumber(cameras[j].Device)
	})
	if maxDevices > 0 && len(cameras) > maxDevices {
		cameras = cameras[:maxDevices]
	}
	return cameras, nil
}

// FirstCamera returns the lowest-numbered capture node.
func FirstCamera(ctx context.Context, maxDevices int) (Camera, error) {
	cameras, err := ListCameras(ctx, maxDevices)
	if err != nil {
		return Camera{}, err
	}
	if len(cameras) == 0 {
		return Camera{}, ErrNoCamera
	}
	return cameras[0], nil
}

// devicePath turns a udev DEVNAME ("video0") into a device node path.
func devicePath(devname string) string {
	devname = strings.TrimSpace(devname)
	if devname == "" || strings.HasPrefix(devname, "/") {
		return devname
	}
	return "/dev/" + devname
}

// deviceNumber extracts N from /dev/videoN; unparsable names sort last.
func deviceNumber(device string) int {
	base := device[strings.LastIndex(device, "/")+1:]
	digits := strings.TrimLeft(base, "abcdefghijklmnopqrstuvwxyz")
	if digits == "" {
		return int(^uint(0) >> 1)
	}
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return int(^uint(0) >> 1)
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// Event is a camera hotplug notification.
type Event struct {
	Action string `json:"action"`
	Camera Camera `json:"camera"`
}
