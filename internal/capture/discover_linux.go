//go:build linux

package capture

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"
)

const sysClassVideo = "/sys/class/video4linux"

func videoMatcher(action string) netlink.Matcher {
	rules := &netlink.RuleDefinitions{}
	rule := netlink.RuleDefinition{
		Env: map[string]string{"SUBSYSTEM": "video4linux"},
	}
	if action != "" {
		rule.Action = &action
	}
	rules.AddRule(rule)
	return rules
}

// discover walks the existing video4linux devices. Metadata-only nodes
// (index > 0 on multi-node UVC cameras) are dropped.
func discover(ctx context.Context, _ int) ([]Camera, error) {
	queue := make(chan crawler.Device)
	errs := make(chan error, 1)
	quit := crawler.ExistingDevices(queue, errs, videoMatcher(""))

	var cameras []Camera
	for {
		select {
		case <-ctx.Done():
			abandon(quit, queue)
			return nil, ctx.Err()
		case err := <-errs:
			abandon(quit, queue)
			return nil, err
		case device, ok := <-queue:
			if !ok {
				return cameras, nil
			}
			cam, keep := cameraFromEnv(device.Env)
			if keep {
				cameras = append(cameras, cam)
			}
		}
	}
}

// abandon stops the crawler and drains devices it is still trying to send.
func abandon(quit chan struct{}, queue chan crawler.Device) {
	close(quit)
	go func() {
		for range queue {
		}
	}()
}

func cameraFromEnv(env map[string]string) (Camera, bool) {
	devname := env["DEVNAME"]
	if devname == "" {
		return Camera{}, false
	}
	node := filepath.Base(devname)
	index := readSysInt(filepath.Join(sysClassVideo, node, "index"))
	if index > 0 {
		return Camera{}, false
	}
	return Camera{
		Device: devicePath(devname),
		Name:   readSysString(filepath.Join(sysClassVideo, node, "name")),
		Index:  index,
	}, true
}

func readSysString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readSysInt(path string) int {
	value, err := strconv.Atoi(readSysString(path))
	if err != nil {
		return 0
	}
	return value
}
