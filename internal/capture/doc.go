// Package capture finds cameras and grabs single frames from them.
//
// On Linux, cameras are discovered by walking existing video4linux devices
// through go-udev and hotplug events are followed over the udev netlink
// socket. Other platforms probe /dev/video0 .. /dev/video<max-1>. Frames are
// grabbed by running ffmpeg once per capture.
package capture
