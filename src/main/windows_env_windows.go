//go:build windows

package main

import (
	"log"

	"golang.org/x/sys/windows"
)

var (
	shcore = windows.NewLazySystemDLL("Shcore.dll")
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
	procSetProcessDPIAware     = user32.NewProc("SetProcessDPIAware")
	procGetSystemMetrics       = user32.NewProc("GetSystemMetrics")
)

const (
	processPerMonitorDPIAware = 2

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
	smCMonitors       = 80
)

// enableDPIAwareness makes capture and overlay coordinates physical pixels so
// detected boxes line up with the layered window.
func enableDPIAwareness() {
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: per-monitor awareness enabled")
		} else {
			log.Printf("DPI: SetProcessDpiAwareness failed, code %d", ret)
		}
		return
	}
	if err := procSetProcessDPIAware.Find(); err != nil {
		log.Printf("DPI: no awareness API available")
		return
	}
	if ret, _, _ := procSetProcessDPIAware.Call(); ret != 0 {
		log.Printf("DPI: system awareness enabled (fallback)")
	}
}

func logMonitorConfiguration() {
	metric := func(i int) int {
		r, _, _ := procGetSystemMetrics.Call(uintptr(i))
		return int(int32(r))
	}
	log.Printf("MONITOR: %d monitors, virtual screen x:%d y:%d w:%d h:%d",
		metric(smCMonitors),
		metric(smXVirtualScreen), metric(smYVirtualScreen),
		metric(smCXVirtualScreen), metric(smCYVirtualScreen))
}
