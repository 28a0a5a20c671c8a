//go:build !windows

package main

import (
	"log"

	"github.com/kbinani/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	n := screenshot.NumActiveDisplays()
	log.Printf("MONITOR: Detected %d monitors", n)
	for i := 0; i < n; i++ {
		log.Printf("MONITOR: Display %d - %v", i, screenshot.GetDisplayBounds(i))
	}
}
