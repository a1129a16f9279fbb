package cli

import (
	"context"
	"fmt"
)

// State prints the sensor lifecycle state and the device description.
func (a *App) State(ctx context.Context) error {
	info := a.provider.Info()
	fmt.Printf("State: %s\n", a.provider.State())
	fmt.Printf("Device: %s %s (serial %s, firmware %s)\n",
		info.Vendor, info.Model, info.Serial, info.Firmware)
	fmt.Printf("Type: %s, markers: %d, sample volume: %d uL, analysis: %d ms\n",
		info.Type, info.MarkersSupported, info.SampleVolumeUL, info.AnalysisTimeMS)
	return nil
}

// Clean runs a sensor self-cleaning cycle.
func (a *App) Clean(ctx context.Context) error {
	if err := a.provider.Clean(ctx); err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}
	fmt.Println("Cleaning cycle complete")
	return nil
}

// Calibrate runs a sensor calibration cycle.
func (a *App) Calibrate(ctx context.Context) error {
	if err := a.provider.Calibrate(ctx); err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}
	fmt.Println("Calibration complete")
	return nil
}
