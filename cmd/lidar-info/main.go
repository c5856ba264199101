// Command lidar-info queries an RPLIDAR A1 for its identity and health
// and prints them. Useful for checking cabling and finding the right
// device path before running scanview.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/scanview/internal/rplidar"
)

var (
	serialPort = flag.String("port", "/dev/ttyUSB0", "Serial device path")
	baudRate   = flag.Int("baud", rplidar.DefaultBaudRate, "Serial baud rate")
	reset      = flag.Bool("reset", false, "Reset the sensor before querying")
)

func main() {
	flag.Parse()

	dev := rplidar.New(*serialPort, rplidar.WithBaudRate(*baudRate))
	if err := dev.Connect(); err != nil {
		log.Fatalf("lidar-info: %v", err)
	}
	defer dev.Close()

	if *reset {
		fmt.Println("resetting sensor...")
		if err := dev.Reset(); err != nil {
			log.Fatalf("lidar-info: reset: %v", err)
		}
	}

	info, err := dev.Info()
	if err != nil {
		log.Fatalf("lidar-info: get info: %v", err)
	}
	fmt.Printf("Model:         %d\n", info.Model)
	fmt.Printf("Firmware:      %s\n", info.Firmware)
	fmt.Printf("Hardware:      %d\n", info.Hardware)
	fmt.Printf("Serial number: %s\n", info.SerialNumber)

	health, err := dev.Health()
	if err != nil {
		log.Fatalf("lidar-info: get health: %v", err)
	}
	fmt.Printf("Health:        %s\n", health)
}
