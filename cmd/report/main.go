// Command report runs the bundled sample sensor packages through the
// dispatcher and prints a summary line per training.
package main

import (
	"fmt"
	"log"

	"example.com/ftracker/internal/domain"
)

type sensorPackage struct {
	code domain.TypeCode
	data []float64
}

var packages = []sensorPackage{
	{domain.TypeSwimming, []float64{720, 1, 80, 25, 40}},
	{domain.TypeRunning, []float64{15000, 1, 75}},
	{domain.TypeWalking, []float64{9000, 1, 75, 180}},
}

func main() {
	for _, pkg := range packages {
		training, err := domain.ParsePackage(pkg.code, pkg.data)
		if err != nil {
			log.Fatalf("read package %s: %v", pkg.code, err)
		}
		fmt.Println(domain.NewSummary(training).Message())
	}
}
