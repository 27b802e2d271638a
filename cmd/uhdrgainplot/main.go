/*
NAME
  main.go

DESCRIPTION
  uhdrgainplot is a diagnostic tool that renders the weight_factor
  curve (spec.md §4.4) over a range of max-display-boost values and,
  given an Ultra HDR JPEG, reports the mean and standard deviation of
  its gain-map samples in the plot title, to help tune
  --max-display-boost. No histogram is drawn.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package uhdrgainplot renders diagnostic plots of the gain-map
// compositing math, grounded on the teacher's gonum/plot stack.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/uhdr2avif/codec/uhdrjpeg"
	"github.com/ausocean/uhdr2avif/gainmap"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to an Ultra HDR JPEG whose gain-map statistics to report (optional).")
		outPath    = flag.String("output", "gainplot.png", "Path to write the rendered plot PNG to.")
		maxBoostHi = flag.Float64("max-boost-max", 100, "Upper bound of the max-display-boost sweep for the weight_factor curve.")
	)
	flag.Parse()

	var meta gainmap.GainMapMetadata
	var histValues []float64

	if *inputPath != "" {
		data, err := os.ReadFile(*inputPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "uhdrgainplot:", err)
			os.Exit(1)
		}
		primary, err := uhdrjpeg.Parse(data)
		if err != nil {
			fmt.Fprintln(os.Stderr, "uhdrgainplot:", err)
			os.Exit(1)
		}
		gm, ok, err := primary.ExtractGainMap(data)
		if err != nil || !ok {
			fmt.Fprintln(os.Stderr, "uhdrgainplot: no gain map found in input")
			os.Exit(1)
		}
		xmp := gm.XmpBytes()
		if xmp != nil {
			meta, err = gainmap.ParseXMP(xmp)
			if err != nil {
				fmt.Fprintln(os.Stderr, "uhdrgainplot:", err)
				os.Exit(1)
			}
		}
		histValues = gainMapLuma(gm)
	}

	if err := render(*outPath, meta, *maxBoostHi, histValues); err != nil {
		fmt.Fprintln(os.Stderr, "uhdrgainplot:", err)
		os.Exit(1)
	}
}

// gainMapLuma samples the gain-map sub-image on a coarse grid and
// returns each sample's average channel value.
func gainMapLuma(gm *uhdrjpeg.UhdrJpeg) []float64 {
	const grid = 32
	w, h := gm.Extent()
	if w == 0 || h == 0 {
		return nil
	}
	out := make([]float64, 0, grid*grid)
	for gy := 0; gy < grid; gy++ {
		for gx := 0; gx < grid; gx++ {
			u := (float64(gx) + 0.5) / grid
			v := (float64(gy) + 0.5) / grid
			px, ok := gm.SampleBilinear(u, v)
			if !ok {
				continue
			}
			out = append(out, float64(px[0]+px[1]+px[2])/3)
		}
	}
	return out
}

// render draws the weight_factor(log2_max_display_boost) curve, one
// line per base-rendition mode. When histValues is non-empty, their mean
// and standard deviation are appended to the plot title; the values
// themselves are not plotted.
func render(outPath string, meta gainmap.GainMapMetadata, maxBoostHi float64, histValues []float64) error {
	p := plot.New()
	p.Title.Text = "weight_factor vs max_display_boost"
	p.X.Label.Text = "max_display_boost"
	p.Y.Label.Text = "weight_factor"

	const points = 200
	sdrMeta := meta
	sdrMeta.BaseRenditionIsHDR = false
	hdrMeta := meta
	hdrMeta.BaseRenditionIsHDR = true

	sdrLine := make(plotter.XYs, points)
	hdrLine := make(plotter.XYs, points)
	for i := 0; i < points; i++ {
		boost := 1 + (maxBoostHi-1)*float64(i)/float64(points-1)
		log2Boost := float32(math.Log2(boost))
		sdrLine[i].X = boost
		sdrLine[i].Y = float64(sdrMeta.WeightFactor(log2Boost))
		hdrLine[i].X = boost
		hdrLine[i].Y = float64(hdrMeta.WeightFactor(log2Boost))
	}

	if err := plotutil.AddLines(p, "SDR base", sdrLine, "HDR base", hdrLine); err != nil {
		return fmt.Errorf("uhdrgainplot: adding lines: %w", err)
	}

	if len(histValues) > 0 {
		mean, stdDev := stat.MeanStdDev(histValues, nil)
		p.Title.Text = fmt.Sprintf("weight_factor vs max_display_boost (gain-map mean=%.3f, stddev=%.3f)", mean, stdDev)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("uhdrgainplot: saving plot: %w", err)
	}
	return nil
}
