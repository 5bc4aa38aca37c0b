// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command kernelrun runs a gpgpu kernel over an image and saves the result.
//
// The image is bound as the matrix input "image" and its size in pixels as
// the vec2 input "size", so a body can read imageAt(uv) or compute texel
// offsets from 1.0 / size:
//
//	kernelrun -kernel invert.wgsl -image in.png -o out.png
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gpgpu"
	_ "github.com/gogpu/gpgpu/gpu"
)

func main() {
	var (
		kernel  = flag.String("kernel", "", "kernel body file (WGSL statements returning vec4<f32>)")
		input   = flag.String("image", "", "input image")
		output  = flag.String("o", "out.png", "output file; the extension selects the encoder")
		format  = flag.String("format", "rgba8", "output format: r8, rg8, rgba8, r16f, rg16f, rgba16f, r32f, rg32f, rgba32f")
		device  = flag.String("device", "", "device name (default: best registered)")
		verbose = flag.Bool("v", false, "log to stderr")
	)
	flag.Parse()

	if *kernel == "" || *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: kernelrun -kernel body.wgsl -image in.png [-o out.png] [-format rgba8]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *verbose {
		gpgpu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(*kernel, *input, *output, *format, *device); err != nil {
		log.Fatalf("kernelrun: %v", err)
	}
	log.Printf("Result saved to %s\n", *output)
}

func run(kernelPath, inputPath, outputPath, formatName, deviceName string) error {
	f, err := gpgpu.ParseFormat(formatName)
	if err != nil {
		return err
	}
	body, err := os.ReadFile(kernelPath)
	if err != nil {
		return err
	}
	img, err := gpgpu.LoadMatrix(inputPath)
	if err != nil {
		return err
	}

	opts := []gpgpu.Option{}
	if deviceName != "" {
		opts = append(opts, gpgpu.WithBackend(deviceName))
	}
	m, err := gpgpu.Start(opts...)
	if err != nil {
		return err
	}
	defer m.Stop()

	e, err := gpgpu.New(m, string(body), gpgpu.WithLabel("kernelrun"))
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.SetOutput(img.Width(), img.Height(), f); err != nil {
		return err
	}
	if err := e.SetInput("image", img); err != nil {
		return err
	}
	if err := e.SetInput("size", gpgpu.Vec2{float32(img.Width()), float32(img.Height())}); err != nil {
		return err
	}

	out, err := e.Invoke()
	if err != nil {
		return err
	}
	return gpgpu.SaveCanvas(out, outputPath)
}
