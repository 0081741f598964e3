package main

import (
	"fmt"
	"strconv"
	"strings"

	"drawroom/internal/scene"
)

func parseRect(s string) (scene.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return scene.Rectangle{}, fmt.Errorf("want x,y,w,h, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return scene.Rectangle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v[i] = f
	}
	return scene.Rectangle{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}
