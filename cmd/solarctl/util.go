package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// asBox converts a comma-separated flag value into a bounding box.
func asBox(vals []float64, name string) ([4]float64, error) {
	var box [4]float64
	if len(vals) != 4 {
		return box, fmt.Errorf("--%s needs exactly 4 values: left,right,top,bottom", name)
	}
	copy(box[:], vals)
	return box, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
