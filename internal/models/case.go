// Package models holds the case data model and the flat-file readers and
// writers of the analysis pipeline's input boundary. Surface meshing and
// centerline extraction happen in an external geometry service; this
// package only consumes its point/radius output files.
package models

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/PeterZs/morphMan/pkg/centerline"
)

// Case identifies one vessel case inside the input directory.
type Case struct {
	// Name is the case identifier, also the directory name.
	Name string

	// Dir is the absolute or input-relative case directory.
	Dir string
}

// CenterlinePath returns the precomputed centerline file of the case.
func (c Case) CenterlinePath() string {
	return filepath.Join(c.Dir, c.Name+"_centerline.txt")
}

// SiphonPath returns the precomputed siphon centerline file of the case.
func (c Case) SiphonPath() string {
	return filepath.Join(c.Dir, c.Name+"_siphon.txt")
}

// LandmarksPath returns the clipping-point file of the case.
func (c Case) LandmarksPath() string {
	return filepath.Join(c.Dir, c.Name+"_siphon_points.particles")
}

// ConfigPath returns the per-case YAML configuration file.
func (c Case) ConfigPath() string {
	return filepath.Join(c.Dir, "config.yaml")
}

// DiscoverCases lists the case directories under root in sorted order. A
// non-empty filter restricts the result to the case with that name.
func DiscoverCases(root, filter string) ([]Case, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "could not read input directory")
	}
	var cases []Case
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if filter != "" && e.Name() != filter {
			continue
		}
		cases = append(cases, Case{Name: e.Name(), Dir: filepath.Join(root, e.Name())})
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	if filter != "" && len(cases) == 0 {
		return nil, fmt.Errorf("case %q not found under %s", filter, root)
	}
	return cases, nil
}

// ReadCenterline reads an ordered centerline from a whitespace-separated
// text file with one "x y z" or "x y z radius" row per point. When radius
// values are present they are attached as the vessel radius array. A
// missing file yields MissingInputError.
func ReadCenterline(path string) (*centerline.Centerline, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &centerline.MissingInputError{Path: path}
		}
		return nil, errors.Wrap(err, "could not open centerline file")
	}
	defer f.Close()

	var points []centerline.Vec3
	var radius []float64
	hasRadius := false

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 && len(fields) != 4 {
			return nil, fmt.Errorf("%s:%d: expected 3 or 4 columns, got %d", path, lineNo, len(fields))
		}
		vals := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid number %q", path, lineNo, field)
			}
			vals[i] = v
		}
		points = append(points, centerline.Vec3{X: vals[0], Y: vals[1], Z: vals[2]})
		if len(vals) == 4 {
			hasRadius = true
			radius = append(radius, vals[3])
		} else {
			radius = append(radius, 0)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read centerline file")
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: no points", path)
	}

	line := centerline.New(points)
	if hasRadius {
		if err := line.SetScalars(centerline.RadiusArrayName, radius); err != nil {
			return nil, err
		}
	}
	return line, nil
}

// WriteCenterline writes a centerline (and its radius array, when present)
// in the format ReadCenterline consumes.
func WriteCenterline(path string, line *centerline.Centerline) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create centerline file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	radius, hasRadius := line.Scalars(centerline.RadiusArrayName)
	for i := 0; i < line.Len(); i++ {
		p := line.Point(i)
		if hasRadius {
			fmt.Fprintf(w, "%g %g %g %g\n", p.X, p.Y, p.Z, radius[i])
		} else {
			fmt.Fprintf(w, "%g %g %g\n", p.X, p.Y, p.Z)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "could not write centerline file")
	}
	return nil
}

// ReadLandmarks reads the ordered clipping points of a case, one "x y z"
// row per point. A missing file yields MissingInputError.
func ReadLandmarks(path string) ([]centerline.Vec3, error) {
	line, err := ReadCenterline(path)
	if err != nil {
		return nil, err
	}
	return line.Points(), nil
}

// WriteLandmarks persists an ordered clipping-point set.
func WriteLandmarks(path string, points []centerline.Vec3) error {
	return WriteCenterline(path, centerline.New(points))
}
