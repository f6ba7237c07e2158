package compositor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"timeline-compositor/internal/timeline"

	"gopkg.in/yaml.v3"
)

// Manifest describes compositions to build at startup.
//
//	compositions:
//	  - id: main
//	    state: paused
//	    objects:
//	      - id: bed
//	        duration: 10s
//	        priority: 2
//	      - kind: composition
//	        ref: inserts
//	  - id: inserts
//	    objects:
//	      - id: ad
//	        start: 4s
//	        duration: 2s
//	        media_start: 30s
//	        media_duration: 2s
type Manifest struct {
	Compositions []ManifestComposition `yaml:"compositions"`
}

// ManifestComposition is one composition in a Manifest.
type ManifestComposition struct {
	ID            string           `yaml:"id"`
	Priority      uint32           `yaml:"priority"`
	PriorityFloor *uint32          `yaml:"priority_floor"`
	Scan          string           `yaml:"scan"`
	State         string           `yaml:"state"`
	Objects       []ManifestObject `yaml:"objects"`
}

// ManifestObject is one child in a ManifestComposition.
type ManifestObject struct {
	ID            string    `yaml:"id"`
	Kind          string    `yaml:"kind"`
	Ref           string    `yaml:"ref"`
	Inputs        int       `yaml:"inputs"`
	Start         Duration  `yaml:"start"`
	Duration      Duration  `yaml:"duration"`
	MediaStart    *Duration `yaml:"media_start"`
	MediaDuration Duration  `yaml:"media_duration"`
	Priority      *uint32   `yaml:"priority"`
	Active        *bool     `yaml:"active"`
}

// Duration is a span of time written either as a Go duration string
// ("1m30s") or as a bare integer count of nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	if n, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

var errNegativeTime = errors.New("time must not be negative")

func (d Duration) instant() (uint64, error) {
	if d < 0 {
		return 0, errNegativeTime
	}
	return uint64(d), nil
}

// LoadManifest decodes a manifest. Unknown fields are rejected.
func LoadManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// LoadManifestFile reads and decodes the manifest at path.
func LoadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return LoadManifest(bytes.NewReader(data))
}

// ApplyManifest creates every composition in m, then adds their objects,
// then drives each composition to its declared state. Compositions may
// reference each other regardless of the order they are listed in.
func (s *Service) ApplyManifest(m *Manifest) error {
	ids := make([]timeline.ObjectID, len(m.Compositions))
	for i, mc := range m.Compositions {
		id, err := s.CreateComposition(CreateCompositionRequest{
			ID:            mc.ID,
			Priority:      mc.Priority,
			PriorityFloor: mc.PriorityFloor,
			Scan:          mc.Scan,
		})
		if err != nil {
			return err
		}
		ids[i] = id
	}

	for i, mc := range m.Compositions {
		for j, mo := range mc.Objects {
			req, err := mo.request()
			if err != nil {
				return fmt.Errorf("composition %q object %d: %w", ids[i], j, err)
			}
			if _, err := s.AddObject(ids[i], req); err != nil {
				return fmt.Errorf("composition %q object %d: %w", ids[i], j, err)
			}
		}
	}

	for i, mc := range m.Compositions {
		if mc.State == "" {
			continue
		}
		target, ok := timeline.ParseState(mc.State)
		if !ok {
			return fmt.Errorf("composition %q: %w: %q", ids[i], ErrInvalidState, mc.State)
		}
		c, err := s.GetComposition(ids[i])
		if err != nil {
			return err
		}
		if err := driveTo(c, target); err != nil {
			return fmt.Errorf("composition %q: %w", ids[i], err)
		}
	}
	return nil
}

func (mo ManifestObject) request() (AddObjectRequest, error) {
	start, err := mo.Start.instant()
	if err != nil {
		return AddObjectRequest{}, fmt.Errorf("start: %w", err)
	}
	req := AddObjectRequest{
		ID:            mo.ID,
		Kind:          mo.Kind,
		Ref:           mo.Ref,
		Inputs:        mo.Inputs,
		Start:         start,
		Duration:      int64(mo.Duration),
		MediaDuration: int64(mo.MediaDuration),
		Priority:      mo.Priority,
		Active:        mo.Active,
	}
	if mo.MediaStart != nil {
		ms, err := mo.MediaStart.instant()
		if err != nil {
			return AddObjectRequest{}, fmt.Errorf("media_start: %w", err)
		}
		req.MediaStart = &ms
	}
	return req, nil
}
