package texture

import "fmt"

// Mode selects which conversion workflow a run uses. The two modes are
// mutually exclusive and chosen once per run.
type Mode string

const (
	// ModeStandard is the generic PBR workflow for individually exported maps.
	ModeStandard Mode = "standard"
	// ModeSpecGlos is the combined specular/glossiness workflow used by
	// exporters that emit SPECGLOS maps alongside diffuse and normal maps.
	ModeSpecGlos Mode = "specglos"
)

// Role is the semantic texture category assigned to an input file.
type Role string

const (
	RoleNormal   Role = "normal"
	RoleDiffuse  Role = "diffuse"
	RoleGloss    Role = "gloss"
	RoleSpecGlos Role = "specglos"
)

// OutputKey identifies one produced map within a file's output set. Each key
// appears at most once per input file.
type OutputKey string

const (
	KeyColor     OutputKey = "color"
	KeyAlpha     OutputKey = "alpha"
	KeySpec      OutputKey = "spec"
	KeyRoughness OutputKey = "roughness"
	KeyConverted OutputKey = "converted"
)

// Suffix returns the filename suffix appended to the input's base name when
// the map for this key is saved. Other tools depend on this naming rule.
func (k OutputKey) Suffix() string {
	return "_" + string(k)
}

// Buffer is a rectangular grid of 8-bit pixels with 3 or 4 interleaved
// channels. Channel positions follow decoded storage order: the color triplet
// occupies channels 0-2 and the optional alpha channel sits at index 3.
// Buffers are owned exclusively by whichever stage currently holds them.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewBuffer allocates a zeroed buffer with the given geometry.
func NewBuffer(width, height, channels int) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Validate checks the geometry invariants every buffer must satisfy before it
// may enter the save stage.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil buffer")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", b.Width, b.Height)
	}
	if b.Channels != 3 && b.Channels != 4 {
		return fmt.Errorf("unsupported channel count %d", b.Channels)
	}
	if len(b.Pix) != b.Width*b.Height*b.Channels {
		return fmt.Errorf("pixel data length %d does not match %dx%dx%d", len(b.Pix), b.Width, b.Height, b.Channels)
	}
	return nil
}
