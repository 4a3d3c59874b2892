package texture

import "fmt"

// Transform converts one decoded buffer into the output set for its role and
// mode. It is a pure function: the input buffer is not retained and every
// returned buffer is freshly allocated. Buffers with channel counts other
// than 3 or 4 are rejected.
func Transform(buf *Buffer, role Role, mode Mode) (map[OutputKey]*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	rgba, err := ensureAlpha(buf)
	if err != nil {
		return nil, err
	}

	out := make(map[OutputKey]*Buffer, 2)
	switch role {
	case RoleNormal:
		if mode == ModeSpecGlos {
			out[KeyConverted] = normalIdentity(rgba)
		} else {
			out[KeyConverted] = normalRemap(rgba)
		}
	case RoleDiffuse:
		color, alpha := splitDiffuse(rgba, mode == ModeStandard)
		out[KeyColor] = color
		if alpha != nil {
			out[KeyAlpha] = alpha
		}
	case RoleGloss:
		out[KeyRoughness] = glossToRoughness(rgba)
	case RoleSpecGlos:
		spec, roughness := splitSpecGlos(rgba)
		out[KeySpec] = spec
		out[KeyRoughness] = roughness
	default:
		return nil, fmt.Errorf("unknown texture role %q", role)
	}
	return out, nil
}

// ensureAlpha returns a 4-channel copy of buf, with alpha forced to opaque
// when the source had only a color triplet.
func ensureAlpha(buf *Buffer) (*Buffer, error) {
	switch buf.Channels {
	case 4:
		clone := NewBuffer(buf.Width, buf.Height, 4)
		copy(clone.Pix, buf.Pix)
		return clone, nil
	case 3:
		clone := NewBuffer(buf.Width, buf.Height, 4)
		src, dst := buf.Pix, clone.Pix
		for i, j := 0, 0; i < len(src); i, j = i+3, j+4 {
			dst[j] = src[i]
			dst[j+1] = src[i+1]
			dst[j+2] = src[i+2]
			dst[j+3] = 255
		}
		return clone, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d", buf.Channels)
	}
}

// normalRemap applies the legacy channel shuffle used by the standard
// workflow: the exporter stores one normal axis in the alpha channel, so the
// remap pulls it back into the first color channel and saturates the rest.
// Kept bit-identical to the original tool rather than re-derived.
func normalRemap(in *Buffer) *Buffer {
	out := NewBuffer(in.Width, in.Height, 4)
	src, dst := in.Pix, out.Pix
	for i := 0; i < len(src); i += 4 {
		dst[i] = src[i+3]
		dst[i+1] = src[i+1]
		dst[i+2] = 255
		dst[i+3] = 255
	}
	return out
}

func normalIdentity(in *Buffer) *Buffer {
	out := NewBuffer(in.Width, in.Height, 4)
	copy(out.Pix, in.Pix)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255
	}
	return out
}

// splitDiffuse produces the opaque color map and, when emitAlpha is set and
// any transparency exists, a grayscale alpha-as-color map. A uniformly opaque
// input never yields an alpha map.
func splitDiffuse(in *Buffer, emitAlpha bool) (color, alpha *Buffer) {
	color = NewBuffer(in.Width, in.Height, 4)
	src, dst := in.Pix, color.Pix
	minAlpha := uint8(255)
	for i := 0; i < len(src); i += 4 {
		dst[i] = src[i]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+2]
		dst[i+3] = 255
		if src[i+3] < minAlpha {
			minAlpha = src[i+3]
		}
	}
	if !emitAlpha || minAlpha == 255 {
		return color, nil
	}
	alpha = NewBuffer(in.Width, in.Height, 4)
	dst = alpha.Pix
	for i := 0; i < len(src); i += 4 {
		a := src[i+3]
		dst[i] = a
		dst[i+1] = a
		dst[i+2] = a
		dst[i+3] = 255
	}
	return color, alpha
}

// glossToRoughness inverts the color triplet and replicates the first
// inverted channel: roughness is the complement of gloss.
func glossToRoughness(in *Buffer) *Buffer {
	out := NewBuffer(in.Width, in.Height, 4)
	src, dst := in.Pix, out.Pix
	for i := 0; i < len(src); i += 4 {
		r := 255 - src[i]
		dst[i] = r
		dst[i+1] = r
		dst[i+2] = r
		dst[i+3] = 255
	}
	return out
}

// splitSpecGlos separates a combined specular/glossiness map: the color
// triplet becomes the specular map and the alpha channel, which encodes
// gloss, becomes a roughness map via bitwise complement.
func splitSpecGlos(in *Buffer) (spec, roughness *Buffer) {
	spec = NewBuffer(in.Width, in.Height, 4)
	roughness = NewBuffer(in.Width, in.Height, 4)
	src := in.Pix
	for i := 0; i < len(src); i += 4 {
		spec.Pix[i] = src[i]
		spec.Pix[i+1] = src[i+1]
		spec.Pix[i+2] = src[i+2]
		spec.Pix[i+3] = 255
		a := 255 - src[i+3]
		roughness.Pix[i] = a
		roughness.Pix[i+1] = a
		roughness.Pix[i+2] = a
		roughness.Pix[i+3] = 255
	}
	return spec, roughness
}
