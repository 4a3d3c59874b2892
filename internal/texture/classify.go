package texture

import (
	"path/filepath"
	"strings"
)

// Classify derives the texture role from a filename suffix. The base name is
// lower-cased, split on underscores, and scanned from the last token to the
// first; the first recognized token wins. Gloss tokens only classify in
// standard mode and SPECGLOS tokens only in specglos mode; in the opposite
// mode the token is ignored and the file skipped.
//
// When no token matches, standard mode falls back to treating the file as a
// normal map, while specglos mode skips it. SPECGLOS input comes from a single
// known exporter whose outputs are always suffixed, so unsuffixed files there
// are not textures of interest.
func Classify(filename string, mode Mode) (Role, bool) {
	base := strings.ToLower(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, "_")
	for i := len(parts) - 1; i >= 0; i-- {
		switch parts[i] {
		case "n", "normal", "nrm":
			return RoleNormal, true
		case "d", "diff", "diffuse", "albedo":
			return RoleDiffuse, true
		case "g", "gloss", "gls":
			if mode == ModeSpecGlos {
				return "", false
			}
			return RoleGloss, true
		case "sg", "specglos":
			if mode == ModeSpecGlos {
				return RoleSpecGlos, true
			}
			return "", false
		}
	}
	if mode == ModeSpecGlos {
		return "", false
	}
	return RoleNormal, true
}
