package gltf

// migrateMaterial rewrites one material in place. Materials carrying the
// specular-glossiness extension are migrated to metallic-roughness; plain PBR
// materials need no content change because the image URIs were already
// rewritten. Returns whether the specular-glossiness block was removed.
func migrateMaterial(material map[string]any, textures []any, touched map[int]struct{}) bool {
	extensions, _ := material["extensions"].(map[string]any)
	specGloss, hasSpecGloss := extensions[specGlossExtension].(map[string]any)
	if !hasSpecGloss {
		return false
	}

	pbr, _ := material["pbrMetallicRoughness"].(map[string]any)
	if pbr == nil {
		pbr = make(map[string]any)
	}

	changed := false
	if diffuseTexture, ok := specGloss["diffuseTexture"]; ok {
		pbr["baseColorTexture"] = diffuseTexture
		changed = true
	}
	if diffuseFactor, ok := specGloss["diffuseFactor"]; ok {
		pbr["baseColorFactor"] = diffuseFactor
		changed = true
	}
	if sgTexture, ok := specGloss["specularGlossinessTexture"]; ok && textureTouched(sgTexture, textures, touched) {
		pbr["metallicRoughnessTexture"] = sgTexture
		if _, ok := pbr["metallicFactor"]; !ok {
			pbr["metallicFactor"] = 0.0
		}
		if _, ok := pbr["roughnessFactor"]; !ok {
			pbr["roughnessFactor"] = 1.0
		}
		changed = true
	}
	if textureTouched(material["normalTexture"], textures, touched) {
		changed = true
	}

	if !changed {
		return false
	}
	material["pbrMetallicRoughness"] = pbr
	delete(extensions, specGlossExtension)
	if len(extensions) == 0 {
		delete(material, "extensions")
	}
	return true
}

// referencesTouched reports whether any texture reference slot on a plain
// PBR material points at a touched image.
func referencesTouched(material map[string]any, textures []any, touched map[int]struct{}) bool {
	for _, slot := range []string{"normalTexture", "occlusionTexture", "emissiveTexture"} {
		if textureTouched(material[slot], textures, touched) {
			return true
		}
	}
	pbr, _ := material["pbrMetallicRoughness"].(map[string]any)
	if pbr == nil {
		return false
	}
	for _, slot := range []string{"baseColorTexture", "metallicRoughnessTexture"} {
		if textureTouched(pbr[slot], textures, touched) {
			return true
		}
	}
	return false
}

// textureTouched resolves a texture info object through the textures array
// to its source image. Missing or out-of-range indices count as not touched.
func textureTouched(info any, textures []any, touched map[int]struct{}) bool {
	ref, ok := info.(map[string]any)
	if !ok {
		return false
	}
	index, ok := jsonIndex(ref["index"])
	if !ok || index < 0 || index >= len(textures) {
		return false
	}
	tex, ok := textures[index].(map[string]any)
	if !ok {
		return false
	}
	source, ok := jsonIndex(tex["source"])
	if !ok {
		return false
	}
	_, isTouched := touched[source]
	return isTouched
}

func jsonIndex(value any) (int, bool) {
	f, ok := value.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}
