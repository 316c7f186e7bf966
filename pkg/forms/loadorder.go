package forms

import "slices"

// LoadOrder lists plugin file names by index. Light plugins have their own
// index space.
type LoadOrder struct {
	Plugins []string
	Light   []string
}

// Resolve maps id, recorded under the saved load order, to the identifier
// the same form has under lo. It reports false when the owning plugin is
// no longer loaded.
func (lo LoadOrder) Resolve(saved LoadOrder, id FormID) (FormID, bool) {
	switch idx := id.ModIndex(); idx {
	case RuntimeModIndex:
		return id, true
	case LightModIndex:
		old := int(id.LightIndex())
		if old >= len(saved.Light) {
			return 0, false
		}
		cur := slices.Index(lo.Light, saved.Light[old])
		if cur < 0 || cur > 0xFFF {
			return 0, false
		}
		return FormID(uint32(LightModIndex)<<24 | uint32(cur)<<12 | uint32(id)&0xFFF), true
	default:
		if int(idx) >= len(saved.Plugins) {
			return 0, false
		}
		cur := slices.Index(lo.Plugins, saved.Plugins[idx])
		if cur < 0 || cur >= int(LightModIndex) {
			return 0, false
		}
		return id.WithModIndex(byte(cur)), true
	}
}
