package speed

// Terrain factor presets offered for manual settings.
const (
	TerrainFlat      = 1.0
	TerrainHilly     = 0.8
	TerrainVeryHilly = 0.6
	TerrainDownhill  = 1.1
)

// TerrainDescription names the preset a terrain factor belongs to.
func TerrainDescription(factor float64) string {
	switch factor {
	case TerrainFlat:
		return "flat"
	case TerrainHilly:
		return "hilly"
	case TerrainVeryHilly:
		return "very hilly"
	case TerrainDownhill:
		return "downhill"
	default:
		return "custom"
	}
}
