package config

// Default returns the built-in skirmish used when no scenario file is
// given: two mixed squads facing each other across a 30x20 field with a
// swamp strip in the middle and both entropy features on.
func Default() *Scenario {
	sc := &Scenario{
		Name:     "default",
		MaxTicks: 300,
		Seed:     1,
		Terrain:  TerrainSpec{Width: 30, Height: 20},
		Entropy:  true,
	}
	for y := 6; y < 14; y++ {
		sc.Terrain.Cells = append(sc.Terrain.Cells, CellSpec{X: 15, Y: y, Kind: "swamp"})
	}
	loadouts := []string{
		"tough,attack:2,move:2",
		"tough,attack:2,move:2",
		"ranged_attack:2,move:2",
		"ranged_attack:2,move:2",
		"heal,move:2",
	}
	for i, body := range loadouts {
		sc.Friendly = append(sc.Friendly, UnitSpec{X: 3, Y: 6 + 2*i, Body: body})
		sc.Enemy = append(sc.Enemy, UnitSpec{X: 26, Y: 6 + 2*i, Body: body})
	}
	return sc
}
