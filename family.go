package blockart

import "strings"

// Family groups blocks for decorative preview textures. It never affects matching.
type Family int

const (
	FamilyPlain Family = iota
	FamilyStone
	FamilyWood
	FamilyLog
	FamilyWool
	FamilyConcrete
	FamilyTerracotta
	FamilyGlass
	FamilyNether
	FamilyMetal
	FamilyLeaves
)

var familyNames = [...]string{
	FamilyPlain:      "plain",
	FamilyStone:      "stone",
	FamilyWood:       "wood",
	FamilyLog:        "log",
	FamilyWool:       "wool",
	FamilyConcrete:   "concrete",
	FamilyTerracotta: "terracotta",
	FamilyGlass:      "glass",
	FamilyNether:     "nether",
	FamilyMetal:      "metal",
	FamilyLeaves:     "leaves",
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return "plain"
	}
	return familyNames[f]
}

// ParseFamily maps a family name back to its value.
func ParseFamily(s string) (Family, bool) {
	for i, n := range familyNames {
		if n == s {
			return Family(i), true
		}
	}
	return FamilyPlain, false
}

// familyRules is evaluated in order; the first rule with a matching keyword wins.
var familyRules = []struct {
	family   Family
	keywords []string
	requires []string
}{
	{family: FamilyStone, keywords: []string{"stone", "cobble", "deepslate", "andesite", "diorite", "granite"}},
	{family: FamilyLog, keywords: []string{"_log"}},
	{family: FamilyWood, keywords: []string{"planks", "wood"}},
	{family: FamilyWool, keywords: []string{"wool"}},
	{family: FamilyConcrete, keywords: []string{"concrete"}},
	{family: FamilyTerracotta, keywords: []string{"terracotta"}},
	{family: FamilyGlass, keywords: []string{"glass"}},
	{family: FamilyNether, keywords: []string{"nether", "crimson", "warped", "blackstone", "basalt"}},
	{family: FamilyMetal, keywords: []string{"iron", "gold", "diamond", "emerald", "copper", "netherite"}, requires: []string{"block", "copper"}},
	{family: FamilyLeaves, keywords: []string{"leaves"}},
}

// ClassifyFamily assigns a family from a block id by keyword.
func ClassifyFamily(name string) Family {
	id := strings.ToLower(name)
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[i+1:]
	}
	for _, r := range familyRules {
		if !containsAny(id, r.keywords) {
			continue
		}
		if len(r.requires) > 0 && !containsAny(id, r.requires) {
			continue
		}
		return r.family
	}
	return FamilyPlain
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
