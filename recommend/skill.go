package recommend

var skillLevels = map[SkillLevel]int{
	SkillBeginner:     0,
	SkillIntermediate: 1,
	SkillAdvanced:     2,
}

var difficultyLevels = map[Difficulty]int{
	DifficultyEasy:   0,
	DifficultyMedium: 1,
	DifficultyHard:   2,
}

// SkillMatchScore scores how well a declared skill fits an event difficulty:
// 3 for an exact match, 1 for adjacent levels, 0 otherwise. Unknown values
// count as the middle level.
func SkillMatchScore(skill SkillLevel, difficulty Difficulty) float64 {
	userLevel, ok := skillLevels[skill]
	if !ok {
		userLevel = 1
	}
	eventLevel, ok := difficultyLevels[difficulty]
	if !ok {
		eventLevel = 1
	}

	switch diff := userLevel - eventLevel; {
	case diff == 0:
		return 3.0
	case diff == 1 || diff == -1:
		return 1.0
	default:
		return 0.0
	}
}
