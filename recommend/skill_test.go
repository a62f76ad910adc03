package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillMatchScore(t *testing.T) {
	tests := []struct {
		skill      SkillLevel
		difficulty Difficulty
		want       float64
	}{
		{SkillBeginner, DifficultyEasy, 3},
		{SkillIntermediate, DifficultyMedium, 3},
		{SkillAdvanced, DifficultyHard, 3},
		{SkillBeginner, DifficultyMedium, 1},
		{SkillIntermediate, DifficultyEasy, 1},
		{SkillIntermediate, DifficultyHard, 1},
		{SkillAdvanced, DifficultyMedium, 1},
		{SkillBeginner, DifficultyHard, 0},
		{SkillAdvanced, DifficultyEasy, 0},
		{"expert", DifficultyMedium, 3},
		{"expert", DifficultyHard, 1},
		{SkillBeginner, "extreme", 1},
		{"", "", 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.skill)+"/"+string(tt.difficulty), func(t *testing.T) {
			assert.Equal(t, tt.want, SkillMatchScore(tt.skill, tt.difficulty))
		})
	}
}
