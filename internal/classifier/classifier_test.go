package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"creator_scout/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		history     []string
		tags        []string
		description string
		want        domain.Category
	}{
		{name: "slots with gaming tag", label: "Slots", tags: []string{"gaming"}, want: domain.CategoryIGaming},
		{name: "empty", want: domain.CategoryVariety},
		{name: "known game", label: "Dota 2", want: domain.CategoryGaming},
		{name: "unknown game falls back to gaming", label: "Some Indie Roguelike", want: domain.CategoryGaming},
		{name: "casino keyword inside game-like label", label: "Virtual Casino Games", want: domain.CategoryIGaming},
		{name: "just chatting", label: "Just Chatting", tags: []string{"music"}, want: domain.CategoryIRL},
		{name: "music label", label: "Music", want: domain.CategoryMusic},
		{name: "accented label folds", label: "Músic", want: domain.CategoryMusic},
		{name: "art exact", label: "Art", want: domain.CategoryCreative},
		{name: "sports", label: "Sports", want: domain.CategorySports},
		{name: "education", label: "Science & Technology", want: domain.CategoryEducation},
		{name: "history decides when label empty", history: []string{"Poker"}, want: domain.CategoryIGaming},
		{name: "history of plain game", history: []string{"Minecraft"}, want: domain.CategoryGaming},
		{name: "tags decide when no label", tags: []string{"English", "ASMR"}, want: domain.CategoryIRL},
		{name: "free text", description: "chill lofi beats and guitar covers", want: domain.CategoryMusic},
		{name: "free text gambling", description: "big bonus hunt tonight!!", want: domain.CategoryIGaming},
		{name: "gaming label with plain description", label: "Fortnite", description: "building faster every day", want: domain.CategoryGaming},
		{name: "igaming tag beats irl label", label: "Just Chatting", tags: []string{"slots"}, want: domain.CategoryIGaming},
		{name: "igaming description beats music label", label: "Music", description: "bonus hunt casino night", want: domain.CategoryIGaming},
		{name: "irl history beats music label", label: "Music", history: []string{"Just Chatting"}, want: domain.CategoryIRL},
		{name: "education description beats gaming label", label: "Fortnite", description: "learn to build faster", want: domain.CategoryEducation},
		{name: "word boundary", description: "what a mistake", want: domain.CategoryVariety},
		{name: "punctuation folded", label: "  JUST-CHATTING  ", want: domain.CategoryIRL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.label, tt.history, tt.tags, tt.description)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_IGamingWinsOverGamingTags(t *testing.T) {
	for _, label := range []string{"Slots", "Casino", "Poker", "Blackjack", "Roulette"} {
		got := Classify(label, nil, []string{"gaming", "Fortnite", "esports"}, "ranked gameplay")
		assert.Equal(t, domain.CategoryIGaming, got, label)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	first := Classify("Games + Demos", []string{"Art"}, []string{"music"}, "slots")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Classify("Games + Demos", []string{"Art"}, []string{"music"}, "slots"))
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "musica arte", fold("Música & Arte!"))
	assert.Equal(t, "games demos", fold("Games + Demos"))
	assert.Equal(t, "", fold("  --  "))
}
