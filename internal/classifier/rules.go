package classifier

import (
	"strings"

	"creator_scout/internal/domain"
)

// rule is the curated vocabulary of one category. exact entries must equal a
// whole folded label or tag; keywords may appear as whole words anywhere,
// including free text. Short or ambiguous words belong in exact only.
type rule struct {
	category domain.Category
	exact    map[string]struct{}
	keywords []string
}

func newRule(c domain.Category, exact []string, keywords []string) rule {
	r := rule{category: c, exact: make(map[string]struct{}, len(exact))}
	for _, e := range exact {
		r.exact[fold(e)] = struct{}{}
	}
	for _, k := range keywords {
		r.keywords = append(r.keywords, fold(k))
	}
	return r
}

// rules are evaluated in order; the first match wins. Gambling labels overlap
// with generic game labels on most platforms, so iGaming comes first.
var rules = []rule{
	newRule(domain.CategoryIGaming,
		[]string{"slots", "casino", "gambling", "poker", "blackjack", "roulette", "crash", "plinko", "stake", "sports betting", "virtual casino", "dice", "mines"},
		[]string{"slots", "slot machine", "casino", "gambling", "gamble", "poker", "blackjack", "roulette", "baccarat", "sportsbook", "betting", "bonus buy", "bonus hunt", "stake com", "roobet", "plinko", "high roller"},
	),
	newRule(domain.CategoryIRL,
		[]string{"just chatting", "irl", "travel & outdoors", "travel and outdoors", "food & drink", "food and drink", "pools, hot tubs, and beaches", "asmr", "talk shows & podcasts", "fitness & health", "beauty & body art", "animals, aquariums, and zoos"},
		[]string{"just chatting", "irl", "in real life", "travel", "vlog", "podcast", "asmr", "cooking", "mukbang", "outdoors", "hot tub"},
	),
	newRule(domain.CategoryMusic,
		[]string{"music", "music & performing arts", "dj", "singing", "karaoke"},
		[]string{"music", "musician", "singing", "singer", "karaoke", "dj set", "producer", "guitar", "piano", "drums", "concert", "beatmaking"},
	),
	newRule(domain.CategoryCreative,
		[]string{"art", "makers & crafting", "creative", "software and game development", "photography", "design", "drawing", "writing"},
		[]string{"digital art", "painting", "drawing", "illustration", "crafting", "woodworking", "3d modeling", "animation", "cosplay", "pixel art", "game development", "gamedev"},
	),
	newRule(domain.CategorySports,
		[]string{"sports", "football", "soccer", "basketball", "baseball", "tennis", "mma", "boxing", "wrestling", "golf", "chess", "formula 1", "f1"},
		[]string{"sports", "football match", "soccer", "basketball", "nba", "nfl", "ufc", "mma", "boxing", "tennis", "watch party sports", "formula 1"},
	),
	newRule(domain.CategoryEducation,
		[]string{"science & technology", "science and technology", "education", "programming", "software development", "language learning", "politics"},
		[]string{"education", "educational", "tutorial", "lecture", "learn", "learning", "coding", "programming", "science", "math", "history lesson", "study with me"},
	),
	newRule(domain.CategoryGaming,
		[]string{"games + demos", "retro", "league of legends", "valorant", "fortnite", "minecraft", "counter strike", "counter-strike", "grand theft auto v", "dota 2", "apex legends", "call of duty warzone", "world of warcraft", "rust", "overwatch 2"},
		[]string{"gaming", "gameplay", "video game", "videogame", "speedrun", "esports", "let s play", "playthrough", "walkthrough", "ranked"},
	),
}

func (r rule) matchesLabel(label string) bool {
	if label == "" {
		return false
	}
	if _, ok := r.exact[label]; ok {
		return true
	}
	return r.matchesText(label)
}

func (r rule) matchesAny(labels []string) bool {
	for _, l := range labels {
		if r.matchesLabel(l) {
			return true
		}
	}
	return false
}

func (r rule) matchesText(text string) bool {
	if text == "" {
		return false
	}
	padded := " " + text + " "
	for _, k := range r.keywords {
		if containsWord(padded, k) {
			return true
		}
	}
	return false
}

// containsWord reports whether the folded phrase occurs in padded on word
// boundaries. padded must carry a leading and trailing space.
func containsWord(padded, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(padded, " "+phrase+" ")
}
