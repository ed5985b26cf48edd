// internal/game/decks.go
package game

import "sync"

// Built-in prompt decks. Real deployments register larger content packs at
// startup via RegisterDeck; these ship so a room is playable out of the box.
var builtinDecks = map[string][]string{
	"classic": {
		"a haunted vending machine",
		"the world's worst superhero",
		"a dragon at the DMV",
		"breakfast in zero gravity",
		"a snail running late",
		"the last slice of pizza",
		"a wizard doing laundry",
		"an octopus playing drums",
		"a very suspicious snowman",
		"grandma's secret recipe",
		"a pirate's day off",
		"the monster under the bed",
		"a robot learning to dance",
		"an overly dramatic houseplant",
		"the moon's side hustle",
		"a duck holding a grudge",
	},
	"animals": {
		"a giraffe in a phone booth",
		"a cat running a bank",
		"two raccoons in a trench coat",
		"a penguin's beach vacation",
		"a hamster-powered city",
		"an owl who lost its glasses",
		"a crab at a job interview",
		"a very fast turtle",
		"a bear filing taxes",
		"a goldfish with big plans",
		"a llama wedding",
		"a spider's knitting club",
	},
	"places": {
		"the waiting room of doom",
		"a theme park for ghosts",
		"the bottom of a cereal bowl",
		"an underwater post office",
		"a castle made of leftovers",
		"the elevator to nowhere",
		"a library at midnight",
		"the last gas station on Mars",
		"a volcano's birthday party",
		"an airport for birds",
		"the inside of a pocket",
		"a city built on a sleeping giant",
	},
	"pop": {
		"a superhero's laundry day",
		"a video game boss's retirement",
		"the reality show no one watches",
		"an alien's first concert",
		"a time traveler's garage sale",
		"the sequel nobody asked for",
		"a zombie's skincare routine",
		"a boy band of grandpas",
		"the world's longest movie credits",
		"a vampire at the dentist",
		"a mermaid's driving lesson",
		"the final level",
	},
}

var (
	deckMu        sync.RWMutex
	externalDecks = map[string][]string{}
)

// RegisterDeck adds or replaces a named prompt deck. Content services call
// this at startup to install full prompt packs.
func RegisterDeck(name string, prompts []string) {
	deckMu.Lock()
	defer deckMu.Unlock()
	cp := make([]string, len(prompts))
	copy(cp, prompts)
	externalDecks[name] = cp
}

// DeckPrompts returns the prompts for a named deck, or nil if unknown.
// Externally registered decks shadow built-ins of the same name.
func DeckPrompts(name string) []string {
	deckMu.RLock()
	defer deckMu.RUnlock()
	if d, ok := externalDecks[name]; ok {
		return d
	}
	return builtinDecks[name]
}

// DeckExists reports whether a deck name resolves to any prompts.
func DeckExists(name string) bool {
	return len(DeckPrompts(name)) > 0
}

// DeckNames lists every known deck name.
func DeckNames() []string {
	deckMu.RLock()
	defer deckMu.RUnlock()
	names := make([]string, 0, len(builtinDecks)+len(externalDecks))
	for name := range builtinDecks {
		names = append(names, name)
	}
	for name := range externalDecks {
		if _, builtin := builtinDecks[name]; !builtin {
			names = append(names, name)
		}
	}
	return names
}
