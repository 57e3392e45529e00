package identity

import (
	"math/rand"
	"strconv"
)

// Pseudonyms are Color+Animal+Number, e.g. "CrimsonOtter4821". The dictionary
// sizes give ~3.9M combinations; collisions are resolved by the issuer's
// retry loop against the store, not here.
var colors = []string{
	"Amber", "Aqua", "Azure", "Beige", "Black", "Blue", "Bronze", "Brown",
	"Coral", "Crimson", "Cyan", "Emerald", "Fuchsia", "Gold", "Gray", "Green",
	"Indigo", "Ivory", "Jade", "Lavender", "Lime", "Magenta", "Maroon", "Mauve",
	"Mint", "Navy", "Olive", "Orange", "Orchid", "Pink", "Plum", "Purple",
	"Red", "Rose", "Ruby", "Salmon", "Scarlet", "Silver", "Teal", "Violet",
	"White", "Yellow",
}

var animals = []string{
	"Badger", "Bat", "Bear", "Beaver", "Bison", "Camel", "Cheetah", "Cobra",
	"Condor", "Cougar", "Coyote", "Crane", "Crow", "Deer", "Dingo", "Dolphin",
	"Donkey", "Eagle", "Falcon", "Ferret", "Finch", "Fox", "Gazelle", "Gecko",
	"Gibbon", "Giraffe", "Goose", "Hawk", "Heron", "Hornet", "Hyena", "Ibex",
	"Iguana", "Jackal", "Jaguar", "Koala", "Lemur", "Leopard", "Lion", "Llama",
	"Lynx", "Macaw", "Marmot", "Mole", "Moose", "Newt", "Ocelot", "Orca",
	"Osprey", "Otter", "Owl", "Panda", "Panther", "Parrot", "Pelican", "Penguin",
	"Puffin", "Puma", "Quail", "Rabbit", "Raccoon", "Raven", "Salmon", "Seal",
	"Shark", "Sloth", "Sparrow", "Squid", "Stork", "Swan", "Tapir", "Tiger",
	"Toucan", "Turtle", "Viper", "Walrus", "Weasel", "Whale", "Wolf", "Wombat",
	"Yak", "Zebra",
}

// Generate produces one pseudonym candidate.
func Generate() string {
	color := colors[rand.Intn(len(colors))]
	animal := animals[rand.Intn(len(animals))]
	number := 100 + rand.Intn(9900)
	return color + animal + strconv.Itoa(number)
}
