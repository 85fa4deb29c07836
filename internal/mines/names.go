package mines

import "math/rand/v2"

var usernames = []string{
	"Abacus", "Badger", "Beacon", "Bramble", "Cinder", "Cobalt", "Comet",
	"Cricket", "Dynamo", "Ember", "Falcon", "Fennel", "Flint", "Gadget",
	"Garnet", "Glimmer", "Harbor", "Hazel", "Indigo", "Juniper", "Kestrel",
	"Lantern", "Maple", "Marble", "Meadow", "Nimbus", "Nutmeg", "Onyx",
	"Otter", "Pebble", "Pepper", "Quartz", "Quill", "Raven", "Rocket",
	"Saffron", "Sparrow", "Thistle", "Tinker", "Umber", "Velvet", "Walnut",
	"Willow", "Yarrow", "Zephyr",
}

// RandomUsername picks a display name for players who did not choose one.
func RandomUsername(r *rand.Rand) string {
	if r == nil {
		return usernames[rand.IntN(len(usernames))]
	}
	return usernames[r.IntN(len(usernames))]
}
