package flow

// Script is a canned DogBot dialogue for local development. One greeting
// batch, then one reply batch per user turn; the conversation reports done
// on the final batch.
type Script struct {
	Greeting []string
	Replies  [][]string
}

// DefaultScript mirrors the tone of the production coaching flow closely
// enough to exercise the client's pacing, expiry, and completion paths.
func DefaultScript() Script {
	return Script{
		Greeting: []string{
			"Wuff! Ich bin der DogBot. 🐶",
			"Erzähl mir, was dein Hund gerade macht – ich helfe dir, sein Verhalten zu verstehen.",
		},
		Replies: [][]string{
			{
				"Danke dir! Das klingt nach einer spannenden Situation.",
				"Magst du mir noch sagen, wie dein Hund dabei wirkt? Eher aufgeregt, ängstlich oder entspannt?",
			},
			{
				"Verstanden. Aus Hundesicht ist das meistens ein Zeichen, dass ein Bedürfnis gerade nicht erfüllt ist.",
				"Beobachte die Situation die nächsten Tage und achte darauf, was direkt davor passiert.",
			},
			{
				"Das war's von mir für diese Runde. Danke, dass du deinem Hund zuhörst!",
				"Wenn du magst, starte jederzeit eine neue Unterhaltung. Wuff! 🐾",
			},
		},
	}
}
