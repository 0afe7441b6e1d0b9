package intent

// Keyword catalogs for the deterministic classifier. These are substrings,
// not whole-word matches: "can you stop now" must still match "stop".
// Grouped so they stay easy to edit and tune.

var stopKeywords = []string{
	// Soft stop
	"stop",
	"stop now",
	"stop please",
	"please stop",
	"can you stop",

	// Freeze / don't move / wait
	"halt",
	"freeze",
	"wait here",
	"wait there",
	"stay here",
	"stay there",
	"stay still",
	"stay right there",

	// Negative motion commands
	"do not move",
	"don't move",
	"do not go",
	"don't go",
	"do not follow",
	"don't follow",
}

var followKeywords = []string{
	"follow me",
	"follow my",
	"follow us",
	"come with me",
	"come with us",
	"come with",
	"come here",
	"come behind me",
	"come behind us",
	"walk with me",
	"walk behind me",
	"stay with me",
	"stay close to me",
}

var navigateKeywords = []string{
	"take me to",
	"take me",
	"can you take me",
	"can u take me",

	"bring me to",
	"bring me",
	"can you bring me",
	"can u bring me",

	"guide me to",
	"guide me",
	"can you guide",
	"can u guide",

	"show me the way",
	"show me where",
	"show me",

	"i need to go",
	"i need go",
	"i want to go",
	"i want go",
	"help me find",
	"help us find",

	"go to",
	"go with me to",
	"take us to",
	"take us",

	// Questions like "where is A201?"
	"where is",
	"where's",
	"how do i get to",
	"how can i get to",
}

var statusKeywords = []string{
	// Why robot is stopped / not moving
	"why did you stop",
	"why you stop",
	"why you stopped",
	"why are you stopped",
	"why did u stop",
	"why you not moving",
	"why you not move",
	"why you are not moving",

	// Robot condition
	"are you ok",
	"are you okay",
	"are you fine",
	"are you broken",
	"are you damaged",

	// What are you doing?
	"what are you doing",
	"what is happening",
	"what is going on",
	"what is your status",
	"tell me status",
	"status please",

	// Battery / temp / health
	"what is your battery",
	"battery level",
	"battery status",
	"how much battery",
	"battery percent",
	"battery percentage",

	"temperature",
	"what is your temperature",
	"are you hot",
	"are you overheating",
}

// triggerPhrases are scanned in order, most specific first, to find the text
// that follows a navigation request ("take me to A201" -> "A201").
var triggerPhrases = []string{
	"can you take me to",
	"can u take me to",
	"take me to",
	"can you bring me to",
	"bring me to",
	"can you guide me to",
	"guide me to",
	"i need to go to",
	"i want to go to",
	"i need to go",
	"i want to go",
	"help me find",
	"help us find",
	"show me the way to",
	"show me the way",
	"show me where",
	"how do i get to",
	"how can i get to",
	"where is",
	"where's",
	"go to",
}

// politenessWords end a goal phrase; anything after them is dropped.
var politenessWords = []string{"please", "now", "thanks", "thank you"}

// fillerWords are stripped from the front of a goal phrase.
var fillerWords = []string{"the", "room", "to", "our", "my", "me", "us"}
