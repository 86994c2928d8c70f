package responder

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

const (
	xkcdURL    = "https://xkcd.com/"
	youtubeURL = "https://www.youtube.com/watch?v="
	dieSides   = 20
)

var youtubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Settings carries the identity the default table talks about.
type Settings struct {
	Nick    string
	Channel string
	// Roll returns a number in [1, sides]. Nil uses math/rand.
	Roll func(sides int) int
}

// Defaults builds the stock command and keyword table.
func Defaults(s Settings) Table {
	roll := s.Roll
	if roll == nil {
		roll = func(sides int) int { return rand.IntN(sides) + 1 }
	}

	return Table{
		Commands: []Command{
			{
				Name:         "!say",
				Usage:        "!say <text>",
				Help:         "I echo back whatever you say.",
				RequiresArgs: true,
				Run: func(req Request) ([]string, error) {
					return []string{req.Args}, nil
				},
			},
			{
				Name:  "!sing",
				Usage: "!sing",
				Help:  "I sing, duh.",
				Run: fixed(
					"Daisy, Daisy, Give me your answer, do.",
					"I'm half crazy all for the love of you.",
				),
			},
			{
				Name:  "!random",
				Usage: "!random",
				Help:  "Returns a random number.",
				Run: func(Request) ([]string, error) {
					return []string{fmt.Sprintf("%d.", roll(dieSides))}, nil
				},
			},
			{
				Name:  "!commands",
				Usage: "!commands",
				Help:  "Lists what I can do.",
				Run:   listCommands,
			},
			{
				Name:         "!xkcd",
				Usage:        "!xkcd <number>",
				Help:         "Links an xkcd comic.",
				RequiresArgs: true,
				Run: func(req Request) ([]string, error) {
					arg := firstField(req.Args)
					n, err := strconv.Atoi(arg)
					if err != nil || n <= 0 {
						return nil, invalid("%q is not a comic number", arg)
					}
					return []string{xkcdURL + strconv.Itoa(n)}, nil
				},
			},
			{
				Name:         "!youtube",
				Usage:        "!youtube <video id>",
				Help:         "Links a YouTube video.",
				RequiresArgs: true,
				Run: func(req Request) ([]string, error) {
					arg := firstField(req.Args)
					if !youtubeID.MatchString(arg) {
						return nil, invalid("%q is not a video id", arg)
					}
					return []string{youtubeURL + arg}, nil
				},
			},
			{
				Name:         "!beer",
				Usage:        "!beer <user>",
				Help:         "Hands someone a beer.",
				RequiresArgs: true,
				Run: func(req Request) ([]string, error) {
					return []string{"*Gives a beer to " + firstField(req.Args) + "!* Drink up!"}, nil
				},
			},
			{
				Name:       "!die",
				Usage:      "!die [" + s.Nick + "]",
				Help:       "Makes me leave :(",
				Privileged: true,
				Shutdown:   true,
				Run: func(req Request) ([]string, error) {
					if target := firstField(req.Args); target != "" && !strings.EqualFold(target, s.Nick) {
						return nil, ErrNotAddressed
					}
					return []string{
						"Do you wanna build a snowman?",
						"It doesn't have to be a snowman.",
						"Ok, Bye :(",
					}, nil
				},
			},
		},
		Keywords: []Keyword{
			{Match: "what is the matrix?", Lines: []string{"No-one can be told what the matrix is. You have to see it for yourself."}},
			{Match: "where are we?", Lines: []string{"Last I checked, we were in " + s.Channel + ", sooo..."}},
			{Match: "cake", Lines: []string{"The cake is a lie!"}},
			{Match: "portal", Lines: []string{"Now you're thinking with portals!"}},
			{Match: "lemons", Lines: []string{
				"When life gives you lemons, don't make lemonade. Make life take the lemons back! Get mad!",
				"I don't want your damn lemons! What the hell am I supposed to do with these!?",
				"Demand to see life's manager! Make life rue the day it thought it could give Cave Johnson lemons!",
			}},
			{Match: "request shia", Lines: []string{"!request https://www.youtube.com/watch?v=o0u4M6vppCI"}},
			{Match: "shia labeouf", Lines: []string{
				"Running for your life from Shia Labeouf.",
				"He's brandishing a knife. It's Shia Labeouf.",
				"Lurking in the shadows... Hollywood superstar Shia Labeouf.",
			}},
			{Match: " love", Lines: []string{"What is love? Baby, don't hurt me.", "Don't hurt me.", "No more."}},
			{Match: "work sucks", Lines: []string{"I know. She left me roses by the stairs.", "Surprises let me know she cares."}},
			{Match: "new york city", Lines: []string{
				"'Cause everyone's your friend in New York City! And everything looks beautiful when you're young and pretty.",
				"The streets are paved with diamonds and there's just so much to see. But the best thing about New York City is you and me.",
			}},
			{Match: "rainbow", Lines: []string{"Someday we'll find it, the rainbow connection. The lovers, the dreamers and me."}},
			{Match: "duck", Lines: []string{"A duck walked up to a lemonade stand..."}},
			{Match: "yay", Lines: []string{"Yay! ^_^"}},
			{Match: "lmao", Lines: []string{"lol"}},
			{Match: "rofl", Lines: []string{"lol"}},
			{Match: "lol", Lines: []string{"lol"}},
			{Match: "crazy", Lines: []string{
				"Crazy? I was crazy once. They locked me up in a padded room until I died.",
				"They put 3 flowers on my grave. Two grew up, and one grew down.",
				"The roots tickled my nose. It drove me crazy.",
			}},
			{Match: "thank you", Lines: []string{"I guess it's just my way of being me! You're welcome, you're welcome!"}},
			{Match: "thanks", Lines: []string{"There's no need to pray, it's OK, you're welcome!"}},
			{Match: "shiny", Lines: []string{
				"Shiny! Watch me dazzle like a diamond in the rough. Strut my stuff; my stuff is so",
				"Shiny! Send your armies but they'll never be enough. My shell's too tough!",
			}},
		},
	}
}

func fixed(lines ...string) CommandFunc {
	return func(Request) ([]string, error) {
		return append([]string(nil), lines...), nil
	}
}

func listCommands(req Request) ([]string, error) {
	lines := []string{"Commands:"}
	if req.Table == nil {
		return lines, nil
	}
	for _, c := range req.Table.Commands {
		lines = append(lines, c.Name+": "+c.Help)
	}

	return lines, nil
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}
