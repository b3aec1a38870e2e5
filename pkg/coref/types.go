package coref

import (
	"fmt"
	"strings"
)

// MentionType classifies the surface form of a mention.
type MentionType int

const (
	Pronominal MentionType = iota
	Nominal
	Proper
	List
)

var mentionTypeNames = [...]string{"PRONOMINAL", "NOMINAL", "PROPER", "LIST"}

func (t MentionType) String() string {
	if t < 0 || int(t) >= len(mentionTypeNames) {
		return fmt.Sprintf("MentionType(%d)", int(t))
	}
	return mentionTypeNames[t]
}

// specificity ranks mention types for representative selection.
func (t MentionType) specificity() int {
	switch t {
	case Proper:
		return 3
	case Nominal:
		return 2
	case List:
		return 1
	default:
		return 0
	}
}

// ParseMentionType accepts the upper- or lower-case type name.
func ParseMentionType(s string) (MentionType, error) {
	for i, n := range mentionTypeNames {
		if strings.EqualFold(s, n) {
			return MentionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mention type %q", s)
}

// Number is grammatical number.
type Number int

const (
	UnknownNumber Number = iota
	Singular
	Plural
)

func (n Number) String() string {
	switch n {
	case Singular:
		return "SINGULAR"
	case Plural:
		return "PLURAL"
	default:
		return "UNKNOWN"
	}
}

// ParseNumber maps "singular"/"plural" and falls back to UnknownNumber.
func ParseNumber(s string) Number {
	switch strings.ToUpper(s) {
	case "SINGULAR", "SG":
		return Singular
	case "PLURAL", "PL":
		return Plural
	default:
		return UnknownNumber
	}
}

// Gender is grammatical or natural gender.
type Gender int

const (
	UnknownGender Gender = iota
	Male
	Female
	Neutral
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "MALE"
	case Female:
		return "FEMALE"
	case Neutral:
		return "NEUTRAL"
	default:
		return "UNKNOWN"
	}
}

// ParseGender maps gender names and falls back to UnknownGender.
func ParseGender(s string) Gender {
	switch strings.ToUpper(s) {
	case "MALE", "M":
		return Male
	case "FEMALE", "F":
		return Female
	case "NEUTRAL", "N":
		return Neutral
	default:
		return UnknownGender
	}
}

// Animacy distinguishes living referents from things.
type Animacy int

const (
	UnknownAnimacy Animacy = iota
	Animate
	Inanimate
)

func (a Animacy) String() string {
	switch a {
	case Animate:
		return "ANIMATE"
	case Inanimate:
		return "INANIMATE"
	default:
		return "UNKNOWN"
	}
}

// ParseAnimacy maps animacy names and falls back to UnknownAnimacy.
func ParseAnimacy(s string) Animacy {
	switch strings.ToUpper(s) {
	case "ANIMATE":
		return Animate
	case "INANIMATE":
		return Inanimate
	default:
		return UnknownAnimacy
	}
}

// Person is the grammatical person of pronominal mentions.
type Person int

const (
	UnknownPerson Person = iota
	I
	You
	He
	She
	It
	We
	They
)

var personNames = [...]string{"UNKNOWN", "I", "YOU", "HE", "SHE", "IT", "WE", "THEY"}

func (p Person) String() string {
	if p < 0 || int(p) >= len(personNames) {
		return "UNKNOWN"
	}
	return personNames[p]
}

// ParsePerson maps person names and falls back to UnknownPerson.
func ParsePerson(s string) Person {
	for i, n := range personNames {
		if strings.EqualFold(s, n) {
			return Person(i)
		}
	}
	return UnknownPerson
}

// DocType separates newswire-like text from transcribed dialogue.
type DocType int

const (
	Article DocType = iota
	Conversation
)

func (d DocType) String() string {
	if d == Conversation {
		return "CONVERSATION"
	}
	return "ARTICLE"
}

// ParseDocType maps "conversation" to Conversation and anything else to Article.
func ParseDocType(s string) DocType {
	if strings.EqualFold(s, "conversation") {
		return Conversation
	}
	return Article
}

// NoNER is the named-entity tag of tokens outside any entity.
const NoNER = "O"
