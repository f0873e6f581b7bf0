package domain

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

func (s Sender) String() string { return string(s) }

// ChatMessage is one entry of the append-only chat transcript.
type ChatMessage struct {
	Sender Sender
	Text   string
}

// ChatPhase is the explicit conversational phase of a chat session.
type ChatPhase string

const (
	// ChatPhaseMenu waits for the user to pick one of the numbered topics.
	ChatPhaseMenu ChatPhase = "menu"
	// ChatPhaseFreeform accepts arbitrary questions.
	ChatPhaseFreeform ChatPhase = "freeform"
)

func (p ChatPhase) String() string { return string(p) }

// ChatTopic is a menu choice offered by the greeting.
type ChatTopic string

const (
	TopicExplain   ChatTopic = "Explain a concept"
	TopicPractice  ChatTopic = "Examples & practice"
	TopicSummarise ChatTopic = "Summarise a topic"
	TopicOther     ChatTopic = "Other"
)

// MenuTopics maps the accepted menu replies to their topics.
var MenuTopics = map[string]ChatTopic{
	"1": TopicExplain,
	"2": TopicPractice,
	"3": TopicSummarise,
	"4": TopicOther,
}
