package chat

import "strings"

const (
	CommandHelp           = "help"
	CommandAsk            = "ask"
	CommandReset          = "reset"
	CommandDefine         = "define"
	CommandExplainLikeIm5 = "explainlikeim5"
	CommandSummarise      = "summarise"
	CommandTranslate      = "translate"
	CommandQuiz           = "quiz"
)

type OptionKind int

const (
	OptionString OptionKind = iota
	OptionInteger
)

// Option аргумент команды; на Discord становится опцией slash-команды
type Option struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Kind        OptionKind `json:"kind"`
	Required    bool       `json:"required"`
}

// Command описание команды. Deferred: ответ идет через модель и требует отложенного ответа.
type Command struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Options     []Option `json:"options,omitempty"`
	Deferred    bool     `json:"deferred"`
}

var commands = []Command{
	{
		Name:        CommandHelp,
		Description: "List available commands",
	},
	{
		Name:        CommandAsk,
		Description: "Ask Ignis a question",
		Options:     []Option{{Name: "question", Description: "Your question", Required: true}},
		Deferred:    true,
	},
	{
		Name:        CommandReset,
		Description: "Reset conversation context",
	},
	{
		Name:        CommandDefine,
		Description: "Define a term or phrase",
		Options:     []Option{{Name: "term", Description: "Term or phrase to define", Required: true}},
		Deferred:    true,
	},
	{
		Name:        CommandExplainLikeIm5,
		Description: "Explain a complex concept in simple terms",
		Options:     []Option{{Name: "concept", Description: "Concept to explain", Required: true}},
		Deferred:    true,
	},
	{
		Name:        CommandSummarise,
		Description: "Summarise a long piece of text",
		Options:     []Option{{Name: "text", Description: "Text to summarise", Required: true}},
		Deferred:    true,
	},
	{
		Name:        CommandTranslate,
		Description: "Translate text into a specified language",
		Options: []Option{
			{Name: "text", Description: "Text to translate", Required: true},
			{Name: "language", Description: "Target language", Required: true},
		},
		Deferred: true,
	},
	{
		Name:        CommandQuiz,
		Description: "Generate a short quiz on a specified topic",
		Options: []Option{
			{Name: "topic", Description: "Quiz topic", Required: true},
			{Name: "num_questions", Description: "Number of questions (up to 10)", Kind: OptionInteger, Required: true},
		},
		Deferred: true,
	},
}

// Commands возвращает копию таблицы команд в порядке справки
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// LookupCommand ищет команду по имени без учета регистра
func LookupCommand(name string) (Command, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// CommandNames имена всех команд
func CommandNames() []string {
	names := make([]string, len(commands))
	for i, cmd := range commands {
		names[i] = cmd.Name
	}
	return names
}
