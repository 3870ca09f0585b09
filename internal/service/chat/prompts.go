package chat

import (
	"fmt"
	"strings"
)

// MaxQuizQuestions верхняя граница вопросов в одной викторине
const MaxQuizQuestions = 10

const (
	ResetReply = "Your conversation has been reset ✅"

	HelpText = "__List of currently available commands:__\n\n" +
		"**/help** - Display this message.\n" +
		"**/ask** [question] - Ask Ignis a question and get a detailed response. Can store context for up to 10 responses.\n" +
		"**/reset** - Reset your conversation's context with Ignis.\n" +
		"**/define** [term] - Get a simple definition for a term or phrase.\n" +
		"**/explainlikeim5** [concept] - Breaks down a complex concept into simple terms.\n" +
		"**/summarise** [text] - Transform a long piece of text into a concise summary.\n" +
		"**/translate** [text] [language] - Translate text into a specified language.\n" +
		"**/quiz** [topic] [num_questions] - Generate a short quiz on a specified topic with up to 10 questions.\n"

	defineSystemPrompt    = "You are a helpful study assistant that provides short, simple definitions."
	explainSystemPrompt   = "You are a helpful study assistant that explains complex concepts in simple terms."
	summariseSystemPrompt = "You are a helpful study assistant that converts long pieces of text into concise summaries."
	translateSystemPrompt = "You are a helpful study assistant that translates text into a different language."

	quizSystemPrompt = "You are a helpful study assistant. " +
		"When generating quiz questions, follow these rules:\n" +
		"1. Provide the number of questions requested, but never more than 10. If the user requests more than 10, " +
		"return 10 questions and clearly state at the start that 10 is the maximum, suggesting they run /quiz again for more.\n" +
		"2. Each question should be numbered and bolded.\n" +
		"3. Each answer should appear immediately below its question, " +
		"not numbered, and wrapped in double pipes ||like this|| to spoiler it for Discord.\n" +
		"4. Do not bold the answers.\n" +
		"5. Format the response clearly so that each question and answer is on its own line.\n" +
		"6. If the topic is invalid or unsuitable for a quiz, say so and suggest trying again with a different topic instead of making up a quiz."
)

// quizInstruction системный промпт викторины; при превышении лимита добавляется явная строка
func quizInstruction(requested int) string {
	if requested <= MaxQuizQuestions {
		return quizSystemPrompt
	}
	return quizSystemPrompt + fmt.Sprintf(
		"\nThe user requested %d questions. Return only %d, start by stating that %d is the maximum, "+
			"and suggest running /quiz again for more questions.",
		requested, MaxQuizQuestions, MaxQuizQuestions)
}

type prompt struct {
	system string
	user   string
	header string
}

func definePrompt(mention, term string) prompt {
	return prompt{
		system: defineSystemPrompt,
		user:   "Define: " + term,
		header: fmt.Sprintf("%s requested a definition for: %s\n\n", mention, term),
	}
}

func explainPrompt(mention, concept string) prompt {
	return prompt{
		system: explainSystemPrompt,
		user:   "Explain like I'm 5 years old: " + concept,
		header: fmt.Sprintf("%s asked Ignis to explain: %s\n\n", mention, concept),
	}
}

func summarisePrompt(mention, text string) prompt {
	return prompt{
		system: summariseSystemPrompt,
		user:   "Summarise the following text: " + text,
		header: fmt.Sprintf("%s asked Ignis to summarise:\n%s\n\n", mention, text),
	}
}

func translatePrompt(mention, text, language string) prompt {
	return prompt{
		system: translateSystemPrompt,
		user:   fmt.Sprintf("Translate the following text into %s: %s", language, text),
		header: fmt.Sprintf("%s asked Ignis to translate to %s:\n%s\n\n", mention, language, text),
	}
}

func quizPrompt(mention, topic string, n int) prompt {
	return prompt{
		system: quizInstruction(n),
		user:   fmt.Sprintf("Please provide %d quiz questions on the topic: %s", n, topic),
		header: fmt.Sprintf("%s requested a %d-question quiz on %s:\n\n", mention, n, topic),
	}
}

func askHeader(mention, question string) string {
	return fmt.Sprintf("%s asked Ignis: %s\n\n", mention, question)
}

// TruncationMarker маркер обрезки по значению chat.truncation_notice
func TruncationMarker(notice string) string {
	if strings.EqualFold(notice, "notice") {
		return "\n\n*(response truncated)*"
	}
	return "..."
}
