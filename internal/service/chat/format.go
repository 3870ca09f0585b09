package chat

import "unicode/utf8"

// DiscordMessageLimit потолок длины сообщения Discord в символах
const DiscordMessageLimit = 2000

// Truncate оставляет не больше limit символов; обрезанная строка заканчивается marker
func Truncate(s string, limit int, marker string) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	m := []rune(marker)
	if len(m) >= limit {
		return string(m[:limit])
	}

	r := []rune(s)
	return string(r[:limit-len(m)]) + marker
}

// BuildReply склеивает заголовок и ответ модели так, чтобы целое уместилось в limit.
// Обрезается ответ; заголовок режется только когда ввод пользователя сам не помещается.
func BuildReply(header, body string, limit int, marker string) string {
	headerLen := utf8.RuneCountInString(header)
	if headerLen+utf8.RuneCountInString(body) <= limit {
		return header + body
	}

	available := limit - headerLen
	if available > utf8.RuneCountInString(marker) {
		return header + Truncate(body, available, marker)
	}

	return Truncate(header+body, limit, marker)
}
